package entity

// Tipos de lista de referencia.
const (
	ReferenceCategory = "category"
	ReferenceUnit     = "unit"
)

// Listas por defecto cuando no hay datos locales ni remotos.
var (
	DefaultCategories = []string{"10 MT", "30 MT", "RETALHOS"}
	DefaultUnits      = []string{"un", "m", "kg"}
)
