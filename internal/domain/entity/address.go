package entity

import "strings"

// Valores de la dirección placeholder para stock aún no ubicado.
const (
	PendingStreet = "PENDING"
	PendingMark   = "---"

	// legacyPendingStreet es la grafía usada por respaldos antiguos; se normaliza a PendingStreet.
	legacyPendingStreet = "PENDENTE"
)

// Address coordenada física de un slot de almacenamiento (calle/bloque/nivel/posición).
type Address struct {
	Street   string `json:"street"`
	Block    string `json:"block"`
	Level    string `json:"level"`
	Position string `json:"position"`
}

// PendingAddress devuelve la dirección placeholder PENDING/---/---/---.
func PendingAddress() Address {
	return Address{Street: PendingStreet, Block: PendingMark, Level: PendingMark, Position: PendingMark}
}

// Normalize recorta espacios y pasa a mayúsculas cada componente.
func (a Address) Normalize() Address {
	n := Address{
		Street:   strings.ToUpper(strings.TrimSpace(a.Street)),
		Block:    strings.ToUpper(strings.TrimSpace(a.Block)),
		Level:    strings.ToUpper(strings.TrimSpace(a.Level)),
		Position: strings.ToUpper(strings.TrimSpace(a.Position)),
	}
	if n.Street == legacyPendingStreet {
		n.Street = PendingStreet
	}
	return n
}

// IsPending indica si la dirección es el placeholder de stock sin ubicar.
func (a Address) IsPending() bool {
	return a.Normalize().Street == PendingStreet
}

// IsComplete exige calle y bloque no vacíos (requisito de destino de traslado y de entrada).
func (a Address) IsComplete() bool {
	n := a.Normalize()
	return n.Street != "" && n.Block != ""
}

// Equal compara dos direcciones ya normalizadas.
func (a Address) Equal(b Address) bool {
	return a.Normalize() == b.Normalize()
}

// Key forma canónica STREET/BLOCK/LEVEL/POSITION, usada como clave de unicidad junto al código.
func (a Address) Key() string {
	n := a.Normalize()
	return n.Street + "/" + n.Block + "/" + n.Level + "/" + n.Position
}

// Short formato compacto R<calle> B<bloque> N<nivel> P<posición> de etiquetas y observaciones.
func (a Address) Short() string {
	n := a.Normalize()
	return "R" + n.Street + " B" + n.Block + " N" + n.Level + " P" + n.Position
}
