package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "ADMIN"
	RoleOperator = "OPERATOR"
)

// UserPreferences preferencias de interfaz que se replican junto al usuario.
type UserPreferences struct {
	Notifications bool `json:"notifications"`
	MobileMode    bool `json:"mobileMode"`
}

// User operador del almacén; su nombre queda como responsable de cada movimiento.
type User struct {
	ID           string
	Name         string
	PasswordHash string // bcrypt; nunca se exporta en respaldos
	Role         string // ADMIN, OPERATOR
	Preferences  UserPreferences
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
