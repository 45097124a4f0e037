package dto

import "github.com/jhoicas/bodega-ledger/internal/domain/entity"

// LoginRequest entrada para login por nombre de operador.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Role        string                 `json:"role"`
	Preferences entity.UserPreferences `json:"preferences"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// CreateUserRequest alta de operador (solo ADMIN).
type CreateUserRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// PasswordRequest cambio de contraseña.
type PasswordRequest struct {
	Password string `json:"password"`
}
