package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/bodega-ledger/internal/application/dto"
	"github.com/jhoicas/bodega-ledger/internal/application/inventory"
	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
	"github.com/jhoicas/bodega-ledger/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase login y gestión de operadores.
type AuthUseCase struct {
	userRepo repository.UserRepository
	outbox   repository.OutboxRepository
	jwtCfg   JWTConfig
	log      zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, outbox repository.OutboxRepository, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, outbox: outbox, jwtCfg: jwtCfg, log: log}
}

// HashPassword bcrypt con el costo por defecto.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func validRole(role string) bool {
	return role == entity.RoleAdmin || role == entity.RoleOperator
}

// Login verifica nombre/password, genera JWT y retorna token + usuario.
// Un usuario sin hash (replicado desde el remoto) no puede entrar hasta que un ADMIN le asigne contraseña.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByName(ctx, strings.TrimSpace(in.Name))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if user.PasswordHash == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Name, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  toUserResponse(user),
	}, nil
}

// CreateUser alta de operador. Nombre duplicado (sin distinguir mayúsculas) → ErrDuplicate.
func (uc *AuthUseCase) CreateUser(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	name := strings.TrimSpace(in.Name)
	role := strings.ToUpper(strings.TrimSpace(in.Role))
	if role == "" {
		role = entity.RoleOperator
	}
	if name == "" || in.Password == "" || !validRole(role) {
		return nil, domain.ErrInvalidInput
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New().String(),
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		Preferences:  entity.UserPreferences{Notifications: true},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.publish(ctx, user)
	resp := toUserResponse(user)
	return &resp, nil
}

// ListUsers lista operadores sin contraseñas.
func (uc *AuthUseCase) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := uc.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out, nil
}

// SetPassword reemplaza la contraseña de un usuario.
func (uc *AuthUseCase) SetPassword(ctx context.Context, id, password string) error {
	if password == "" {
		return domain.ErrInvalidInput
	}
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()
	return uc.userRepo.Update(ctx, user)
}

// UpdatePreferences guarda las preferencias de interfaz y las replica.
func (uc *AuthUseCase) UpdatePreferences(ctx context.Context, id string, prefs entity.UserPreferences) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	user.Preferences = prefs
	user.UpdatedAt = time.Now().UTC()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	uc.publish(ctx, user)
	resp := toUserResponse(user)
	return &resp, nil
}

// DeleteUser elimina un operador. Nadie puede eliminarse a sí mismo.
func (uc *AuthUseCase) DeleteUser(ctx context.Context, id, actingID string) error {
	if id == actingID {
		return domain.ErrInvalidInput
	}
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if err := uc.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := uc.outbox.Enqueue(ctx, &entity.OutboxEntry{
		Collection: entity.CollectionUsers,
		Op:         entity.OutboxOpDelete,
		RecordID:   id,
	}); err != nil {
		uc.log.Warn().Err(err).Str("user_id", id).Msg("encolar baja de usuario")
	}
	return nil
}

// EnsureAdmin garantiza que exista el administrador configurado con contraseña utilizable.
// Devuelve true si lo creó o le asignó contraseña.
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, name, password string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return false, nil
	}
	user, err := uc.userRepo.GetByName(ctx, name)
	if err != nil {
		return false, err
	}
	if user == nil {
		_, err := uc.CreateUser(ctx, dto.CreateUserRequest{Name: name, Password: password, Role: entity.RoleAdmin})
		return err == nil, err
	}
	if user.PasswordHash != "" {
		return false, nil
	}
	return true, uc.SetPassword(ctx, user.ID, password)
}

// publish encola la réplica; un fallo aquí no revierte el cambio local.
func (uc *AuthUseCase) publish(ctx context.Context, u *entity.User) {
	if err := inventory.EnqueueUser(ctx, uc.outbox, u); err != nil {
		uc.log.Warn().Err(err).Str("user_id", u.ID).Msg("encolar usuario")
	}
}

func toUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Role:        u.Role,
		Preferences: u.Preferences,
	}
}
