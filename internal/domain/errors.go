package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrUserNotFound         = errors.New("usuario no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrIncompleteAddress    = errors.New("dirección incompleta: calle y bloque son obligatorios")
	ErrStockRemaining       = errors.New("el SKU aún tiene saldo en alguna dirección")
	ErrVersionConflict      = errors.New("la versión del registro no coincide")
	ErrBundleTooLarge       = errors.New("el paquete excede el tamaño máximo escaneable")
	ErrInvalidBundle        = errors.New("paquete de sincronización inválido")
	ErrConfirmationRequired = errors.New("se requiere confirmación explícita")
)
