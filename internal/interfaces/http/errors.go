package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bodega-ledger/internal/application/dto"
	"github.com/jhoicas/bodega-ledger/internal/application/replication"
	"github.com/jhoicas/bodega-ledger/internal/domain"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// El orden importa: los errores más específicos van primero.
var errorMappings = []errorMapping{
	{domain.ErrIncompleteAddress, fiber.StatusBadRequest, "INCOMPLETE_ADDRESS"},
	{domain.ErrInvalidBundle, fiber.StatusBadRequest, "INVALID_BUNDLE"},
	{domain.ErrConfirmationRequired, fiber.StatusBadRequest, "CONFIRMATION_REQUIRED"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrStockRemaining, fiber.StatusConflict, "STOCK_REMAINING"},
	{domain.ErrVersionConflict, fiber.StatusConflict, "VERSION_CONFLICT"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrBundleTooLarge, fiber.StatusRequestEntityTooLarge, "BUNDLE_TOO_LARGE"},
	{replication.ErrDisabled, fiber.StatusServiceUnavailable, "SYNC_DISABLED"},
}

// writeError traduce errores de dominio a respuestas HTTP. Lo desconocido es 500.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
