package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bodega-ledger/internal/application/admin"
	"github.com/jhoicas/bodega-ledger/internal/application/dto"
	"github.com/jhoicas/bodega-ledger/internal/application/insights"
	"github.com/jhoicas/bodega-ledger/internal/application/replication"
)

// OperationsHandler estado de la réplica, reset administrativo e insights de stock.
type OperationsHandler struct {
	gateway  *replication.Gateway
	reset    *admin.ResetUseCase
	insights *insights.UseCase
}

// NewOperationsHandler construye el handler.
func NewOperationsHandler(gateway *replication.Gateway, reset *admin.ResetUseCase, insightsUC *insights.UseCase) *OperationsHandler {
	return &OperationsHandler{gateway: gateway, reset: reset, insights: insightsUC}
}

// SyncStatus godoc
// @Summary      Estado de la sincronización remota
// @Tags         sync
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SyncStatusResponse
// @Router       /api/sync/status [get]
func (h *OperationsHandler) SyncStatus(c *fiber.Ctx) error {
	st, err := h.gateway.Status(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SyncStatusResponse{
		State:       st.State,
		Pending:     st.Pending,
		Failed:      st.Failed,
		Conflicts:   st.Conflicts,
		LastDrainAt: st.LastDrainAt,
		LastError:   st.LastError,
	})
}

// SyncFlush godoc
// @Summary      Forzar el envío de todo lo pendiente
// @Tags         sync
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SyncStatusResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/sync/flush [post]
func (h *OperationsHandler) SyncFlush(c *fiber.Ctx) error {
	if err := h.gateway.Flush(c.Context()); err != nil {
		return writeError(c, err)
	}
	return h.SyncStatus(c)
}

// Reset godoc
// @Summary      Borrar inventario, catálogo y libro (ADMIN, confirm=RESET)
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Param        body  body  dto.ResetRequest  true  "confirm"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/admin/reset [post]
func (h *OperationsHandler) Reset(c *fiber.Ctx) error {
	var in dto.ResetRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.reset.Reset(c.Context(), GetRole(c), GetUserName(c), in.Confirm); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Insights godoc
// @Summary      Sugerencias de gestión de stock (IA o respaldo fijo)
// @Tags         insights
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InsightsResponse
// @Router       /api/insights [get]
func (h *OperationsHandler) Insights(c *fiber.Ctx) error {
	list, source, err := h.insights.Insights(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.InsightsResponse{Insights: list, Source: source})
}
