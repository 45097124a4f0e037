package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bodega-ledger/internal/application/consolidation"
	"github.com/jhoicas/bodega-ledger/internal/application/dto"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
)

// ConsolidationHandler totales por SKU, bajo stock, reportes y tablero.
type ConsolidationHandler struct {
	uc  *consolidation.UseCase
	now func() time.Time
}

// NewConsolidationHandler construye el handler.
func NewConsolidationHandler(uc *consolidation.UseCase) *ConsolidationHandler {
	return &ConsolidationHandler{uc: uc, now: func() time.Time { return time.Now().UTC() }}
}

// Totals godoc
// @Summary      Totales consolidados por SKU
// @Tags         consolidation
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.SKUTotalResponse
// @Router       /api/consolidation/totals [get]
func (h *ConsolidationHandler) Totals(c *fiber.Ctx) error {
	totals, err := h.uc.Totals(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewSKUTotalList(totals))
}

// Total godoc
// @Summary      Total consolidado de un SKU
// @Tags         consolidation
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "SKU"
// @Success      200  {object}  dto.SKUTotalResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/consolidation/totals/{code} [get]
func (h *ConsolidationHandler) Total(c *fiber.Ctx) error {
	t, err := h.uc.Total(c.Context(), entity.NormalizeCode(c.Params("code")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewSKUTotalResponse(*t))
}

// LowStock godoc
// @Summary      SKUs con total menor o igual al mínimo
// @Tags         consolidation
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.SKUTotalResponse
// @Router       /api/consolidation/low-stock [get]
func (h *ConsolidationHandler) LowStock(c *fiber.Ctx) error {
	totals, err := h.uc.LowStock(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewSKUTotalList(totals))
}

// CategoryExits godoc
// @Summary      Salidas por categoría en la ventana del reporte
// @Tags         consolidation
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CategoryExitResponse
// @Router       /api/consolidation/category-exits [get]
func (h *ConsolidationHandler) CategoryExits(c *fiber.Ctx) error {
	exits, err := h.uc.CategoryExits(c.Context(), h.now())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewCategoryExitList(exits))
}

// Replenishment godoc
// @Summary      Sugerencias de reposición priorizadas
// @Tags         consolidation
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ReplenishmentResponse
// @Router       /api/consolidation/replenishment [get]
func (h *ConsolidationHandler) Replenishment(c *fiber.Ctx) error {
	list, err := h.uc.Replenishment(c.Context(), h.now())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ReplenishmentResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.ReplenishmentResponse{
			Priority:     s.Priority,
			Code:         s.Code,
			Name:         s.Name,
			Category:     s.Category,
			CurrentStock: s.CurrentStock,
			MinQuantity:  s.MinQuantity,
			IdealStock:   s.IdealStock,
			SuggestedQty: s.SuggestedQty,
			ExitsLast90d: s.ExitsLast90d,
		})
	}
	return c.JSON(out)
}

// Dashboard godoc
// @Summary      Tablero: resumen, bajo stock, salidas por categoría y últimos movimientos
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardResponse
// @Router       /api/dashboard [get]
func (h *ConsolidationHandler) Dashboard(c *fiber.Ctx) error {
	d, err := h.uc.Dashboard(c.Context(), h.now())
	if err != nil {
		return writeError(c, err)
	}
	out := dto.DashboardResponse{
		TotalQuantity: d.Summary.TotalQuantity,
		LowStockCount: d.Summary.LowStockCount,
		SKUCount:      d.Summary.SKUCount,
		LowStock:      dto.NewSKUTotalList(d.LowStock),
		CategoryExits: dto.NewCategoryExitList(d.CategoryExits),
		RecentMoves:   make([]dto.TransactionDoc, 0, len(d.Recent)),
	}
	for _, m := range d.Recent {
		out.RecentMoves = append(out.RecentMoves, dto.NewTransactionDoc(m))
	}
	return c.JSON(out)
}
