package http

import (
	"bytes"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bodega-ledger/internal/application/dto"
	"github.com/jhoicas/bodega-ledger/internal/application/exchange"
	"github.com/jhoicas/bodega-ledger/internal/application/inventory"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

// InventoryHandler entradas, salidas, traslados y libro de movimientos (protegido).
type InventoryHandler struct {
	movements *inventory.MovementUseCase
	transfers *inventory.TransferUseCase
	ledger    *exchange.UseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(movements *inventory.MovementUseCase, transfers *inventory.TransferUseCase, ledger *exchange.UseCase) *InventoryHandler {
	return &InventoryHandler{movements: movements, transfers: transfers, ledger: ledger}
}

// Entry godoc
// @Summary      Registrar entrada
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EntryRequest  true  "code, quantity, address, origin"
// @Success      201   {object}  dto.LocationRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/entries [post]
func (h *InventoryHandler) Entry(c *fiber.Ctx) error {
	var in dto.EntryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.movements.Entry(c.Context(), inventory.EntryInput{
		Code:        in.Code,
		Quantity:    in.Quantity,
		Address:     in.Address,
		Origin:      in.Origin,
		Responsible: GetUserName(c),
		Observation: in.Observation,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewLocationRecordResponse(res.Record, res.Entry))
}

// Exit godoc
// @Summary      Registrar salida de un registro
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ExitRequest  true  "record_id, quantity, origin"
// @Success      200   {object}  dto.LocationRecordResponse
// @Success      204   "el registro quedó en cero y se eliminó"
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/exits [post]
func (h *InventoryHandler) Exit(c *fiber.Ctx) error {
	var in dto.ExitRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.movements.Exit(c.Context(), inventory.ExitInput{
		RecordID:        in.RecordID,
		Quantity:        in.Quantity,
		Origin:          in.Origin,
		Responsible:     GetUserName(c),
		Observation:     in.Observation,
		ExpectedVersion: in.ExpectedVersion,
	})
	if err != nil {
		return writeError(c, err)
	}
	if res.Record == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(dto.NewLocationRecordResponse(res.Record, res.Entry))
}

// Transfer godoc
// @Summary      Trasladar cantidad a otra dirección
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "source_id, quantity, destination"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.transfers.Transfer(c.Context(), inventory.TransferInput{
		SourceID:        in.SourceID,
		Quantity:        in.Quantity,
		Destination:     in.Destination,
		Responsible:     GetUserName(c),
		Observation:     in.Observation,
		ExpectedVersion: in.ExpectedVersion,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.TransferResponse{
		TransferID:  res.TransferID,
		Destination: dto.NewLocationRecordResponse(res.Destination, res.Entry),
	}
	if res.Source != nil {
		src := dto.NewLocationRecordResponse(res.Source, res.Entry)
		out.Source = &src
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Libro de movimientos (más reciente primero)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        from    query  string  false  "desde (YYYY-MM-DD o RFC3339)"
// @Param        to      query  string  false  "hasta (YYYY-MM-DD o RFC3339)"
// @Param        type    query  string  false  "entry | exit"
// @Param        code    query  string  false  "SKU"
// @Param        limit   query  int     false  "tamaño de página"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	filter, err := movementFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit"), Offset: c.QueryInt("offset")}
	page.DefaultPage()
	filter.Limit, filter.Offset = page.Limit, page.Offset

	items, err := h.ledger.Ledger(c.Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.MovementListResponse{
		Items: make([]dto.TransactionDoc, 0, len(items)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, m := range items {
		out.Items = append(out.Items, dto.NewTransactionDoc(m))
	}
	return c.JSON(out)
}

// ExportMovements godoc
// @Summary      Exportar el libro como CSV (separador ';', UTF-8 con BOM)
// @Tags         inventory
// @Security     Bearer
// @Produce      text/csv
// @Router       /api/movements/export [get]
func (h *InventoryHandler) ExportMovements(c *fiber.Ctx) error {
	filter, err := movementFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	var buf bytes.Buffer
	if err := h.ledger.ExportLedger(c.Context(), &buf, filter); err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="movimentacoes_`+time.Now().Format("2006-01-02")+`.csv"`)
	return c.Send(buf.Bytes())
}

func movementFilter(c *fiber.Ctx) (repository.MovementFilter, error) {
	f := repository.MovementFilter{
		Type: strings.ToLower(c.Query("type")),
		Code: entity.NormalizeCode(c.Query("code")),
	}
	if f.Type != "" && f.Type != entity.MovementTypeEntry && f.Type != entity.MovementTypeExit {
		return f, errInvalidQuery("type debe ser entry o exit")
	}
	if s := c.Query("from"); s != "" {
		t, err := parseDate(s, false)
		if err != nil {
			return f, errInvalidQuery("from inválido")
		}
		f.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := parseDate(s, true)
		if err != nil {
			return f, errInvalidQuery("to inválido")
		}
		f.To = &t
	}
	return f, nil
}

// parseDate acepta RFC3339 o YYYY-MM-DD; con endOfDay la fecha simple cubre el día completo.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

type errInvalidQuery string

func (e errInvalidQuery) Error() string { return string(e) }
