package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bodega-ledger/internal/application/dto"
	"github.com/jhoicas/bodega-ledger/internal/application/exchange"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

// SheetRenderer genera las hojas PDF imprimibles.
type SheetRenderer interface {
	LabelSheet(ctx context.Context, labels []exchange.Label) ([]byte, error)
	BundleSheet(ctx context.Context, bundle string) ([]byte, error)
}

// ExchangeHandler respaldo, paquete escaneable y etiquetas.
type ExchangeHandler struct {
	uc             *exchange.UseCase
	pdf            SheetRenderer
	bundleMaxChars int
}

// NewExchangeHandler construye el handler.
func NewExchangeHandler(uc *exchange.UseCase, pdf SheetRenderer, bundleMaxChars int) *ExchangeHandler {
	return &ExchangeHandler{uc: uc, pdf: pdf, bundleMaxChars: bundleMaxChars}
}

// Backup godoc
// @Summary      Respaldo JSON completo
// @Tags         backup
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.Snapshot
// @Router       /api/backup [get]
func (h *ExchangeHandler) Backup(c *fiber.Ctx) error {
	snap, err := h.uc.Export(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="logimap_backup_`+time.Now().Format("2006-01-02")+`.json"`)
	return c.JSON(snap)
}

// Restore godoc
// @Summary      Restaurar respaldo (reemplaza el estado local; ADMIN)
// @Tags         backup
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.Snapshot  true  "respaldo"
// @Success      200   {object}  dto.RestoreResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/backup/restore [post]
func (h *ExchangeHandler) Restore(c *fiber.Ctx) error {
	var snap dto.Snapshot
	if err := c.BodyParser(&snap); err != nil {
		return badBody(c)
	}
	return h.restore(c, snap)
}

// Bundle godoc
// @Summary      Paquete de sincronización escaneable
// @Tags         backup
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.BundleResponse
// @Failure      413  {object}  dto.ErrorResponse
// @Router       /api/backup/bundle [get]
func (h *ExchangeHandler) Bundle(c *fiber.Ctx) error {
	bundle, err := h.encodeBundle(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.BundleResponse{Bundle: bundle, Length: len(bundle)})
}

// BundlePDF godoc
// @Summary      Hoja PDF con el QR del paquete
// @Tags         backup
// @Security     Bearer
// @Produce      application/pdf
// @Router       /api/backup/bundle.pdf [get]
func (h *ExchangeHandler) BundlePDF(c *fiber.Ctx) error {
	bundle, err := h.encodeBundle(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.pdf.BundleSheet(c.Context(), bundle)
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, out, "pacote_sync.pdf")
}

// ImportBundle godoc
// @Summary      Aplicar un paquete escaneado (ADMIN)
// @Tags         backup
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BundleRequest  true  "texto escaneado"
// @Success      200   {object}  dto.RestoreResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/backup/bundle [post]
func (h *ExchangeHandler) ImportBundle(c *fiber.Ctx) error {
	var in dto.BundleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	snap, err := exchange.DecodeBundle(in.Bundle)
	if err != nil {
		return writeError(c, err)
	}
	return h.restore(c, snap)
}

// Label godoc
// @Summary      Etiqueta de un registro
// @Tags         labels
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "id del registro"
// @Success      200  {object}  dto.LabelResponse
// @Router       /api/labels/{id} [get]
func (h *ExchangeHandler) Label(c *fiber.Ctx) error {
	l, err := h.uc.Label(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LabelResponse{Record: dto.NewLocationRecordResponse(l.Record, l.Entry), Payload: l.Payload})
}

// LabelsPDF godoc
// @Summary      Hoja PDF de etiquetas con QR
// @Tags         labels
// @Security     Bearer
// @Produce      application/pdf
// @Param        code    query  string  false  "SKU"
// @Param        street  query  string  false  "calle"
// @Router       /api/labels.pdf [get]
func (h *ExchangeHandler) LabelsPDF(c *fiber.Ctx) error {
	labels, err := h.uc.Labels(c.Context(), repository.LocationFilter{Code: c.Query("code"), Street: c.Query("street")})
	if err != nil {
		return writeError(c, err)
	}
	if len(labels) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "no hay registros ubicados para etiquetar"})
	}
	out, err := h.pdf.LabelSheet(c.Context(), labels)
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, out, "etiquetas.pdf")
}

func (h *ExchangeHandler) encodeBundle(c *fiber.Ctx) (string, error) {
	snap, err := h.uc.Export(c.Context())
	if err != nil {
		return "", err
	}
	return exchange.EncodeBundle(snap, h.bundleMaxChars)
}

func (h *ExchangeHandler) restore(c *fiber.Ctx, snap dto.Snapshot) error {
	res, err := h.uc.Restore(c.Context(), snap)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.RestoreResponse{Products: res.Products, Transactions: res.Transactions, Entries: res.Entries})
}

func sendPDF(c *fiber.Ctx, body []byte, filename string) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(body)
}
