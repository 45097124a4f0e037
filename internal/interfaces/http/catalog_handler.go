package http

import (
	"bytes"
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bodega-ledger/internal/application/catalog"
	"github.com/jhoicas/bodega-ledger/internal/application/dto"
	"github.com/jhoicas/bodega-ledger/internal/application/exchange"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
)

// CatalogHandler catálogo de SKUs, listas de referencia y consulta de ubicaciones.
type CatalogHandler struct {
	uc *catalog.UseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *catalog.UseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// List godoc
// @Summary      Listar catálogo
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CatalogEntryResponse
// @Router       /api/catalog [get]
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	entries, err := h.uc.ListEntries(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.CatalogEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.NewCatalogEntryResponse(e))
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Alta de SKU (crea el placeholder PENDING en cero)
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCatalogRequest  true  "code, name, category, unit"
// @Success      201   {object}  dto.CreateCatalogResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/catalog [post]
func (h *CatalogHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCatalogRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	entry, placeholder, err := h.uc.Create(c.Context(), catalog.CreateInput{
		Code:        in.Code,
		Name:        in.Name,
		Category:    in.Category,
		Unit:        in.Unit,
		EAN:         in.EAN,
		Supplier:    in.Supplier,
		Description: in.Description,
		MinQuantity: in.MinQuantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.CreateCatalogResponse{Entry: dto.NewCatalogEntryResponse(entry)}
	if placeholder != nil {
		r := dto.NewLocationRecordResponse(placeholder, entry)
		out.Placeholder = &r
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Editar el SKU de un registro
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "id del registro"
// @Param        body  body  dto.UpdateCatalogRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.CatalogEntryResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/catalog/records/{id} [put]
func (h *CatalogHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCatalogRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	entry, err := h.uc.Edit(c.Context(), c.Params("id"), catalog.UpdateInput{
		Name:        in.Name,
		Category:    in.Category,
		Unit:        in.Unit,
		EAN:         in.EAN,
		Supplier:    in.Supplier,
		Description: in.Description,
		MinQuantity: in.MinQuantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewCatalogEntryResponse(entry))
}

// Delete godoc
// @Summary      Eliminar el SKU de un registro (rechazado si queda saldo)
// @Tags         catalog
// @Security     Bearer
// @Param        id  path  string  true  "id del registro"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/catalog/records/{id} [delete]
func (h *CatalogHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Import godoc
// @Summary      Importar archivo delimitado por ';' (inventory | catalog)
// @Tags         catalog
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        kind  query     string  true  "inventory | catalog"
// @Param        file  formData  file    true  "archivo CSV"
// @Success      200   {object}  dto.ImportResponse
// @Router       /api/catalog/import [post]
func (h *CatalogHandler) Import(c *fiber.Ctx) error {
	kind := strings.ToLower(c.Query("kind", catalog.ImportInventory))
	if !catalog.ValidImportKind(kind) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "kind debe ser inventory o catalog"})
	}
	var rows [][]string
	fh, err := c.FormFile("file")
	if err == nil {
		f, err := fh.Open()
		if err != nil {
			return badBody(c)
		}
		defer f.Close()
		rows, err = exchange.ParseDelimited(f)
		if err != nil {
			return writeError(c, err)
		}
	} else {
		rows, err = exchange.ParseDelimited(bytes.NewReader(c.Body()))
		if err != nil {
			return writeError(c, err)
		}
	}
	res, err := h.uc.BatchImport(c.Context(), kind, rows)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ImportResponse{Imported: res.Imported, Skipped: res.Skipped})
}

// Template godoc
// @Summary      Plantilla CSV de importación
// @Tags         catalog
// @Security     Bearer
// @Produce      text/csv
// @Param        kind  path  string  true  "inventory | catalog"
// @Router       /api/catalog/template/{kind} [get]
func (h *CatalogHandler) Template(c *fiber.Ctx) error {
	var body []byte
	switch c.Params("kind") {
	case catalog.ImportInventory:
		body = exchange.InventoryTemplate()
	case catalog.ImportCatalog:
		body = exchange.CatalogTemplate()
	default:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "plantilla desconocida"})
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="modelo_`+c.Params("kind")+`.csv"`)
	return c.Send(body)
}

// ── Listas de referencia ──────────────────────────────────────────────────────

func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	return h.listReference(c, h.uc.ListCategories)
}

func (h *CatalogHandler) AddCategory(c *fiber.Ctx) error {
	return h.mutateReference(c, h.uc.AddCategory, fiber.StatusCreated)
}

func (h *CatalogHandler) RemoveCategory(c *fiber.Ctx) error {
	return h.mutateReference(c, h.uc.RemoveCategory, fiber.StatusNoContent)
}

func (h *CatalogHandler) ListUnits(c *fiber.Ctx) error {
	return h.listReference(c, h.uc.ListUnits)
}

func (h *CatalogHandler) AddUnit(c *fiber.Ctx) error {
	return h.mutateReference(c, h.uc.AddUnit, fiber.StatusCreated)
}

func (h *CatalogHandler) RemoveUnit(c *fiber.Ctx) error {
	return h.mutateReference(c, h.uc.RemoveUnit, fiber.StatusNoContent)
}

func (h *CatalogHandler) listReference(c *fiber.Ctx, list func(ctx context.Context) ([]string, error)) error {
	names, err := list(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(names)
}

// mutateReference acepta el nombre en el cuerpo o, para DELETE, en el query ?name=.
func (h *CatalogHandler) mutateReference(c *fiber.Ctx, fn func(ctx context.Context, name string) error, status int) error {
	name := c.Query("name")
	if name == "" {
		var in dto.ReferenceRequest
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		name = in.Name
	}
	if err := fn(c.Context(), name); err != nil {
		return writeError(c, err)
	}
	if status == fiber.StatusNoContent {
		return c.SendStatus(status)
	}
	return c.Status(status).JSON(dto.ReferenceRequest{Name: name})
}

// ── Ubicaciones ───────────────────────────────────────────────────────────────

// ListLocations godoc
// @Summary      Listar registros por dirección
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        code    query  string  false  "SKU"
// @Param        street  query  string  false  "calle"
// @Success      200  {array}  dto.LocationRecordResponse
// @Router       /api/locations [get]
func (h *CatalogHandler) ListLocations(c *fiber.Ctx) error {
	recs, entries, err := h.uc.ListRecords(c.Context(), repository.LocationFilter{
		Code:   c.Query("code"),
		Street: c.Query("street"),
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.LocationRecordResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, dto.NewLocationRecordResponse(r, entries[r.Code]))
	}
	return c.JSON(out)
}

// GetLocation godoc
// @Summary      Obtener un registro
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "id del registro"
// @Success      200  {object}  dto.LocationRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id} [get]
func (h *CatalogHandler) GetLocation(c *fiber.Ctx) error {
	rec, entry, err := h.uc.GetRecord(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewLocationRecordResponse(rec, entry))
}

// Resolve godoc
// @Summary      Resolver una lectura del escáner (etiqueta, EAN, id o código)
// @Tags         locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ResolveRequest  true  "texto escaneado"
// @Success      200   {object}  dto.ResolveResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/locations/resolve [post]
func (h *CatalogHandler) Resolve(c *fiber.Ctx) error {
	var in dto.ResolveRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	entry, recs, err := h.uc.ResolveScan(c.Context(), in.Text)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ResolveResponse{Code: entry.Code, Records: make([]dto.LocationRecordResponse, 0, len(recs))}
	for _, r := range recs {
		out.Records = append(out.Records, dto.NewLocationRecordResponse(r, entry))
	}
	return c.JSON(out)
}
