package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bodega-ledger/internal/application/admin"
	"github.com/jhoicas/bodega-ledger/internal/application/auth"
	"github.com/jhoicas/bodega-ledger/internal/application/catalog"
	"github.com/jhoicas/bodega-ledger/internal/application/consolidation"
	"github.com/jhoicas/bodega-ledger/internal/application/exchange"
	"github.com/jhoicas/bodega-ledger/internal/application/insights"
	"github.com/jhoicas/bodega-ledger/internal/application/inventory"
	"github.com/jhoicas/bodega-ledger/internal/application/replication"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC          *auth.AuthUseCase
	CatalogUC       *catalog.UseCase
	MovementUC      *inventory.MovementUseCase
	TransferUC      *inventory.TransferUseCase
	ConsolidationUC *consolidation.UseCase
	ExchangeUC      *exchange.UseCase
	ResetUC         *admin.ResetUseCase
	InsightsUC      *insights.UseCase
	Gateway         *replication.Gateway
	PDF             SheetRenderer
	BundleMaxChars  int
	JWTSecret       string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)

	// Operadores
	users := protected.Group("/users")
	users.Get("/", adminOnly, authHandler.ListUsers)
	users.Post("/", adminOnly, authHandler.CreateUser)
	users.Put("/me/preferences", authHandler.UpdatePreferences)
	users.Put("/:id/password", authHandler.SetPassword)
	users.Delete("/:id", adminOnly, authHandler.DeleteUser)

	// Catálogo y listas de referencia
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	cat := protected.Group("/catalog")
	cat.Get("/", catalogHandler.List)
	cat.Post("/", catalogHandler.Create)
	cat.Put("/records/:id", catalogHandler.Update)
	cat.Delete("/records/:id", catalogHandler.Delete)
	cat.Post("/import", catalogHandler.Import)
	cat.Get("/template/:kind", catalogHandler.Template)

	protected.Get("/categories", catalogHandler.ListCategories)
	protected.Post("/categories", catalogHandler.AddCategory)
	protected.Delete("/categories", catalogHandler.RemoveCategory)
	protected.Get("/units", catalogHandler.ListUnits)
	protected.Post("/units", catalogHandler.AddUnit)
	protected.Delete("/units", catalogHandler.RemoveUnit)

	// Ubicaciones
	locations := protected.Group("/locations")
	locations.Get("/", catalogHandler.ListLocations)
	locations.Post("/resolve", catalogHandler.Resolve)
	locations.Get("/:id", catalogHandler.GetLocation)

	// Movimientos
	inventoryHandler := NewInventoryHandler(deps.MovementUC, deps.TransferUC, deps.ExchangeUC)
	inv := protected.Group("/inventory")
	inv.Post("/entries", inventoryHandler.Entry)
	inv.Post("/exits", inventoryHandler.Exit)
	inv.Post("/transfers", inventoryHandler.Transfer)
	protected.Get("/movements", inventoryHandler.ListMovements)
	protected.Get("/movements/export", inventoryHandler.ExportMovements)

	// Consolidación y tablero
	consolidationHandler := NewConsolidationHandler(deps.ConsolidationUC)
	cons := protected.Group("/consolidation")
	cons.Get("/totals", consolidationHandler.Totals)
	cons.Get("/totals/:code", consolidationHandler.Total)
	cons.Get("/low-stock", consolidationHandler.LowStock)
	cons.Get("/category-exits", consolidationHandler.CategoryExits)
	cons.Get("/replenishment", consolidationHandler.Replenishment)
	protected.Get("/dashboard", consolidationHandler.Dashboard)

	// Respaldo, paquete escaneable y etiquetas
	exchangeHandler := NewExchangeHandler(deps.ExchangeUC, deps.PDF, deps.BundleMaxChars)
	backup := protected.Group("/backup")
	backup.Get("/", exchangeHandler.Backup)
	backup.Post("/restore", adminOnly, exchangeHandler.Restore)
	backup.Get("/bundle", exchangeHandler.Bundle)
	backup.Post("/bundle", adminOnly, exchangeHandler.ImportBundle)
	backup.Get("/bundle.pdf", exchangeHandler.BundlePDF)
	protected.Get("/labels.pdf", exchangeHandler.LabelsPDF)
	protected.Get("/labels/:id", exchangeHandler.Label)

	// Réplica, administración e insights
	opsHandler := NewOperationsHandler(deps.Gateway, deps.ResetUC, deps.InsightsUC)
	protected.Get("/sync/status", opsHandler.SyncStatus)
	protected.Post("/sync/flush", opsHandler.SyncFlush)
	protected.Post("/admin/reset", adminOnly, opsHandler.Reset)
	protected.Get("/insights", opsHandler.Insights)
}
