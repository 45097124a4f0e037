package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-ledger/internal/application/admin"
	"github.com/jhoicas/bodega-ledger/internal/application/auth"
	"github.com/jhoicas/bodega-ledger/internal/application/catalog"
	"github.com/jhoicas/bodega-ledger/internal/application/consolidation"
	"github.com/jhoicas/bodega-ledger/internal/application/exchange"
	"github.com/jhoicas/bodega-ledger/internal/application/insights"
	"github.com/jhoicas/bodega-ledger/internal/application/inventory"
	"github.com/jhoicas/bodega-ledger/internal/application/ports"
	"github.com/jhoicas/bodega-ledger/internal/application/replication"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/domain/repository"
	infraai "github.com/jhoicas/bodega-ledger/internal/infrastructure/ai"
	"github.com/jhoicas/bodega-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/bodega-ledger/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/bodega-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/bodega-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/bodega-ledger/internal/infrastructure/remote"
	httpRouter "github.com/jhoicas/bodega-ledger/internal/interfaces/http"
	"github.com/jhoicas/bodega-ledger/pkg/config"
	"github.com/jhoicas/bodega-ledger/pkg/logger"
)

// stores repositorios del backend elegido (postgres o memoria).
type stores struct {
	tx        inventory.TxRunner
	locations repository.LocationRepository
	catalog   repository.CatalogRepository
	movements repository.MovementRepository
	users     repository.UserRepository
	refs      repository.ReferenceRepository
	outbox    repository.OutboxRepository
	close     func()
}

func openStores(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*stores, error) {
	if cfg.Driver == "memory" {
		s := memory.NewStore()
		return &stores{
			tx:        s,
			locations: s.Locations(),
			catalog:   s.Catalog(),
			movements: s.Movements(),
			users:     s.Users(),
			refs:      s.References(),
			outbox:    s.Outbox(),
			close:     func() {},
		}, nil
	}

	if cfg.Migrate {
		if err := postgres.Migrate(cfg.ConnectionString(), log.Component("migrate")); err != nil {
			return nil, err
		}
	}
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &stores{
		tx:        postgres.NewTxRunner(pool),
		locations: postgres.NewLocationRepository(pool),
		catalog:   postgres.NewCatalogRepository(pool),
		movements: postgres.NewMovementRepository(pool),
		users:     postgres.NewUserRepository(pool),
		refs:      postgres.NewReferenceRepository(pool),
		outbox:    postgres.NewOutboxRepository(pool),
		close:     pool.Close,
	}, nil
}

// newLLM devuelve nil si no hay proveedor configurado; los insights usan entonces el respaldo fijo.
func newLLM(cfg config.AIConfig) ports.LLMService {
	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiAPIKey != "" {
			return infraai.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel)
		}
	case "anthropic":
		if cfg.AnthropicAPIKey != "" {
			return infraai.NewAnthropicService(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		}
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.DB.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}
	if cfg.Inventory.DefaultMinQuantity > 0 {
		entity.DefaultMinQuantity = decimal.NewFromInt(int64(cfg.Inventory.DefaultMinQuantity))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento local")
	}
	defer st.close()

	// Cache Redis opcional. Las interfaces quedan en nil (no un puntero nil tipado) si no hay Redis.
	var (
		totalsCache consolidation.Cache
		invalidator inventory.CacheInvalidator
	)
	if cfg.Cache.Addr != "" {
		client, err := cache.NewRedis(ctx, cfg.Cache)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Cache.Addr).Msg("Redis no disponible; consolidación sin cache")
		} else {
			defer client.Close()
			c := cache.NewConsolidationCache(client, cfg.Cache.TTL)
			totalsCache, invalidator = c, c
		}
	}

	authUC := auth.NewAuthUseCase(st.users, st.outbox, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))
	catalogUC := catalog.NewUseCase(st.tx, st.catalog, st.locations, st.refs, st.outbox, invalidator, log.Component("catalog"))
	movementUC := inventory.NewMovementUseCase(st.tx, invalidator, log.Component("movements"))
	transferUC := inventory.NewTransferUseCase(st.tx, invalidator, log.Component("transfers"))
	consolidationUC := consolidation.NewUseCase(st.locations, st.catalog, st.movements, totalsCache,
		cfg.Inventory.ReportWindowDays, log.Component("consolidation"))
	exchangeUC := exchange.NewUseCase(st.tx, st.locations, st.catalog, st.movements, st.users, st.refs,
		invalidator, log.Component("exchange"))
	resetUC := admin.NewResetUseCase(st.tx, invalidator, log.Component("admin"))
	insightsUC := insights.NewUseCase(newLLM(cfg.AI), consolidationUC, st.movements, log.Component("insights"))

	// Réplica remota: sin URL el gateway queda deshabilitado y la outbox acumula.
	var remoteSvc replication.Remote
	if cfg.Sync.Enabled() {
		remoteSvc = remote.NewClient(cfg.Sync.RemoteURL, cfg.Sync.APIKey, cfg.Sync.Timeout)
	}
	gateway := replication.NewGateway(remoteSvc, st.outbox, replication.Options{
		Interval:    cfg.Sync.Interval,
		BatchSize:   cfg.Sync.BatchSize,
		MaxAttempts: cfg.Sync.MaxAttempts,
	}, log.Component("replication"))

	boot := replication.NewBootstrapper(replication.BootstrapDeps{
		Remote:        remoteSvc,
		Tx:            st.tx,
		Locations:     st.locations,
		Movements:     st.movements,
		Users:         st.users,
		Refs:          st.refs,
		Outbox:        st.outbox,
		Admin:         authUC,
		AdminName:     cfg.Admin.Name,
		AdminPassword: cfg.Admin.Password,
	}, log.Component("bootstrap"))
	if loaded, err := boot.Run(ctx); err != nil {
		log.Error().Err(err).Msg("carga inicial")
	} else {
		log.Info().Interface("loaded", loaded).Msg("carga inicial completada")
	}

	if gateway.Enabled() {
		go gateway.Run(ctx)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    16 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))
	app.Use(cors.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "LOGIMAP 360 Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.DB.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:          authUC,
		CatalogUC:       catalogUC,
		MovementUC:      movementUC,
		TransferUC:      transferUC,
		ConsolidationUC: consolidationUC,
		ExchangeUC:      exchangeUC,
		ResetUC:         resetUC,
		InsightsUC:      insightsUC,
		Gateway:         gateway,
		PDF:             infrapdf.NewMarotoPDFGenerator(),
		BundleMaxChars:  cfg.Inventory.BundleMaxChars,
		JWTSecret:       cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if gateway.Enabled() {
		if err := gateway.Flush(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("quedaron cambios sin replicar")
		}
	}

	log.Info().Msg("aplicación detenida")
}
