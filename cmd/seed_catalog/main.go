// seed_catalog carga un archivo delimitado por ';' (plantilla de inventario o de catálogo)
// directamente en la base PostgreSQL configurada, sin pasar por la API.
//
// Uso: go run ./cmd/seed_catalog [-kind inventory|catalog] ruta/archivo.csv
// Acepta UTF-8 (con o sin BOM) y Windows-1252. Los cambios quedan encolados para el remoto.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/jhoicas/bodega-ledger/internal/application/catalog"
	"github.com/jhoicas/bodega-ledger/internal/application/exchange"
	"github.com/jhoicas/bodega-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/bodega-ledger/pkg/config"
	"github.com/jhoicas/bodega-ledger/pkg/logger"
)

func main() {
	kind := flag.String("kind", catalog.ImportInventory, "tipo de archivo: inventory | catalog")
	flag.Parse()
	if flag.NArg() != 1 || !catalog.ValidImportKind(*kind) {
		fmt.Fprintln(os.Stderr, "uso: seed_catalog [-kind inventory|catalog] archivo.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: cfg.App.Name})

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir archivo: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := exchange.ParseDelimited(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer archivo: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if cfg.DB.Migrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log.Component("migrate")); err != nil {
			fmt.Fprintf(os.Stderr, "Migraciones: %v\n", err)
			os.Exit(1)
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	uc := catalog.NewUseCase(
		postgres.NewTxRunner(pool),
		postgres.NewCatalogRepository(pool),
		postgres.NewLocationRepository(pool),
		postgres.NewReferenceRepository(pool),
		postgres.NewOutboxRepository(pool),
		nil,
		zerolog.Nop(),
	)
	res, err := uc.BatchImport(ctx, *kind, rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Importar: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Importadas: %d filas, descartadas: %d (%s)\n", res.Imported, res.Skipped, flag.Arg(0))
}
