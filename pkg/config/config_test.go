package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-ledger/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.DB.Driver)
	assert.Equal(t, 98, cfg.Inventory.DefaultMinQuantity)
	assert.Equal(t, 30, cfg.Inventory.ReportWindowDays)
	assert.Equal(t, 2500, cfg.Inventory.BundleMaxChars)
	assert.Equal(t, 5*time.Second, cfg.Sync.Interval)
	assert.False(t, cfg.Sync.Enabled())
	assert.True(t, cfg.DB.Migrate)
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("SYNC_REMOTE_URL", "https://remote.example.com/")
	t.Setenv("SYNC_BATCH_SIZE", "10")
	t.Setenv("DB_MIGRATE", "false")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://remote.example.com", cfg.Sync.RemoteURL)
	assert.True(t, cfg.Sync.Enabled())
	assert.Equal(t, 10, cfg.Sync.BatchSize)
	assert.False(t, cfg.DB.Migrate)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss/word", DBName: "x", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss%2Fword@db:5432/x?sslmode=disable", c.DSN())
}
