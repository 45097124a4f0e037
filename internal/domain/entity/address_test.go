package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
)

func TestAddress_NormalizeYClave(t *testing.T) {
	a := entity.Address{Street: " 8-a ", Block: "01", Level: "1", Position: "p1"}
	assert.Equal(t, "8-A/01/1/P1", a.Key())
	assert.True(t, a.Equal(entity.Address{Street: "8-A", Block: "01", Level: "1", Position: "P1"}))
}

func TestAddress_PlaceholderLegado(t *testing.T) {
	legacy := entity.Address{Street: "pendente", Block: "---", Level: "---", Position: "---"}
	assert.True(t, legacy.IsPending())
	assert.Equal(t, entity.PendingAddress().Key(), legacy.Key())
}

func TestAddress_Completa(t *testing.T) {
	assert.True(t, entity.Address{Street: "8-B", Block: "02"}.IsComplete())
	assert.False(t, entity.Address{Street: "8-B"}.IsComplete())
	assert.False(t, entity.Address{Block: "02"}.IsComplete())
}

func TestValidQuantity(t *testing.T) {
	assert.True(t, entity.ValidQuantity(decimal.RequireFromString("12.125")))
	assert.True(t, entity.ValidQuantity(decimal.RequireFromString("1.5000")))
	assert.False(t, entity.ValidQuantity(decimal.RequireFromString("0.0001")))
}

func TestLocationRecord_Prune(t *testing.T) {
	r := &entity.LocationRecord{Address: entity.PendingAddress()}
	assert.False(t, r.ShouldPrune(), "el placeholder en cero se conserva")
	r.Address = entity.Address{Street: "1", Block: "1"}
	assert.True(t, r.ShouldPrune())
}
