package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-series/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCostCalculator_PromedioPonderado(t *testing.T) {
	got := inventory.CostCalculator(d("10"), d("100"), d("10"), d("200"))
	assert.True(t, got.Equal(d("150")), "got %s", got)
}

func TestCostCalculator_StockNegativoSeTomaComoCero(t *testing.T) {
	got := inventory.CostCalculator(d("-2"), d("100"), d("4"), d("50"))
	assert.True(t, got.Equal(d("50")), "got %s", got)
}

func TestCostCalculator_SinUnidades(t *testing.T) {
	assert.True(t, inventory.CostCalculator(d("0"), d("10"), d("0"), d("10")).IsZero())
}
