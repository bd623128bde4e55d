package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-series/internal/application/inventory"
	"github.com/jhoicas/inventario-series/internal/domain/entity"
	"github.com/jhoicas/inventario-series/pkg/logger"
)

const (
	prodSerial = "P"
	prodBulk   = "B"
	prodLot    = "L"
	whMain     = "W"
	whSecond   = "W2"
	whClosed   = "W-off"
)

type fixture struct {
	store      *memStore
	movements  *inventory.MovementUseCase
	reconciler *inventory.ReconcileUseCase
	serials    *inventory.SerialUseCase
	purchases  *inventory.PurchaseUseCase
	sales      *inventory.SaleUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	store.addProduct(entity.Product{ID: prodSerial, SKU: "SKU-P", RequiresSerial: true})
	store.addProduct(entity.Product{ID: prodBulk, SKU: "SKU-B"})
	store.addProduct(entity.Product{ID: prodLot, SKU: "SKU-L", TracksLots: true})
	store.addWarehouse(whMain, true)
	store.addWarehouse(whSecond, true)
	store.addWarehouse(whClosed, false)

	log := logger.Nop()
	reconciler := inventory.NewReconcileUseCase(store, log, nil)
	movements := inventory.NewMovementUseCase(store, reconciler, log)
	serials := inventory.NewSerialUseCase(store, movements, reconciler, log)
	return &fixture{
		store:      store,
		movements:  movements,
		reconciler: reconciler,
		serials:    serials,
		purchases:  inventory.NewPurchaseUseCase(store, movements, serials, reconciler, log),
		sales:      inventory.NewSaleUseCase(store, movements, serials, log),
	}
}

// requireInvariant verifica que el stock agregado coincida con las series en stock en cada almacén.
func (f *fixture) requireInvariant(t *testing.T, productID string) {
	t.Helper()
	for _, wh := range []string{whMain, whSecond, whClosed} {
		require.Equal(t, f.store.trueCount(productID, wh), f.store.stockQty(productID, wh),
			"stock de %s en %s debe igualar las series en stock", productID, wh)
	}
	var sum int64
	for _, wh := range []string{whMain, whSecond, whClosed} {
		sum += f.store.stockQty(productID, wh)
	}
	require.Equal(t, sum, f.store.st.products[productID].Stock, "resumen de producto")
}
