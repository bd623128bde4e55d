package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-series/internal/domain/entity"
	"github.com/jhoicas/inventario-series/internal/domain/inventory"
)

func unit(state, warehouseID string) *entity.SerialUnit {
	return &entity.SerialUnit{
		ID:           "s-1",
		ProductID:    "P",
		WarehouseID:  warehouseID,
		SerialNumber: "SN-001",
		State:        state,
	}
}

func updated(prev, cur *entity.SerialUnit) inventory.SerialChange {
	return inventory.SerialChange{Event: inventory.SerialUpdated, Unit: cur, Previous: prev}
}

// ──────────────────────────────────────────────────────────────────────────────
// created
// ──────────────────────────────────────────────────────────────────────────────

func TestTransition_CreadaEnStock_Incrementa(t *testing.T) {
	cmds := inventory.Transition(inventory.DefaultScope(), inventory.SerialChange{
		Event: inventory.SerialCreated,
		Unit:  unit(entity.SerialStateInStock, "W1"),
	})
	require.Len(t, cmds, 1)
	assert.Equal(t, inventory.OpIncrement, cmds[0].Op)
	assert.Equal(t, "W1", cmds[0].WarehouseID)
	assert.Equal(t, int64(1), cmds[0].Quantity)
	assert.Equal(t, inventory.ReasonStateIn, cmds[0].Reason)
	assert.Nil(t, cmds[0].Reference)
	assert.Equal(t, "SN-001", cmds[0].Details["numero_serie"])
	assert.Equal(t, "s-1", cmds[0].Details["serie_id"])
}

func TestTransition_CreadaConCompra_NoIncrementa(t *testing.T) {
	u := unit(entity.SerialStateInStock, "W1")
	u.PurchaseID = "C-1"
	cmds := inventory.Transition(inventory.DefaultScope(), inventory.SerialChange{Event: inventory.SerialCreated, Unit: u})
	assert.Empty(t, cmds, "la compra contabiliza sus propias series")
}

func TestTransition_CreadaFueraDeStock_SinComandos(t *testing.T) {
	cmds := inventory.Transition(inventory.DefaultScope(), inventory.SerialChange{
		Event: inventory.SerialCreated,
		Unit:  unit(entity.SerialStateDamaged, "W1"),
	})
	assert.Empty(t, cmds)
}

func TestTransition_SinAlmacen_SinComandos(t *testing.T) {
	cmds := inventory.Transition(inventory.DefaultScope(), inventory.SerialChange{
		Event: inventory.SerialCreated,
		Unit:  unit(entity.SerialStateInStock, ""),
	})
	assert.Empty(t, cmds)
}

// ──────────────────────────────────────────────────────────────────────────────
// updated
// ──────────────────────────────────────────────────────────────────────────────

func TestTransition_VentaDecrementaEnAlmacenAnterior(t *testing.T) {
	prev := unit(entity.SerialStateInStock, "W1")
	cur := unit(entity.SerialStateSold, "W1")
	cur.SaleID = "V-9"
	cur.PurchaseID = "C-1"

	cmds := inventory.Transition(inventory.DefaultScope(), updated(prev, cur))
	require.Len(t, cmds, 1)
	assert.Equal(t, inventory.OpDecrement, cmds[0].Op)
	assert.Equal(t, "W1", cmds[0].WarehouseID)
	assert.Equal(t, inventory.ReasonSaleOut, cmds[0].Reason)
	assert.Equal(t, entity.SaleRef{ID: "V-9"}, cmds[0].Reference, "la venta tiene prioridad sobre la compra")
}

func TestTransition_DevolucionDeVentaIncrementa(t *testing.T) {
	prev := unit(entity.SerialStateSold, "W1")
	prev.SaleID = "V-9"
	cur := unit(entity.SerialStateInStock, "W1")
	cur.SaleID = "V-9"

	cmds := inventory.Transition(inventory.DefaultScope(), updated(prev, cur))
	require.Len(t, cmds, 1)
	assert.Equal(t, inventory.OpIncrement, cmds[0].Op)
	assert.Equal(t, inventory.ReasonSaleReturn, cmds[0].Reason)
}

func TestTransition_CambioDeEstadoConCompra_UsaReferenciaDeCompra(t *testing.T) {
	prev := unit(entity.SerialStateInStock, "W1")
	prev.PurchaseID = "C-1"
	cur := unit(entity.SerialStateDamaged, "W1")
	cur.PurchaseID = "C-1"

	cmds := inventory.Transition(inventory.DefaultScope(), updated(prev, cur))
	require.Len(t, cmds, 1)
	assert.Equal(t, inventory.ReasonPurchaseReturn, cmds[0].Reason)
	assert.Equal(t, entity.PurchaseRef{ID: "C-1"}, cmds[0].Reference)
}

func TestTransition_DecrementoUsaAlmacenAnterior(t *testing.T) {
	prev := unit(entity.SerialStateInStock, "W1")
	cur := unit(entity.SerialStateDamaged, "W2")

	cmds := inventory.Transition(inventory.DefaultScope(), updated(prev, cur))
	require.Len(t, cmds, 1)
	assert.Equal(t, "W1", cmds[0].WarehouseID)
}

func TestTransition_Traspaso_DosComandos(t *testing.T) {
	prev := unit(entity.SerialStateInStock, "W1")
	cur := unit(entity.SerialStateInStock, "W2")

	cmds := inventory.Transition(inventory.DefaultScope(), inventory.SerialChange{
		Event:       inventory.SerialUpdated,
		Unit:        cur,
		Previous:    prev,
		TransferRef: entity.TransferRef{ID: "T-1"},
	})
	require.Len(t, cmds, 2)

	assert.Equal(t, inventory.OpDecrement, cmds[0].Op)
	assert.Equal(t, "W1", cmds[0].WarehouseID)
	assert.Equal(t, inventory.ReasonTransferOut, cmds[0].Reason)
	assert.Equal(t, "W2", cmds[0].Details["almacen_destino_id"])

	assert.Equal(t, inventory.OpIncrement, cmds[1].Op)
	assert.Equal(t, "W2", cmds[1].WarehouseID)
	assert.Equal(t, inventory.ReasonTransferIn, cmds[1].Reason)
	assert.Equal(t, "W1", cmds[1].Details["almacen_origen_id"])
	assert.Equal(t, entity.TransferRef{ID: "T-1"}, cmds[1].Reference)
}

func TestTransition_TraspasoDesdeSinAlmacen_SinComandos(t *testing.T) {
	cmds := inventory.Transition(inventory.DefaultScope(), updated(
		unit(entity.SerialStateInStock, ""),
		unit(entity.SerialStateInStock, "W2"),
	))
	assert.Empty(t, cmds)
}

func TestTransition_FueraDeStockSinCambio_SinComandos(t *testing.T) {
	cmds := inventory.Transition(inventory.DefaultScope(), updated(
		unit(entity.SerialStateSold, "W1"),
		unit(entity.SerialStateDamaged, "W2"),
	))
	assert.Empty(t, cmds)
}

// ──────────────────────────────────────────────────────────────────────────────
// deleted / restored / muted
// ──────────────────────────────────────────────────────────────────────────────

func TestTransition_EliminarYRestaurar(t *testing.T) {
	u := unit(entity.SerialStateInStock, "W1")

	del := inventory.Transition(inventory.DefaultScope(), inventory.SerialChange{Event: inventory.SerialDeleted, Unit: u})
	require.Len(t, del, 1)
	assert.Equal(t, inventory.OpDecrement, del[0].Op)

	res := inventory.Transition(inventory.DefaultScope(), inventory.SerialChange{Event: inventory.SerialRestored, Unit: u})
	require.Len(t, res, 1)
	assert.Equal(t, inventory.OpIncrement, res[0].Op)

	sold := unit(entity.SerialStateSold, "W1")
	assert.Empty(t, inventory.Transition(inventory.DefaultScope(), inventory.SerialChange{Event: inventory.SerialDeleted, Unit: sold}))
}

func TestTransition_AlcanceSilenciado_SinComandos(t *testing.T) {
	scope := inventory.MutedScope()
	assert.True(t, scope.Muted())
	assert.False(t, inventory.DefaultScope().Muted())

	for _, ev := range []inventory.SerialEvent{inventory.SerialCreated, inventory.SerialDeleted, inventory.SerialRestored} {
		cmds := inventory.Transition(scope, inventory.SerialChange{Event: ev, Unit: unit(entity.SerialStateInStock, "W1")})
		assert.Empty(t, cmds, "evento %s", ev)
	}
}
