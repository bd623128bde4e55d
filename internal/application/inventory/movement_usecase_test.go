package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-series/internal/application/inventory"
	"github.com/jhoicas/inventario-series/internal/domain"
	"github.com/jhoicas/inventario-series/internal/domain/entity"
)

func TestEntradaSalida_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.movements.Entrada(ctx, "", 1, inventory.MovementContext{WarehouseID: whMain})
	assert.ErrorIs(t, err, domain.ErrMissingProduct)

	_, err = f.movements.Entrada(ctx, prodBulk, 0, inventory.MovementContext{WarehouseID: whMain})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.movements.Salida(ctx, prodBulk, 1, inventory.MovementContext{})
	assert.ErrorIs(t, err, domain.ErrMissingWarehouse)

	_, err = f.movements.Entrada(ctx, prodBulk, 1, inventory.MovementContext{WarehouseID: whMain, SkipTransaction: true})
	assert.ErrorIs(t, err, domain.ErrNoOuterTransaction)

	_, err = f.movements.Entrada(ctx, prodBulk, 1, inventory.MovementContext{WarehouseID: whClosed})
	assert.ErrorIs(t, err, domain.ErrInactiveWarehouse)

	_, err = f.movements.Entrada(ctx, "no-existe", 1, inventory.MovementContext{WarehouseID: whMain})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Empty(t, f.store.st.movements, "ninguna validación deja movimientos")
	assert.False(t, f.store.hasStockRow(prodBulk, whClosed))
}

func TestEntradaSalida_SkipTransactionDentroDeRunExterno(t *testing.T) {
	f := newFixture(t)
	err := f.store.Run(context.Background(), func(ctx context.Context, _ inventory.Repos) error {
		_, err := f.movements.Entrada(ctx, prodBulk, 2, inventory.MovementContext{WarehouseID: whMain, SkipTransaction: true})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.store.stockQty(prodBulk, whMain))
}

// Trazabilidad: N llamadas producen exactamente N movimientos con motivo y delta coherentes.
func TestEntradaSalida_TrazabilidadDeMovimientos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mc := inventory.MovementContext{WarehouseID: whMain, Reason: "Ajuste manual", UserID: "u-1"}

	ops := []struct {
		entrada bool
		qty     int64
	}{{true, 5}, {false, 2}, {true, 1}, {false, 7}, {true, 3}}
	for _, op := range ops {
		var err error
		if op.entrada {
			_, err = f.movements.Entrada(ctx, prodBulk, op.qty, mc)
		} else {
			_, err = f.movements.Salida(ctx, prodBulk, op.qty, mc)
		}
		require.NoError(t, err)
	}

	movs := f.store.movementsFor(prodBulk)
	require.Len(t, movs, len(ops))
	var running int64
	for i, m := range movs {
		assert.NotEmpty(t, m.Reason)
		assert.Equal(t, running, m.StockBefore, "movimiento %d", i)
		assert.Equal(t, m.StockBefore+m.Delta(), m.StockAfter, "movimiento %d", i)
		assert.Equal(t, "u-1", m.CreatedBy)
		running = m.StockAfter
	}
	assert.Equal(t, int64(0), f.store.stockQty(prodBulk, whMain))
	assert.Equal(t, int64(0), f.store.st.products[prodBulk].Stock)
}

func TestSalida_PermiteStockNegativo(t *testing.T) {
	f := newFixture(t)
	movs, err := f.movements.Salida(context.Background(), prodBulk, 3, inventory.MovementContext{WarehouseID: whMain})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, int64(-3), movs[0].StockAfter)
	assert.Equal(t, entity.MovementTypeSalida, movs[0].Type)
	assert.Equal(t, "Salida de inventario", movs[0].Reason)
	assert.Equal(t, int64(-3), f.store.stockQty(prodBulk, whMain))
}

func TestEntrada_CostoPromedioPonderado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c100 := decimal.NewFromInt(100)
	c200 := decimal.NewFromInt(200)

	_, err := f.movements.Entrada(ctx, prodBulk, 10, inventory.MovementContext{WarehouseID: whMain, UnitCost: &c100})
	require.NoError(t, err)
	_, err = f.movements.Entrada(ctx, prodBulk, 10, inventory.MovementContext{WarehouseID: whSecond, UnitCost: &c200})
	require.NoError(t, err)

	assert.True(t, f.store.st.products[prodBulk].Cost.Equal(decimal.NewFromInt(150)),
		"costo = %s", f.store.st.products[prodBulk].Cost)
	assert.Equal(t, int64(20), f.store.st.products[prodBulk].Stock)
}

func TestEntrada_LoteRequiereNumero(t *testing.T) {
	f := newFixture(t)
	_, err := f.movements.Entrada(context.Background(), prodLot, 1, inventory.MovementContext{WarehouseID: whMain})
	assert.ErrorIs(t, err, domain.ErrMissingLotNumber)
	assert.False(t, f.store.hasStockRow(prodLot, whMain), "el rollback no deja la fila creada")
}

func TestSalida_LotesFIFOPorCaducidad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	pronto := now.Add(48 * time.Hour)
	tarde := now.Add(30 * 24 * time.Hour)
	vencido := now.Add(-24 * time.Hour)

	for _, l := range []struct {
		num string
		exp time.Time
		qty int64
	}{{"L-TARDE", tarde, 5}, {"L-PRONTO", pronto, 3}, {"L-VENCIDO", vencido, 10}} {
		exp := l.exp
		_, err := f.movements.Entrada(ctx, prodLot, l.qty, inventory.MovementContext{
			WarehouseID: whMain, LotNumber: l.num, ExpiresAt: &exp,
		})
		require.NoError(t, err)
	}

	movs, err := f.movements.Salida(ctx, prodLot, 4, inventory.MovementContext{WarehouseID: whMain})
	require.NoError(t, err)
	require.Len(t, movs, 1, "una salida genera un solo movimiento")
	consumed := movs[0].Details["lotes"].([]map[string]any)
	require.Len(t, consumed, 2)
	assert.Equal(t, "L-PRONTO", consumed[0]["numero_lote"])
	assert.Equal(t, int64(3), consumed[0]["cantidad"])
	assert.Equal(t, "L-TARDE", consumed[1]["numero_lote"])
	assert.Equal(t, int64(1), consumed[1]["cantidad"])

	_, err = f.movements.Salida(ctx, prodLot, 5, inventory.MovementContext{WarehouseID: whMain})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "los lotes vencidos no se consumen")
	assert.Equal(t, int64(14), f.store.stockQty(prodLot, whMain))
}

func TestEntrada_KitSeExpandeEnComponentes(t *testing.T) {
	f := newFixture(t)
	f.store.addProduct(entity.Product{ID: "K", SKU: "KIT-1", Kind: entity.ProductKindKit})
	f.store.addProduct(entity.Product{ID: "K2", SKU: "KIT-2", Kind: entity.ProductKindKit})
	f.store.addProduct(entity.Product{ID: "C1", SKU: "C1"})
	f.store.st.kits["K"] = []entity.KitComponent{{KitID: "K", ComponentID: prodBulk, Quantity: 2}, {KitID: "K", ComponentID: "K2", Quantity: 1}}
	f.store.st.kits["K2"] = []entity.KitComponent{{KitID: "K2", ComponentID: "C1", Quantity: 3}}

	movs, err := f.movements.Entrada(context.Background(), "K", 2, inventory.MovementContext{WarehouseID: whMain, Reason: "Armado"})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, int64(4), f.store.stockQty(prodBulk, whMain))
	assert.Equal(t, int64(6), f.store.stockQty("C1", whMain))
	assert.Equal(t, "Armado (Componente de Kit: KIT-1)", movs[0].Reason)
	assert.Equal(t, "Armado (Componente de Kit: KIT-1) (Componente de Kit: KIT-2)", movs[1].Reason)
	assert.False(t, f.store.hasStockRow("K", whMain), "el kit no tiene stock propio")
}

func TestEntrada_ProductoConSerieSeConcilia(t *testing.T) {
	f := newFixture(t)
	_, err := f.movements.Entrada(context.Background(), prodSerial, 4, inventory.MovementContext{WarehouseID: whMain})
	require.NoError(t, err)
	require.Len(t, f.store.movementsFor(prodSerial), 1, "el movimiento queda registrado")
	f.requireInvariant(t, prodSerial)
}

func TestListMovements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.movements.Entrada(ctx, prodBulk, 1, inventory.MovementContext{WarehouseID: whMain})
		require.NoError(t, err)
	}
	movs, err := f.movements.ListMovements(ctx, prodBulk, nil, nil, 2, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 2)

	_, err = f.movements.ListMovements(ctx, "", nil, nil, 0, 0)
	assert.ErrorIs(t, err, domain.ErrMissingProduct)
}
