package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-series/internal/application/inventory"
	"github.com/jhoicas/inventario-series/internal/domain"
	"github.com/jhoicas/inventario-series/pkg/logger"
)

type fakeLock struct{ l *fakeLocker }

func (f fakeLock) Release(context.Context) error {
	f.l.held = false
	f.l.released++
	return nil
}

type fakeLocker struct {
	held     bool
	released int
}

func (l *fakeLocker) Obtain(_ context.Context, _ string, _ time.Duration) (inventory.Lock, error) {
	if l.held {
		return nil, domain.ErrSweepInProgress
	}
	l.held = true
	return fakeLock{l}, nil
}

type fakeReportWriter struct {
	path   string
	report *inventory.SweepReport
}

func (w *fakeReportWriter) Write(path string, r *inventory.SweepReport) error {
	w.path, w.report = path, r
	return nil
}

func TestReconcile_Idempotente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "S1", whMain)
	f.register(t, "S2", whSecond)

	// Deriva manual: fila descuadrada y fila faltante.
	f.store.st.stock[stockKey(prodSerial, whMain)].Quantity = 9
	delete(f.store.st.stock, stockKey(prodSerial, whSecond))

	first, err := f.reconciler.Reconcile(ctx, prodSerial)
	require.NoError(t, err)
	assert.Len(t, first.Repairs, 2)
	f.requireInvariant(t, prodSerial)

	second, err := f.reconciler.Reconcile(ctx, prodSerial)
	require.NoError(t, err)
	assert.False(t, second.HasRepairs())
}

func TestReconcile_ProductoSinSerieNoSeToca(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.movements.Entrada(ctx, prodBulk, 3, inventory.MovementContext{WarehouseID: whMain})
	require.NoError(t, err)

	plan, err := f.reconciler.Reconcile(ctx, prodBulk)
	require.NoError(t, err)
	assert.False(t, plan.HasRepairs())
	assert.Equal(t, int64(3), f.store.stockQty(prodBulk, whMain))

	_, err = f.reconciler.Reconcile(ctx, "")
	assert.ErrorIs(t, err, domain.ErrMissingProduct)
}

func TestSweep_ConciliaYCorrigeResumen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "S1", whMain)
	f.store.st.stock[stockKey(prodSerial, whMain)].Quantity = 4
	_, err := f.movements.Entrada(ctx, prodBulk, 2, inventory.MovementContext{WarehouseID: whMain})
	require.NoError(t, err)
	f.store.st.products[prodBulk].Stock = 7

	locker := &fakeLocker{}
	writer := &fakeReportWriter{}
	sweep := inventory.NewSweepUseCase(f.store, f.reconciler, locker, writer, inventory.SweepConfig{}, logger.Nop(), nil)

	report, err := sweep.Run(ctx, inventory.SweepOptions{Fix: true, ReportPath: "reporte.xlsx"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.RepairCount())
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, prodBulk, report.Discrepancies[0].ProductID)
	assert.Equal(t, int64(2), f.store.st.products[prodBulk].Stock)
	f.requireInvariant(t, prodSerial)

	assert.Equal(t, "reporte.xlsx", writer.path)
	assert.Same(t, report, writer.report)
	assert.Equal(t, 1, locker.released)
	assert.False(t, locker.held)
}

func TestSweep_SinFixSoloDetecta(t *testing.T) {
	f := newFixture(t)
	f.store.st.products[prodBulk].Stock = 5
	sweep := inventory.NewSweepUseCase(f.store, f.reconciler, nil, nil, inventory.SweepConfig{}, logger.Nop(), nil)

	report, err := sweep.Run(context.Background(), inventory.SweepOptions{})
	require.NoError(t, err)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, int64(5), f.store.st.products[prodBulk].Stock)
}

func TestSweep_CandadoTomado(t *testing.T) {
	f := newFixture(t)
	locker := &fakeLocker{held: true}
	sweep := inventory.NewSweepUseCase(f.store, f.reconciler, locker, nil, inventory.SweepConfig{}, logger.Nop(), nil)

	_, err := sweep.Run(context.Background(), inventory.SweepOptions{})
	assert.ErrorIs(t, err, domain.ErrSweepInProgress)
}

func TestSweep_ErroresPorProductoNoDetienenElBarrido(t *testing.T) {
	f := newFixture(t)
	f.register(t, "S1", whMain)
	f.store.st.stock[stockKey(prodSerial, whMain)].Quantity = 3
	sweep := inventory.NewSweepUseCase(f.store, f.reconciler, nil, nil, inventory.SweepConfig{}, logger.Nop(), nil)

	report, err := sweep.Run(context.Background(), inventory.SweepOptions{ProductID: "no-existe"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.Len(t, report.Products, 1)
	assert.Error(t, report.Products[0].Err)
}
