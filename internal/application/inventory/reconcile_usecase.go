package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-series/internal/domain"
	"github.com/jhoicas/inventario-series/internal/domain/entity"
	"github.com/jhoicas/inventario-series/internal/domain/inventory"
	"github.com/jhoicas/inventario-series/pkg/logger"
	"github.com/jhoicas/inventario-series/pkg/metrics"
)

// ReconcileUseCase repara la deriva entre el stock agregado y las series in_stock de un producto.
// La deriva nunca es un error: se corrige, se registra en warn y se cuenta en métricas.
type ReconcileUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
	metrics  *metrics.ReconcileMetrics
}

// NewReconcileUseCase construye el caso de uso. metrics puede ser nil.
func NewReconcileUseCase(txRunner TxRunner, log *logger.Logger, m *metrics.ReconcileMetrics) *ReconcileUseCase {
	return &ReconcileUseCase{txRunner: txRunner, log: log, metrics: m}
}

// Reconcile concilia un producto en su propia transacción (o en la del caller si ctx la lleva).
// Para productos sin serie no hace nada.
func (uc *ReconcileUseCase) Reconcile(ctx context.Context, productID string) (inventory.ReconciliationPlan, error) {
	if productID == "" {
		return inventory.ReconciliationPlan{}, domain.ErrMissingProduct
	}
	var plan inventory.ReconciliationPlan
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		product, err := repos.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
		}
		plan, err = uc.reconcileInTx(ctx, repos, product)
		return err
	})
	return plan, err
}

func (uc *ReconcileUseCase) reconcileInTx(ctx context.Context, repos Repos, product *entity.Product) (inventory.ReconciliationPlan, error) {
	if !product.RequiresSerial {
		return inventory.ReconciliationPlan{ProductID: product.ID}, nil
	}
	rows, err := repos.Stock.ListByProductForUpdate(ctx, product.ID)
	if err != nil {
		return inventory.ReconciliationPlan{}, err
	}
	counts, err := repos.Serials.CountInStockByWarehouse(ctx, product.ID)
	if err != nil {
		return inventory.ReconciliationPlan{}, err
	}

	plan := inventory.PlanReconciliation(product.ID, counts, rows)
	if !plan.HasRepairs() {
		return plan, nil
	}

	byWarehouse := make(map[string]*entity.Stock, len(plan.Rows))
	for _, r := range plan.Rows {
		byWarehouse[r.WarehouseID] = r
	}
	for _, rep := range plan.Repairs {
		if err := repos.Stock.Upsert(ctx, byWarehouse[rep.WarehouseID]); err != nil {
			return inventory.ReconciliationPlan{}, err
		}
		uc.log.Warn().
			Str("product_id", product.ID).
			Str("warehouse_id", rep.WarehouseID).
			Int64("before", rep.Before).
			Int64("after", rep.After).
			Bool("created", rep.Created).
			Msg("stock conciliado con series")
		uc.metrics.ObserveRepair(rep.Created, rep.Before, rep.After)
	}
	if err := repos.Products.UpdateStock(ctx, product.ID, plan.Total); err != nil {
		return inventory.ReconciliationPlan{}, err
	}
	product.Stock = plan.Total
	return plan, nil
}
