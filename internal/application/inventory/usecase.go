package inventory

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-series/internal/domain"
	"github.com/jhoicas/inventario-series/internal/domain/entity"
	"github.com/jhoicas/inventario-series/internal/domain/inventory"
	"github.com/jhoicas/inventario-series/pkg/logger"
)

// Motivos por defecto de entradas y salidas manuales.
const (
	defaultEntradaReason = "Entrada de inventario"
	defaultSalidaReason  = "Salida de inventario"
	kitComponentSuffix   = " (Componente de Kit: %s)"
	maxKitDepth          = 8
)

// MovementUseCase registra entradas y salidas de inventario de forma transaccional:
// bloquea la fila de stock (SELECT FOR UPDATE), la ajusta y agrega un único movimiento.
// Para productos con serie concilia el stock en la misma transacción.
type MovementUseCase struct {
	txRunner   TxRunner
	reconciler *ReconcileUseCase
	log        *logger.Logger
	now        func() time.Time
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(txRunner TxRunner, reconciler *ReconcileUseCase, log *logger.Logger) *MovementUseCase {
	return &MovementUseCase{
		txRunner:   txRunner,
		reconciler: reconciler,
		log:        log,
		now:        time.Now,
	}
}

// Entrada suma qty unidades del producto en el almacén de mc.
func (uc *MovementUseCase) Entrada(ctx context.Context, productID string, qty int64, mc MovementContext) ([]*entity.InventoryMovement, error) {
	return uc.run(ctx, inventory.OpIncrement, productID, qty, mc)
}

// Salida resta qty unidades del producto en el almacén de mc. Un resultado negativo no se rechaza:
// queda como deriva que la conciliación corrige.
func (uc *MovementUseCase) Salida(ctx context.Context, productID string, qty int64, mc MovementContext) ([]*entity.InventoryMovement, error) {
	return uc.run(ctx, inventory.OpDecrement, productID, qty, mc)
}

// ListMovements lista el historial de movimientos de un producto.
func (uc *MovementUseCase) ListMovements(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	if productID == "" {
		return nil, domain.ErrMissingProduct
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var out []*entity.InventoryMovement
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		var err error
		out, err = repos.Movements.ListByProduct(ctx, productID, from, to, limit, offset)
		return err
	})
	return out, err
}

func (uc *MovementUseCase) validate(ctx context.Context, productID string, qty int64, mc MovementContext) error {
	if productID == "" {
		return domain.ErrMissingProduct
	}
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}
	if mc.WarehouseID == "" {
		return domain.ErrMissingWarehouse
	}
	if mc.SkipTransaction && !uc.txRunner.InTransaction(ctx) {
		return domain.ErrNoOuterTransaction
	}
	return nil
}

func (uc *MovementUseCase) run(ctx context.Context, op inventory.LedgerOp, productID string, qty int64, mc MovementContext) ([]*entity.InventoryMovement, error) {
	if err := uc.validate(ctx, productID, qty, mc); err != nil {
		return nil, err
	}
	var out []*entity.InventoryMovement
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		var err error
		out, err = uc.applyInTx(ctx, repos, op, productID, qty, mc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// applyInTx aplica el movimiento dentro de la transacción de repos. Los kits se expanden
// a sus componentes; los productos con serie se concilian al final.
func (uc *MovementUseCase) applyInTx(ctx context.Context, repos Repos, op inventory.LedgerOp, productID string, qty int64, mc MovementContext) ([]*entity.InventoryMovement, error) {
	product, err := repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	if mc.Reason == "" {
		mc.Reason = defaultEntradaReason
		if op == inventory.OpDecrement {
			mc.Reason = defaultSalidaReason
		}
	}
	return uc.applyProduct(ctx, repos, op, product, qty, mc, 0)
}

func (uc *MovementUseCase) applyProduct(ctx context.Context, repos Repos, op inventory.LedgerOp, product *entity.Product, qty int64, mc MovementContext, depth int) ([]*entity.InventoryMovement, error) {
	if !product.IsKit() {
		mov, err := uc.applyDelta(ctx, repos, op, product, qty, mc)
		if err != nil {
			return nil, err
		}
		if product.RequiresSerial {
			if _, err := uc.reconciler.reconcileInTx(ctx, repos, product); err != nil {
				return nil, err
			}
		}
		return []*entity.InventoryMovement{mov}, nil
	}

	if depth >= maxKitDepth {
		return nil, fmt.Errorf("%w: kit %s anidado demasiado profundo", domain.ErrInvalidInput, product.SKU)
	}
	components, err := repos.Products.ListKitComponents(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if len(components) == 0 {
		return nil, fmt.Errorf("%w: el kit %s no tiene componentes", domain.ErrInvalidInput, product.SKU)
	}
	var out []*entity.InventoryMovement
	for _, comp := range components {
		child, err := repos.Products.GetByID(ctx, comp.ComponentID)
		if err != nil {
			return nil, err
		}
		if child == nil {
			return nil, fmt.Errorf("%w: componente %s del kit %s", domain.ErrNotFound, comp.ComponentID, product.SKU)
		}
		childCtx := mc
		childCtx.Reason = mc.Reason + fmt.Sprintf(kitComponentSuffix, product.SKU)
		childCtx.UnitCost = nil
		movs, err := uc.applyProduct(ctx, repos, op, child, qty*comp.Quantity, childCtx, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, movs...)
	}
	return out, nil
}

// applyCommand ejecuta un comando del ciclo de vida de series sobre un producto ya cargado.
func (uc *MovementUseCase) applyCommand(ctx context.Context, repos Repos, product *entity.Product, cmd inventory.LedgerCommand, userID string) (*entity.InventoryMovement, error) {
	return uc.applyDelta(ctx, repos, cmd.Op, product, cmd.Quantity, MovementContext{
		WarehouseID: cmd.WarehouseID,
		Reason:      cmd.Reason,
		Reference:   cmd.Reference,
		Details:     cmd.Details,
		UserID:      userID,
	})
}

// applyDelta es la primitiva de incremento/decremento: crea la fila de stock si falta,
// la ajusta, recalcula el resumen del producto y agrega exactamente un movimiento.
func (uc *MovementUseCase) applyDelta(ctx context.Context, repos Repos, op inventory.LedgerOp, product *entity.Product, qty int64, mc MovementContext) (*entity.InventoryMovement, error) {
	wh, err := repos.Warehouses.GetByID(ctx, mc.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || !wh.IsActive() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInactiveWarehouse, mc.WarehouseID)
	}

	now := uc.now()
	details := make(map[string]any, len(mc.Details)+1)
	maps.Copy(details, mc.Details)

	var lotID string
	if product.TracksLots {
		lotID, err = uc.applyLots(ctx, repos, op, product, qty, mc, details, now)
		if err != nil {
			return nil, err
		}
	}

	stock, err := repos.Stock.LockOrCreate(ctx, product.ID, mc.WarehouseID)
	if err != nil {
		return nil, err
	}
	before := stock.Quantity
	movType := entity.MovementTypeEntrada
	if op == inventory.OpDecrement {
		movType = entity.MovementTypeSalida
		stock.Quantity -= qty
	} else {
		stock.Quantity += qty
	}
	stock.UpdatedAt = now
	if err := repos.Stock.Upsert(ctx, stock); err != nil {
		return nil, err
	}
	if stock.Quantity < 0 {
		uc.log.Warn().
			Str("product_id", product.ID).
			Str("warehouse_id", mc.WarehouseID).
			Int64("before", before).
			Int64("after", stock.Quantity).
			Msg("stock negativo tras salida; queda para conciliación")
	}

	if op == inventory.OpIncrement && mc.UnitCost != nil {
		cost := inventory.CostCalculator(
			decimal.NewFromInt(product.Stock), product.Cost,
			decimal.NewFromInt(qty), *mc.UnitCost,
		)
		if err := repos.Products.UpdateCost(ctx, product.ID, cost); err != nil {
			return nil, err
		}
		product.Cost = cost
		details["costo_unitario"] = mc.UnitCost.String()
	}

	mov := &entity.InventoryMovement{
		ProductID:   product.ID,
		WarehouseID: mc.WarehouseID,
		LotID:       lotID,
		Type:        movType,
		Quantity:    qty,
		StockBefore: before,
		StockAfter:  stock.Quantity,
		Reason:      mc.Reason,
		Reference:   mc.Reference,
		Details:     details,
		CreatedBy:   mc.UserID,
		CreatedAt:   now,
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}

	total, err := repos.Stock.SumByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if err := repos.Products.UpdateStock(ctx, product.ID, total); err != nil {
		return nil, err
	}
	product.Stock = total
	return mov, nil
}

// applyLots ajusta los lotes del producto. Entrada: crea o incrementa el lote indicado.
// Salida: consume lotes vigentes por fecha de caducidad (FIFO); un lote nunca queda negativo.
func (uc *MovementUseCase) applyLots(ctx context.Context, repos Repos, op inventory.LedgerOp, product *entity.Product, qty int64, mc MovementContext, details map[string]any, now time.Time) (string, error) {
	if op == inventory.OpIncrement {
		if mc.LotNumber == "" {
			return "", domain.ErrMissingLotNumber
		}
		lot, err := repos.Lots.LockByNumber(ctx, product.ID, mc.WarehouseID, mc.LotNumber)
		if err != nil {
			return "", err
		}
		if lot == nil {
			lot = &entity.Lot{
				ProductID:   product.ID,
				WarehouseID: mc.WarehouseID,
				Number:      mc.LotNumber,
				ExpiresAt:   mc.ExpiresAt,
				InitialQty:  qty,
				CurrentQty:  qty,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if mc.UnitCost != nil {
				lot.UnitCost = *mc.UnitCost
			}
			if err := repos.Lots.Create(ctx, lot); err != nil {
				return "", err
			}
		} else {
			lot.CurrentQty += qty
			lot.UpdatedAt = now
			if err := repos.Lots.Update(ctx, lot); err != nil {
				return "", err
			}
		}
		details["numero_lote"] = lot.Number
		return lot.ID, nil
	}

	lots, err := repos.Lots.ListAvailableForUpdate(ctx, product.ID, mc.WarehouseID)
	if err != nil {
		return "", err
	}
	var available int64
	for _, l := range lots {
		if !l.Expired(now) {
			available += l.CurrentQty
		}
	}
	if available < qty {
		return "", fmt.Errorf("%w: lotes vigentes %d, solicitado %d", domain.ErrInsufficientStock, available, qty)
	}

	pending := qty
	var consumed []map[string]any
	var lastID string
	for _, l := range lots {
		if pending == 0 {
			break
		}
		if l.Expired(now) || l.CurrentQty <= 0 {
			continue
		}
		take := min(l.CurrentQty, pending)
		l.CurrentQty -= take
		l.UpdatedAt = now
		if err := repos.Lots.Update(ctx, l); err != nil {
			return "", err
		}
		pending -= take
		lastID = l.ID
		consumed = append(consumed, map[string]any{"numero_lote": l.Number, "cantidad": take})
	}
	details["lotes"] = consumed
	if len(consumed) == 1 {
		return lastID, nil
	}
	return "", nil
}
