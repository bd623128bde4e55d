package inventory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/inventario-series/internal/domain"
	"github.com/jhoicas/inventario-series/internal/domain/entity"
	"github.com/jhoicas/inventario-series/internal/domain/inventory"
	"github.com/jhoicas/inventario-series/pkg/logger"
)

// Motivos de la edición masiva de series de una compra.
const (
	reasonPurchaseEditIncrease = "Edición de compra: ajuste por aumento"
	reasonPurchaseEditDecrease = "Edición de compra: ajuste por reducción"
)

// NormalizeSerial recorta espacios y aplica NFKC para comparar y guardar números de serie.
func NormalizeSerial(s string) string {
	return norm.NFKC.String(strings.TrimSpace(s))
}

// SerialUseCase gestiona el ciclo de vida de las unidades con serie. Cada mutación pasa por
// inventory.Transition y aplica sus comandos y la conciliación en la misma transacción.
type SerialUseCase struct {
	txRunner   TxRunner
	movements  *MovementUseCase
	reconciler *ReconcileUseCase
	log        *logger.Logger
	now        func() time.Time
}

// NewSerialUseCase construye el caso de uso.
func NewSerialUseCase(txRunner TxRunner, movements *MovementUseCase, reconciler *ReconcileUseCase, log *logger.Logger) *SerialUseCase {
	return &SerialUseCase{
		txRunner:   txRunner,
		movements:  movements,
		reconciler: reconciler,
		log:        log,
		now:        time.Now,
	}
}

// RegisterSerialInput datos para dar de alta una serie.
type RegisterSerialInput struct {
	ProductID    string
	WarehouseID  string
	SerialNumber string
	State        string // vacío = in_stock
	PurchaseID   string
	UserID       string
	Scope        inventory.Scope
}

// ChangeStateInput datos para cambiar el estado de una serie.
type ChangeStateInput struct {
	State  string
	SaleID string
	UserID string
	Scope  inventory.Scope
}

// TransferOptions datos opcionales de un traspaso.
type TransferOptions struct {
	Reference entity.Reference
	UserID    string
}

// DeleteOptions datos de eliminación/restauración.
type DeleteOptions struct {
	UserID string
	Scope  inventory.Scope
}

// ReplaceSerialsInput reemplaza la lista completa de series de un producto en una compra.
type ReplaceSerialsInput struct {
	PurchaseID  string
	ProductID   string
	WarehouseID string
	Serials     []string
	UserID      string
}

// ReplaceSerialsResult resume el reemplazo.
type ReplaceSerialsResult struct {
	Added    []string
	Removed  []string
	NetDelta int64
}

// Register da de alta una serie. Con Scope silenciado no mueve stock ni concilia.
func (uc *SerialUseCase) Register(ctx context.Context, in RegisterSerialInput) (*entity.SerialUnit, error) {
	in.SerialNumber = NormalizeSerial(in.SerialNumber)
	if in.State == "" {
		in.State = entity.SerialStateInStock
	}
	if err := validateRegister(in); err != nil {
		return nil, err
	}
	var unit *entity.SerialUnit
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		var err error
		unit, err = uc.registerInTx(ctx, repos, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

func validateRegister(in RegisterSerialInput) error {
	if in.ProductID == "" {
		return domain.ErrMissingProduct
	}
	if in.SerialNumber == "" {
		return fmt.Errorf("%w: número de serie vacío", domain.ErrInvalidInput)
	}
	if !entity.ValidSerialState(in.State) {
		return fmt.Errorf("%w: estado %q", domain.ErrInvalidTransition, in.State)
	}
	if in.State == entity.SerialStateInStock && in.WarehouseID == "" {
		return fmt.Errorf("%w: una serie en stock requiere almacén", domain.ErrInvalidTransition)
	}
	return nil
}

func (uc *SerialUseCase) registerInTx(ctx context.Context, repos Repos, in RegisterSerialInput) (*entity.SerialUnit, error) {
	product, err := uc.loadSerialProduct(ctx, repos, in.ProductID)
	if err != nil {
		return nil, err
	}
	if in.WarehouseID != "" {
		if err := ensureActiveWarehouse(ctx, repos, in.WarehouseID); err != nil {
			return nil, err
		}
	}
	exists, err := repos.Serials.ExistsActive(ctx, in.ProductID, in.SerialNumber, in.PurchaseID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicateSerial(in.SerialNumber)
	}

	now := uc.now()
	unit := &entity.SerialUnit{
		ProductID:    in.ProductID,
		WarehouseID:  in.WarehouseID,
		SerialNumber: in.SerialNumber,
		State:        in.State,
		PurchaseID:   in.PurchaseID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repos.Serials.Create(ctx, unit); err != nil {
		return nil, err
	}
	change := inventory.SerialChange{Event: inventory.SerialCreated, Unit: unit}
	if err := uc.settle(ctx, repos, product, in.Scope, inventory.Transition(in.Scope, change), in.UserID); err != nil {
		return nil, err
	}
	return unit, nil
}

// ChangeState cambia el estado de una serie. Pasar a in_stock requiere que tenga almacén.
func (uc *SerialUseCase) ChangeState(ctx context.Context, unitID string, in ChangeStateInput) (*entity.SerialUnit, error) {
	if unitID == "" {
		return nil, fmt.Errorf("%w: serie requerida", domain.ErrInvalidInput)
	}
	if !entity.ValidSerialState(in.State) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidTransition, in.State)
	}
	var unit *entity.SerialUnit
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		var err error
		unit, err = uc.changeStateInTx(ctx, repos, unitID, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

func (uc *SerialUseCase) changeStateInTx(ctx context.Context, repos Repos, unitID string, in ChangeStateInput) (*entity.SerialUnit, error) {
	unit, err := lockActiveUnit(ctx, repos, unitID)
	if err != nil {
		return nil, err
	}
	if in.State == entity.SerialStateInStock && unit.WarehouseID == "" {
		return nil, fmt.Errorf("%w: la serie %s no tiene almacén", domain.ErrInvalidTransition, unit.SerialNumber)
	}
	product, err := uc.loadSerialProduct(ctx, repos, unit.ProductID)
	if err != nil {
		return nil, err
	}

	prev := *unit
	unit.State = in.State
	if in.SaleID != "" {
		unit.SaleID = in.SaleID
	}
	unit.UpdatedAt = uc.now()
	if err := repos.Serials.Update(ctx, unit); err != nil {
		return nil, err
	}
	change := inventory.SerialChange{Event: inventory.SerialUpdated, Unit: unit, Previous: &prev}
	if err := uc.settle(ctx, repos, product, in.Scope, inventory.Transition(in.Scope, change), in.UserID); err != nil {
		return nil, err
	}
	return unit, nil
}

// Transfer mueve una serie a otro almacén. El cambio de almacén, los dos movimientos
// (salida en origen y entrada en destino) y la conciliación van en una sola transacción.
func (uc *SerialUseCase) Transfer(ctx context.Context, unitID, toWarehouseID string, opts TransferOptions) (*entity.SerialUnit, error) {
	if unitID == "" {
		return nil, fmt.Errorf("%w: serie requerida", domain.ErrInvalidInput)
	}
	if toWarehouseID == "" {
		return nil, domain.ErrMissingWarehouse
	}
	var unit *entity.SerialUnit
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		var err error
		unit, err = lockActiveUnit(ctx, repos, unitID)
		if err != nil {
			return err
		}
		if unit.WarehouseID == toWarehouseID {
			return fmt.Errorf("%w: la serie ya está en el almacén destino", domain.ErrInvalidInput)
		}
		if err := ensureActiveWarehouse(ctx, repos, toWarehouseID); err != nil {
			return err
		}
		product, err := uc.loadSerialProduct(ctx, repos, unit.ProductID)
		if err != nil {
			return err
		}
		if unit.InStock() && unit.WarehouseID != "" {
			if err := lockStockRows(ctx, repos, product.ID, unit.WarehouseID, toWarehouseID); err != nil {
				return err
			}
		}

		prev := *unit
		unit.WarehouseID = toWarehouseID
		unit.UpdatedAt = uc.now()
		if err := repos.Serials.Update(ctx, unit); err != nil {
			return err
		}
		change := inventory.SerialChange{
			Event:       inventory.SerialUpdated,
			Unit:        unit,
			Previous:    &prev,
			TransferRef: opts.Reference,
		}
		scope := inventory.DefaultScope()
		return uc.settle(ctx, repos, product, scope, inventory.Transition(scope, change), opts.UserID)
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

// Delete elimina lógicamente una serie; si estaba en stock descuenta una unidad.
func (uc *SerialUseCase) Delete(ctx context.Context, unitID string, opts DeleteOptions) error {
	if unitID == "" {
		return fmt.Errorf("%w: serie requerida", domain.ErrInvalidInput)
	}
	return uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		unit, err := repos.Serials.GetForUpdate(ctx, unitID)
		if err != nil {
			return err
		}
		if unit == nil {
			return fmt.Errorf("%w: serie %s", domain.ErrNotFound, unitID)
		}
		if unit.IsDeleted() {
			return nil
		}
		return uc.deleteInTx(ctx, repos, unit, opts)
	})
}

func (uc *SerialUseCase) deleteInTx(ctx context.Context, repos Repos, unit *entity.SerialUnit, opts DeleteOptions) error {
	product, err := uc.loadSerialProduct(ctx, repos, unit.ProductID)
	if err != nil {
		return err
	}
	if err := repos.Serials.SoftDelete(ctx, unit.ID); err != nil {
		return err
	}
	now := uc.now()
	unit.DeletedAt = &now
	change := inventory.SerialChange{Event: inventory.SerialDeleted, Unit: unit}
	return uc.settle(ctx, repos, product, opts.Scope, inventory.Transition(opts.Scope, change), opts.UserID)
}

// Restore revierte la eliminación lógica; si la serie estaba en stock vuelve a sumar.
func (uc *SerialUseCase) Restore(ctx context.Context, unitID string, opts DeleteOptions) (*entity.SerialUnit, error) {
	if unitID == "" {
		return nil, fmt.Errorf("%w: serie requerida", domain.ErrInvalidInput)
	}
	var unit *entity.SerialUnit
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		var err error
		unit, err = repos.Serials.GetForUpdate(ctx, unitID)
		if err != nil {
			return err
		}
		if unit == nil {
			return fmt.Errorf("%w: serie %s", domain.ErrNotFound, unitID)
		}
		if !unit.IsDeleted() {
			return nil
		}
		exists, err := repos.Serials.ExistsActive(ctx, unit.ProductID, unit.SerialNumber, "")
		if err != nil {
			return err
		}
		if exists {
			return duplicateSerial(unit.SerialNumber)
		}
		product, err := uc.loadSerialProduct(ctx, repos, unit.ProductID)
		if err != nil {
			return err
		}
		if err := repos.Serials.Restore(ctx, unit.ID); err != nil {
			return err
		}
		unit.DeletedAt = nil
		change := inventory.SerialChange{Event: inventory.SerialRestored, Unit: unit}
		return uc.settle(ctx, repos, product, opts.Scope, inventory.Transition(opts.Scope, change), opts.UserID)
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

// ReplaceForPurchase reemplaza las series de un producto en una compra. Las altas y bajas
// se hacen con alcance silenciado; después se aplica una sola entrada o salida por el
// delta neto y se concilia, todo en la misma transacción.
func (uc *SerialUseCase) ReplaceForPurchase(ctx context.Context, in ReplaceSerialsInput) (ReplaceSerialsResult, error) {
	if in.PurchaseID == "" {
		return ReplaceSerialsResult{}, fmt.Errorf("%w: compra requerida", domain.ErrInvalidInput)
	}
	if in.ProductID == "" {
		return ReplaceSerialsResult{}, domain.ErrMissingProduct
	}
	if in.WarehouseID == "" {
		return ReplaceSerialsResult{}, domain.ErrMissingWarehouse
	}
	wanted, err := normalizeSerialList(in.Serials, true)
	if err != nil {
		return ReplaceSerialsResult{}, err
	}
	seen := make(map[string]struct{}, len(wanted))
	for _, s := range wanted {
		seen[s] = struct{}{}
	}

	var res ReplaceSerialsResult
	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		product, err := uc.loadSerialProduct(ctx, repos, in.ProductID)
		if err != nil {
			return err
		}
		current, err := repos.Serials.ListByPurchase(ctx, in.PurchaseID, in.ProductID)
		if err != nil {
			return err
		}
		have := make(map[string]*entity.SerialUnit, len(current))
		for _, u := range current {
			have[u.SerialNumber] = u
		}

		muted := DeleteOptions{UserID: in.UserID, Scope: inventory.MutedScope()}
		for _, u := range current {
			if _, keep := seen[u.SerialNumber]; keep {
				continue
			}
			if !u.InStock() {
				return fmt.Errorf("%w: %s", domain.ErrSoldSerials, u.SerialNumber)
			}
			if err := uc.deleteInTx(ctx, repos, u, muted); err != nil {
				return err
			}
			res.Removed = append(res.Removed, u.SerialNumber)
		}
		for _, s := range wanted {
			if _, ok := have[s]; ok {
				continue
			}
			_, err := uc.registerInTx(ctx, repos, RegisterSerialInput{
				ProductID:    in.ProductID,
				WarehouseID:  in.WarehouseID,
				SerialNumber: s,
				State:        entity.SerialStateInStock,
				PurchaseID:   in.PurchaseID,
				UserID:       in.UserID,
				Scope:        inventory.MutedScope(),
			})
			if err != nil {
				return err
			}
			res.Added = append(res.Added, s)
		}

		res.NetDelta = int64(len(res.Added) - len(res.Removed))
		if res.NetDelta != 0 {
			op, reason, qty := inventory.OpIncrement, reasonPurchaseEditIncrease, res.NetDelta
			if res.NetDelta < 0 {
				op, reason, qty = inventory.OpDecrement, reasonPurchaseEditDecrease, -res.NetDelta
			}
			_, err := uc.movements.applyDelta(ctx, repos, op, product, qty, MovementContext{
				WarehouseID: in.WarehouseID,
				Reason:      reason,
				Reference:   entity.PurchaseRef{ID: in.PurchaseID},
				Details: map[string]any{
					"series_agregadas":  res.Added,
					"series_eliminadas": res.Removed,
				},
				UserID: in.UserID,
			})
			if err != nil {
				return err
			}
		}
		_, err = uc.reconciler.reconcileInTx(ctx, repos, product)
		return err
	})
	if err != nil {
		return ReplaceSerialsResult{}, err
	}
	return res, nil
}

// settle aplica los comandos de ledger de una mutación y concilia el producto.
// Sin comandos o con alcance silenciado no hace nada.
func (uc *SerialUseCase) settle(ctx context.Context, repos Repos, product *entity.Product, scope inventory.Scope, cmds []inventory.LedgerCommand, userID string) error {
	if scope.Muted() || len(cmds) == 0 {
		return nil
	}
	for _, cmd := range cmds {
		if _, err := uc.movements.applyCommand(ctx, repos, product, cmd, userID); err != nil {
			return err
		}
	}
	_, err := uc.reconciler.reconcileInTx(ctx, repos, product)
	return err
}

// normalizeSerialList normaliza una lista de series y rechaza repetidas. Las entradas vacías
// se omiten con skipEmpty; si no, son domain.ErrInvalidInput.
func normalizeSerialList(serials []string, skipEmpty bool) ([]string, error) {
	out := make([]string, 0, len(serials))
	seen := make(map[string]struct{}, len(serials))
	for i, s := range serials {
		s = NormalizeSerial(s)
		if s == "" {
			if skipEmpty {
				continue
			}
			return nil, fmt.Errorf("%w: la serie %d está vacía", domain.ErrInvalidInput, i+1)
		}
		if _, dup := seen[s]; dup {
			return nil, fmt.Errorf("%w: la serie '%s' está repetida en la lista", domain.ErrDuplicateSerial, s)
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

func (uc *SerialUseCase) loadSerialProduct(ctx context.Context, repos Repos, productID string) (*entity.Product, error) {
	product, err := repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	if !product.RequiresSerial {
		return nil, fmt.Errorf("%w: el producto %s no maneja series", domain.ErrInvalidInput, product.SKU)
	}
	return product, nil
}

// lockStockRows bloquea las filas de stock de los almacenes en orden de ID, el mismo orden
// de ListByProductForUpdate, para que traspasos cruzados no se bloqueen entre sí.
func lockStockRows(ctx context.Context, repos Repos, productID string, warehouseIDs ...string) error {
	ids := slices.Clone(warehouseIDs)
	slices.Sort(ids)
	for _, id := range slices.Compact(ids) {
		if _, err := repos.Stock.LockOrCreate(ctx, productID, id); err != nil {
			return err
		}
	}
	return nil
}

func lockActiveUnit(ctx context.Context, repos Repos, unitID string) (*entity.SerialUnit, error) {
	unit, err := repos.Serials.GetForUpdate(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if unit == nil || unit.IsDeleted() {
		return nil, fmt.Errorf("%w: serie %s", domain.ErrNotFound, unitID)
	}
	return unit, nil
}

func ensureActiveWarehouse(ctx context.Context, repos Repos, warehouseID string) error {
	wh, err := repos.Warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if wh == nil || !wh.IsActive() {
		return fmt.Errorf("%w: %s", domain.ErrInactiveWarehouse, warehouseID)
	}
	return nil
}

func duplicateSerial(serial string) error {
	return fmt.Errorf("%w: la serie '%s' ya existe para este producto en otra compra", domain.ErrDuplicateSerial, serial)
}
