package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-series/internal/domain"
	"github.com/jhoicas/inventario-series/internal/domain/entity"
	"github.com/jhoicas/inventario-series/internal/domain/inventory"
	"github.com/jhoicas/inventario-series/pkg/logger"
)

const (
	reasonPurchaseReceipt   = "Nueva compra"
	reasonPurchaseCancel    = "Cancelación de compra"
	reasonPurchaseShortfall = "Cancelación de compra - Ajuste por series faltantes/vendidas"
)

// PurchaseUseCase aplica al inventario la recepción, edición y cancelación de líneas de compra.
type PurchaseUseCase struct {
	txRunner   TxRunner
	movements  *MovementUseCase
	serials    *SerialUseCase
	reconciler *ReconcileUseCase
	log        *logger.Logger
}

// NewPurchaseUseCase construye el caso de uso.
func NewPurchaseUseCase(txRunner TxRunner, movements *MovementUseCase, serials *SerialUseCase, reconciler *ReconcileUseCase, log *logger.Logger) *PurchaseUseCase {
	return &PurchaseUseCase{
		txRunner:   txRunner,
		movements:  movements,
		serials:    serials,
		reconciler: reconciler,
		log:        log,
	}
}

// ReceiveLineInput una línea de compra recibida.
type ReceiveLineInput struct {
	PurchaseID  string
	ProductID   string
	WarehouseID string
	Quantity    int64
	Serials     []string // obligatorio si el producto maneja series; len == Quantity
	LotNumber   string
	ExpiresAt   *time.Time
	UnitCost    *decimal.Decimal
	UserID      string
}

// EditLineInput cambio de cantidad de una línea de compra sin series.
type EditLineInput struct {
	PurchaseID  string
	ProductID   string
	WarehouseID string
	OldQuantity int64
	NewQuantity int64
	LotNumber   string
	UserID      string
}

// PurchaseLine línea de una compra a cancelar.
type PurchaseLine struct {
	ProductID   string
	WarehouseID string
	Quantity    int64
}

// CancelPurchaseInput cancelación de una compra completa.
type CancelPurchaseInput struct {
	PurchaseID string
	Lines      []PurchaseLine
	UserID     string
}

// ReceiveLine registra la entrada de una línea de compra. Con series, cada serie se da de alta
// ligada a la compra y genera una entrada de una unidad.
func (uc *PurchaseUseCase) ReceiveLine(ctx context.Context, in ReceiveLineInput) ([]*entity.InventoryMovement, error) {
	if in.PurchaseID == "" {
		return nil, fmt.Errorf("%w: compra requerida", domain.ErrInvalidInput)
	}
	if in.ProductID == "" {
		return nil, domain.ErrMissingProduct
	}
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.WarehouseID == "" {
		return nil, domain.ErrMissingWarehouse
	}
	serials, err := normalizeSerialList(in.Serials, false)
	if err != nil {
		return nil, err
	}

	var out []*entity.InventoryMovement
	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		product, err := repos.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
		}
		base := MovementContext{
			WarehouseID: in.WarehouseID,
			Reason:      reasonPurchaseReceipt,
			Reference:   entity.PurchaseRef{ID: in.PurchaseID},
			UserID:      in.UserID,
			LotNumber:   in.LotNumber,
			ExpiresAt:   in.ExpiresAt,
			UnitCost:    in.UnitCost,
		}

		if !product.RequiresSerial {
			out, err = uc.movements.applyProduct(ctx, repos, inventory.OpIncrement, product, in.Quantity, base, 0)
			return err
		}

		if int64(len(serials)) != in.Quantity {
			return fmt.Errorf("%w: %d series para %d unidades", domain.ErrSerialCountMismatch, len(serials), in.Quantity)
		}
		for _, s := range serials {
			unit, err := uc.serials.registerInTx(ctx, repos, RegisterSerialInput{
				ProductID:    in.ProductID,
				WarehouseID:  in.WarehouseID,
				SerialNumber: s,
				State:        entity.SerialStateInStock,
				PurchaseID:   in.PurchaseID,
				UserID:       in.UserID,
			})
			if err != nil {
				return err
			}
			mc := base
			mc.Details = map[string]any{"numero_serie": unit.SerialNumber, "serie_id": unit.ID}
			mov, err := uc.movements.applyDelta(ctx, repos, inventory.OpIncrement, product, 1, mc)
			if err != nil {
				return err
			}
			out = append(out, mov)
		}
		_, err = uc.reconciler.reconcileInTx(ctx, repos, product)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EditLineQuantity aplica el delta neto de una edición de cantidad. Los productos con serie
// se editan con SerialUseCase.ReplaceForPurchase.
func (uc *PurchaseUseCase) EditLineQuantity(ctx context.Context, in EditLineInput) ([]*entity.InventoryMovement, error) {
	if in.PurchaseID == "" {
		return nil, fmt.Errorf("%w: compra requerida", domain.ErrInvalidInput)
	}
	if in.ProductID == "" {
		return nil, domain.ErrMissingProduct
	}
	if in.WarehouseID == "" {
		return nil, domain.ErrMissingWarehouse
	}
	if in.OldQuantity < 0 || in.NewQuantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	delta := in.NewQuantity - in.OldQuantity
	if delta == 0 {
		return nil, nil
	}

	var out []*entity.InventoryMovement
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		product, err := repos.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
		}
		if product.RequiresSerial {
			return fmt.Errorf("%w: el producto %s maneja series; reemplace la lista de series", domain.ErrInvalidInput, product.SKU)
		}
		op, reason, qty := inventory.OpIncrement, reasonPurchaseEditIncrease, delta
		if delta < 0 {
			op, reason, qty = inventory.OpDecrement, reasonPurchaseEditDecrease, -delta
		}
		out, err = uc.movements.applyProduct(ctx, repos, op, product, qty, MovementContext{
			WarehouseID: in.WarehouseID,
			Reason:      reason,
			Reference:   entity.PurchaseRef{ID: in.PurchaseID},
			Details:     map[string]any{"cantidad_anterior": in.OldQuantity, "cantidad_nueva": in.NewQuantity},
			UserID:      in.UserID,
			LotNumber:   in.LotNumber,
		}, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel revierte una compra. Falla con domain.ErrSoldSerials si alguna de sus series ya no está
// en stock (vendida, reservada, dañada o devuelta). Las series se eliminan (cada una descuenta
// una unidad) y las unidades de las líneas que nunca tuvieron serie se descuentan con una
// salida de ajuste. Varias líneas del mismo producto comparten sus series registradas.
func (uc *PurchaseUseCase) Cancel(ctx context.Context, in CancelPurchaseInput) ([]*entity.InventoryMovement, error) {
	if in.PurchaseID == "" {
		return nil, fmt.Errorf("%w: compra requerida", domain.ErrInvalidInput)
	}
	for _, l := range in.Lines {
		if l.ProductID == "" {
			return nil, domain.ErrMissingProduct
		}
		if l.WarehouseID == "" {
			return nil, domain.ErrMissingWarehouse
		}
		if l.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
	}

	ref := entity.PurchaseRef{ID: in.PurchaseID}
	var out []*entity.InventoryMovement
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		// series registradas por producto que aún no cubren ninguna línea
		registered := make(map[string]int64)
		for _, line := range in.Lines {
			product, err := repos.Products.GetByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: producto %s", domain.ErrNotFound, line.ProductID)
			}
			if !product.RequiresSerial {
				movs, err := uc.movements.applyProduct(ctx, repos, inventory.OpDecrement, product, line.Quantity, MovementContext{
					WarehouseID: line.WarehouseID,
					Reason:      reasonPurchaseCancel,
					Reference:   ref,
					UserID:      in.UserID,
				}, 0)
				if err != nil {
					return err
				}
				out = append(out, movs...)
				continue
			}

			pool, seen := registered[product.ID]
			if !seen {
				n, err := uc.deletePurchaseUnits(ctx, repos, in.PurchaseID, product.ID, in.UserID)
				if err != nil {
					return err
				}
				pool = n
			}
			covered := min(pool, line.Quantity)
			registered[product.ID] = pool - covered
			if shortfall := line.Quantity - covered; shortfall > 0 {
				mov, err := uc.movements.applyDelta(ctx, repos, inventory.OpDecrement, product, shortfall, MovementContext{
					WarehouseID: line.WarehouseID,
					Reason:      reasonPurchaseShortfall,
					Reference:   ref,
					Details:     map[string]any{"cantidad_linea": line.Quantity, "series_registradas": covered},
					UserID:      in.UserID,
				})
				if err != nil {
					return err
				}
				out = append(out, mov)
				if _, err := uc.reconciler.reconcileInTx(ctx, repos, product); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// deletePurchaseUnits elimina las series de la compra para un producto y devuelve cuántas había.
// Ninguna se elimina si alguna ya salió de stock.
func (uc *PurchaseUseCase) deletePurchaseUnits(ctx context.Context, repos Repos, purchaseID, productID, userID string) (int64, error) {
	units, err := repos.Serials.ListByPurchase(ctx, purchaseID, productID)
	if err != nil {
		return 0, err
	}
	for _, u := range units {
		if !u.InStock() || u.SaleID != "" {
			return 0, fmt.Errorf("%w: %s (%s)", domain.ErrSoldSerials, u.SerialNumber, u.State)
		}
	}
	for _, u := range units {
		if err := uc.serials.deleteInTx(ctx, repos, u, DeleteOptions{UserID: userID}); err != nil {
			return 0, err
		}
	}
	return int64(len(units)), nil
}
