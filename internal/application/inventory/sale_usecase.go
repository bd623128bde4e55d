package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-series/internal/domain"
	"github.com/jhoicas/inventario-series/internal/domain/entity"
	"github.com/jhoicas/inventario-series/internal/domain/inventory"
	"github.com/jhoicas/inventario-series/pkg/logger"
)

const (
	reasonSale       = "Venta"
	reasonSaleCancel = "Cancelación de venta"
)

// SaleUseCase aplica al inventario las ventas y sus cancelaciones.
type SaleUseCase struct {
	txRunner  TxRunner
	movements *MovementUseCase
	serials   *SerialUseCase
	log       *logger.Logger
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(txRunner TxRunner, movements *MovementUseCase, serials *SerialUseCase, log *logger.Logger) *SaleUseCase {
	return &SaleUseCase{txRunner: txRunner, movements: movements, serials: serials, log: log}
}

// SaleLine línea sin serie de una venta.
type SaleLine struct {
	ProductID   string
	WarehouseID string
	Quantity    int64
	LotNumber   string // reingreso de productos con lote
}

// CancelSaleInput cancelación de una venta: las series vuelven a stock y las líneas sin serie reingresan.
type CancelSaleInput struct {
	SaleID string
	Lines  []SaleLine
	UserID string
}

// SellSerial marca una serie en stock como vendida en la venta dada.
func (uc *SaleUseCase) SellSerial(ctx context.Context, saleID, unitID, userID string) (*entity.SerialUnit, error) {
	if saleID == "" {
		return nil, fmt.Errorf("%w: venta requerida", domain.ErrInvalidInput)
	}
	if unitID == "" {
		return nil, fmt.Errorf("%w: serie requerida", domain.ErrInvalidInput)
	}
	var unit *entity.SerialUnit
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		current, err := lockActiveUnit(ctx, repos, unitID)
		if err != nil {
			return err
		}
		if current.State != entity.SerialStateInStock {
			return fmt.Errorf("%w: la serie %s no está en stock (%s)", domain.ErrInvalidTransition, current.SerialNumber, current.State)
		}
		unit, err = uc.serials.changeStateInTx(ctx, repos, unitID, ChangeStateInput{
			State:  entity.SerialStateSold,
			SaleID: saleID,
			UserID: userID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

// SellQuantity registra la salida de una línea sin serie.
func (uc *SaleUseCase) SellQuantity(ctx context.Context, saleID string, line SaleLine, userID string) ([]*entity.InventoryMovement, error) {
	if saleID == "" {
		return nil, fmt.Errorf("%w: venta requerida", domain.ErrInvalidInput)
	}
	mc := MovementContext{
		WarehouseID: line.WarehouseID,
		Reason:      reasonSale,
		Reference:   entity.SaleRef{ID: saleID},
		UserID:      userID,
	}
	if err := uc.movements.validate(ctx, line.ProductID, line.Quantity, mc); err != nil {
		return nil, err
	}
	var out []*entity.InventoryMovement
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		product, err := repos.Products.GetByID(ctx, line.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, line.ProductID)
		}
		if product.RequiresSerial {
			return fmt.Errorf("%w: el producto %s se vende por serie", domain.ErrInvalidInput, product.SKU)
		}
		out, err = uc.movements.applyProduct(ctx, repos, inventory.OpDecrement, product, line.Quantity, mc, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CancelSale devuelve a stock las series vendidas en la venta y reingresa las líneas sin serie.
func (uc *SaleUseCase) CancelSale(ctx context.Context, in CancelSaleInput) error {
	if in.SaleID == "" {
		return fmt.Errorf("%w: venta requerida", domain.ErrInvalidInput)
	}
	ref := entity.SaleRef{ID: in.SaleID}
	return uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		units, err := repos.Serials.ListBySale(ctx, in.SaleID)
		if err != nil {
			return err
		}
		for _, u := range units {
			if u.State != entity.SerialStateSold || u.IsDeleted() {
				continue
			}
			if u.WarehouseID == "" {
				uc.log.Warn().Str("serie_id", u.ID).Str("sale_id", in.SaleID).Msg("serie vendida sin almacén; no vuelve a stock")
				continue
			}
			product, err := uc.serials.loadSerialProduct(ctx, repos, u.ProductID)
			if err != nil {
				return err
			}
			prev := *u
			u.State = entity.SerialStateInStock
			// Los comandos se calculan con la venta aún ligada para registrar el motivo de devolución.
			cmds := inventory.Transition(inventory.DefaultScope(), inventory.SerialChange{
				Event:    inventory.SerialUpdated,
				Unit:     u,
				Previous: &prev,
			})
			u.SaleID = ""
			u.UpdatedAt = uc.serials.now()
			if err := repos.Serials.Update(ctx, u); err != nil {
				return err
			}
			if err := uc.serials.settle(ctx, repos, product, inventory.DefaultScope(), cmds, in.UserID); err != nil {
				return err
			}
		}

		for _, line := range in.Lines {
			mc := MovementContext{
				WarehouseID: line.WarehouseID,
				Reason:      reasonSaleCancel,
				Reference:   ref,
				UserID:      in.UserID,
				LotNumber:   line.LotNumber,
			}
			if err := uc.movements.validate(ctx, line.ProductID, line.Quantity, mc); err != nil {
				return err
			}
			if _, err := uc.movements.applyInTx(ctx, repos, inventory.OpIncrement, line.ProductID, line.Quantity, mc); err != nil {
				return err
			}
		}
		return nil
	})
}
