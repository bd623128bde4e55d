package repository

import (
	"context"

	"github.com/jhoicas/inventario-series/internal/domain/entity"
)

// SerialUnitRepository define el puerto de persistencia para unidades con número de serie.
type SerialUnitRepository interface {
	// Create inserta la unidad; una serie repetida para el producto devuelve domain.ErrDuplicateSerial.
	Create(ctx context.Context, unit *entity.SerialUnit) error
	// GetByID incluye unidades eliminadas. Devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.SerialUnit, error)
	GetForUpdate(ctx context.Context, id string) (*entity.SerialUnit, error)
	Update(ctx context.Context, unit *entity.SerialUnit) error
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	// ExistsActive indica si hay una unidad no eliminada con esa serie, ignorando las de excludePurchaseID.
	ExistsActive(ctx context.Context, productID, serialNumber, excludePurchaseID string) (bool, error)
	ListByPurchase(ctx context.Context, purchaseID, productID string) ([]*entity.SerialUnit, error)
	ListBySale(ctx context.Context, saleID string) ([]*entity.SerialUnit, error)
	// CountInStockByWarehouse cuenta las unidades in_stock no eliminadas del producto por almacén.
	CountInStockByWarehouse(ctx context.Context, productID string) (map[string]int64, error)
}
