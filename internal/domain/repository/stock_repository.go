package repository

import (
	"context"

	"github.com/jhoicas/inventario-series/internal/domain/entity"
)

// StockRepository define el puerto para el stock agregado por producto+almacén.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	// LockOrCreate crea la fila con cantidad 0 si no existe y la bloquea (SELECT FOR UPDATE).
	LockOrCreate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	Upsert(ctx context.Context, stock *entity.Stock) error
	// ListByProductForUpdate bloquea todas las filas del producto.
	ListByProductForUpdate(ctx context.Context, productID string) ([]*entity.Stock, error)
	SumByProduct(ctx context.Context, productID string) (int64, error)
}
