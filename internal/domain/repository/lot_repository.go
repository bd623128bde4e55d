package repository

import (
	"context"

	"github.com/jhoicas/inventario-series/internal/domain/entity"
)

// LotRepository define el puerto de persistencia para lotes con caducidad.
type LotRepository interface {
	// LockByNumber bloquea el lote por número; nil, nil si no existe.
	LockByNumber(ctx context.Context, productID, warehouseID, number string) (*entity.Lot, error)
	Create(ctx context.Context, lot *entity.Lot) error
	Update(ctx context.Context, lot *entity.Lot) error
	// ListAvailableForUpdate devuelve los lotes con cantidad > 0 ordenados por caducidad (FIFO), bloqueados.
	ListAvailableForUpdate(ctx context.Context, productID, warehouseID string) ([]*entity.Lot, error)
}
