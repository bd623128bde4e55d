package repository

import (
	"context"

	"github.com/jhoicas/inventario-series/internal/domain/entity"
)

// WarehouseRepository define el puerto de lectura de almacenes.
type WarehouseRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
}
