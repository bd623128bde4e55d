package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-series/internal/domain/entity"
)

// SummaryDiscrepancy es un producto cuyo stock resumen no coincide con la suma de sus filas por almacén.
type SummaryDiscrepancy struct {
	ProductID  string
	SKU        string
	Name       string
	Summary    int64
	RowsTotal  int64
	Difference int64
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	UpdateStock(ctx context.Context, productID string, stock int64) error
	UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error
	// ListSerializedIDs devuelve los productos con RequiresSerial, ordenados por id.
	ListSerializedIDs(ctx context.Context) ([]string, error)
	ListKitComponents(ctx context.Context, kitID string) ([]entity.KitComponent, error)
	FindSummaryDiscrepancies(ctx context.Context) ([]SummaryDiscrepancy, error)
}
