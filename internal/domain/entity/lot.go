package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot representa un lote de un producto con caducidad en un almacén.
type Lot struct {
	ID          string
	ProductID   string
	WarehouseID string
	Number      string
	ExpiresAt   *time.Time
	InitialQty  int64
	CurrentQty  int64
	UnitCost    decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Expired indica si el lote ya venció en el instante dado.
func (l *Lot) Expired(at time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(at)
}
