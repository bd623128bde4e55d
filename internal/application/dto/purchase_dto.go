package dto

import "github.com/shopspring/decimal"

// ReplaceSerialsRequest body para PUT /api/purchases/:id/serials.
type ReplaceSerialsRequest struct {
	ProductID   string   `json:"product_id" validate:"required"`
	WarehouseID string   `json:"warehouse_id" validate:"required"`
	Serials     []string `json:"serials" validate:"dive,required"`
}

// ReplaceSerialsResponse resumen del reemplazo de series.
type ReplaceSerialsResponse struct {
	Added    []string `json:"added"`
	Removed  []string `json:"removed"`
	NetDelta int64    `json:"net_delta"`
}

// ReceiveLineRequest body para POST /api/purchases/:id/receipts.
type ReceiveLineRequest struct {
	ProductID   string           `json:"product_id" validate:"required"`
	WarehouseID string           `json:"warehouse_id" validate:"required"`
	Quantity    int64            `json:"quantity" validate:"gt=0"`
	Serials     []string         `json:"serials,omitempty" validate:"dive,required"`
	LotNumber   string           `json:"lot_number,omitempty"`
	ExpiresAt   string           `json:"expires_at,omitempty"` // YYYY-MM-DD
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
}

// EditLineRequest body para PATCH /api/purchases/:id/lines.
type EditLineRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	WarehouseID string `json:"warehouse_id" validate:"required"`
	OldQuantity int64  `json:"old_quantity" validate:"gte=0"`
	NewQuantity int64  `json:"new_quantity" validate:"gte=0"`
	LotNumber   string `json:"lot_number,omitempty"`
}

// PurchaseLineDTO línea de compra.
type PurchaseLineDTO struct {
	ProductID   string `json:"product_id" validate:"required"`
	WarehouseID string `json:"warehouse_id" validate:"required"`
	Quantity    int64  `json:"quantity" validate:"gte=0"`
}

// CancelPurchaseRequest body para POST /api/purchases/:id/cancel.
type CancelPurchaseRequest struct {
	Lines []PurchaseLineDTO `json:"lines" validate:"dive"`
}
