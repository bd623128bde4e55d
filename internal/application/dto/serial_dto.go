package dto

import "time"

// RegisterSerialRequest body para POST /api/serials.
type RegisterSerialRequest struct {
	ProductID    string `json:"product_id" validate:"required"`
	WarehouseID  string `json:"warehouse_id,omitempty"`
	SerialNumber string `json:"serial_number" validate:"required,max=120"`
	State        string `json:"state,omitempty" validate:"omitempty,oneof=in_stock sold reserved damaged returned"`
}

// ChangeSerialStateRequest body para PATCH /api/serials/:id/state.
type ChangeSerialStateRequest struct {
	State  string `json:"state" validate:"required,oneof=in_stock sold reserved damaged returned"`
	SaleID string `json:"sale_id,omitempty"`
}

// TransferSerialRequest body para POST /api/serials/:id/transfer.
type TransferSerialRequest struct {
	WarehouseID string `json:"warehouse_id" validate:"required"`
	TransferID  string `json:"transfer_id,omitempty"` // documento de traspaso
}

// SerialResponse unidad con serie en respuestas.
type SerialResponse struct {
	ID           string     `json:"id"`
	ProductID    string     `json:"product_id"`
	WarehouseID  string     `json:"warehouse_id,omitempty"`
	SerialNumber string     `json:"serial_number"`
	State        string     `json:"state"`
	PurchaseID   string     `json:"purchase_id,omitempty"`
	SaleID       string     `json:"sale_id,omitempty"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
