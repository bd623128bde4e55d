package dto

// SellSerialRequest body para POST /api/sales/:id/serials.
type SellSerialRequest struct {
	SerialID string `json:"serial_id" validate:"required"`
}

// SaleLineDTO línea de venta sin serie.
type SaleLineDTO struct {
	ProductID   string `json:"product_id" validate:"required"`
	WarehouseID string `json:"warehouse_id" validate:"required"`
	Quantity    int64  `json:"quantity" validate:"gt=0"`
	LotNumber   string `json:"lot_number,omitempty"`
}

// CancelSaleRequest body para POST /api/sales/:id/cancel.
type CancelSaleRequest struct {
	Lines []SaleLineDTO `json:"lines" validate:"dive"`
}
