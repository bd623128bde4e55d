package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementRequest body para POST /api/inventory/entradas y /api/inventory/salidas.
// Los campos opcionales se traducen al mapa de contexto de movimiento.
type MovementRequest struct {
	ProductID     string           `json:"product_id" validate:"required"`
	WarehouseID   string           `json:"warehouse_id" validate:"required"`
	Quantity      int64            `json:"quantity" validate:"gt=0"`
	Reason        string           `json:"reason,omitempty" validate:"max=255"`
	ReferenceType string           `json:"reference_type,omitempty" validate:"omitempty,oneof=purchase sale transfer compra venta traspaso"`
	ReferenceID   string           `json:"reference_id,omitempty" validate:"required_with=ReferenceType"`
	Details       map[string]any   `json:"details,omitempty"`
	LotNumber     string           `json:"lot_number,omitempty"`
	ExpiresAt     string           `json:"expires_at,omitempty"` // YYYY-MM-DD o RFC3339
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
}

// ContextMap arma el mapa de contexto que entiende el registrador de movimientos.
func (r MovementRequest) ContextMap(userID string) map[string]any {
	m := map[string]any{
		"almacen_id": r.WarehouseID,
		"user_id":    userID,
	}
	if r.Reason != "" {
		m["motivo"] = r.Reason
	}
	if r.ReferenceType != "" {
		m["referencia_type"] = r.ReferenceType
		m["referencia_id"] = r.ReferenceID
	}
	if len(r.Details) > 0 {
		m["detalles"] = r.Details
	}
	if r.LotNumber != "" {
		m["numero_lote"] = r.LotNumber
	}
	if r.ExpiresAt != "" {
		m["fecha_caducidad"] = r.ExpiresAt
	}
	if r.UnitCost != nil {
		m["costo_unitario"] = *r.UnitCost
	}
	return m
}

// MovementResponse movimiento de inventario en respuestas.
type MovementResponse struct {
	ID            string         `json:"id"`
	ProductID     string         `json:"product_id"`
	WarehouseID   string         `json:"warehouse_id"`
	LotID         string         `json:"lot_id,omitempty"`
	Type          string         `json:"type"`
	Quantity      int64          `json:"quantity"`
	StockBefore   int64          `json:"stock_before"`
	StockAfter    int64          `json:"stock_after"`
	Reason        string         `json:"reason"`
	ReferenceType string         `json:"reference_type,omitempty"`
	ReferenceID   string         `json:"reference_id,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
	CreatedBy     string         `json:"created_by,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// MovementListQuery filtros de GET /api/inventory/products/:id/movements.
type MovementListQuery struct {
	From   string `query:"from"` // YYYY-MM-DD
	To     string `query:"to"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// Page devuelve la paginación normalizada.
func (q MovementListQuery) Page() PageRequest {
	return PageRequest{Limit: q.Limit, Offset: q.Offset}.Normalize()
}

// RepairDTO fila de stock corregida por la conciliación.
type RepairDTO struct {
	WarehouseID string `json:"warehouse_id"`
	Before      int64  `json:"before"`
	After       int64  `json:"after"`
	Created     bool   `json:"created"`
}

// ReconcileResponse resultado de conciliar un producto.
type ReconcileResponse struct {
	ProductID string      `json:"product_id"`
	Total     int64       `json:"total"`
	Repairs   []RepairDTO `json:"repairs"`
}

// SweepRequest body de POST /api/inventory/reconcile.
type SweepRequest struct {
	ProductID string `json:"product_id,omitempty"`
	Fix       bool   `json:"fix"`
}

// SweepProductDTO resultado por producto de un barrido.
type SweepProductDTO struct {
	ProductID string      `json:"product_id"`
	Repairs   []RepairDTO `json:"repairs,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// SummaryDiscrepancyDTO producto con stock resumen descuadrado.
type SummaryDiscrepancyDTO struct {
	ProductID  string `json:"product_id"`
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	Summary    int64  `json:"summary"`
	RowsTotal  int64  `json:"rows_total"`
	Difference int64  `json:"difference"`
}

// SweepResponse resumen de un barrido de conciliación.
type SweepResponse struct {
	StartedAt     time.Time               `json:"started_at"`
	FinishedAt    time.Time               `json:"finished_at"`
	RepairCount   int                     `json:"repair_count"`
	Products      []SweepProductDTO       `json:"products"`
	Discrepancies []SummaryDiscrepancyDTO `json:"discrepancies"`
	Fixed         bool                    `json:"fixed"`
}
