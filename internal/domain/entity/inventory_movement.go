package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeEntrada = "entrada"
	MovementTypeSalida  = "salida"
)

// InventoryMovement registra un cambio en el stock agregado de un producto en un almacén.
// Es de solo inserción: nunca se modifica ni se elimina. Quantity es siempre la magnitud (> 0);
// el signo lo da Type.
type InventoryMovement struct {
	ID          string
	ProductID   string
	WarehouseID string
	LotID       string // vacío si el producto no maneja lotes
	Type        string // entrada, salida
	Quantity    int64
	StockBefore int64
	StockAfter  int64
	Reason      string
	Reference   Reference // nil = sin documento
	Details     map[string]any
	CreatedBy   string
	CreatedAt   time.Time
}

// Delta devuelve la cantidad con signo aplicada al stock.
func (m *InventoryMovement) Delta() int64 {
	if m.Type == MovementTypeSalida {
		return -m.Quantity
	}
	return m.Quantity
}
