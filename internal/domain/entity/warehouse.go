package entity

import "time"

// Estados de almacén.
const (
	WarehouseStatusActive   = "active"
	WarehouseStatusInactive = "inactive"
)

// Warehouse representa un almacén o sucursal donde se guarda inventario (multi-almacén).
type Warehouse struct {
	ID        string
	CompanyID string
	Name      string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive indica si el almacén admite movimientos.
func (w *Warehouse) IsActive() bool {
	return w.Status == WarehouseStatusActive
}
