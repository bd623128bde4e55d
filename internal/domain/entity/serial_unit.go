package entity

import "time"

// Estados del ciclo de vida de una serie.
const (
	SerialStateInStock  = "in_stock"
	SerialStateSold     = "sold"
	SerialStateReserved = "reserved"
	SerialStateDamaged  = "damaged"
	SerialStateReturned = "returned"
)

// SerialUnit representa una unidad física individual de un producto con número de serie.
// Solo las unidades en estado in_stock y no eliminadas cuentan para el stock del almacén.
type SerialUnit struct {
	ID           string
	ProductID    string
	WarehouseID  string // vacío = sin almacén asignado
	SerialNumber string // único por producto entre filas no eliminadas
	State        string
	PurchaseID   string // compra que originó la serie (opcional)
	SaleID       string // venta que consumió la serie (opcional)
	DeletedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// InStock indica si la unidad cuenta para el stock agregado.
func (u *SerialUnit) InStock() bool {
	return u.State == SerialStateInStock && u.DeletedAt == nil
}

// IsDeleted indica si la unidad fue eliminada lógicamente.
func (u *SerialUnit) IsDeleted() bool {
	return u.DeletedAt != nil
}

// ValidSerialState valida que el estado sea uno de los conocidos.
func ValidSerialState(state string) bool {
	switch state {
	case SerialStateInStock, SerialStateSold, SerialStateReserved, SerialStateDamaged, SerialStateReturned:
		return true
	}
	return false
}
