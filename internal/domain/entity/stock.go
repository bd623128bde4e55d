package entity

import "time"

// Stock representa el stock agregado de un producto en un almacén (una fila por producto+almacén).
// Para productos con serie debe coincidir con el conteo de series in_stock; la conciliación lo repara.
// Puede quedar negativo transitoriamente por correcciones; nunca se elimina.
type Stock struct {
	ProductID   string
	WarehouseID string
	Quantity    int64
	MinStock    int64
	UpdatedAt   time.Time
}
