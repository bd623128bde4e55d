package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de producto.
const (
	ProductKindSimple = "simple"
	ProductKindKit    = "kit"
)

// Product representa un producto o SKU del inventario (multi-almacén).
// Stock es el resumen a nivel producto: suma de sus filas de Stock por almacén.
// Cost es promedio ponderado calculado desde las entradas con costo unitario.
type Product struct {
	ID             string
	CompanyID      string
	SKU            string
	Name           string
	Kind           string // simple, kit
	RequiresSerial bool   // el stock se deriva de las series in_stock
	TracksLots     bool   // maneja lotes con caducidad
	Stock          int64
	Cost           decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsKit indica si el producto es un kit sin inventario físico propio.
func (p *Product) IsKit() bool {
	return p.Kind == ProductKindKit
}

// KitComponent es una línea de un kit: cuántas unidades del componente consume una unidad del kit.
type KitComponent struct {
	KitID       string
	ComponentID string
	Quantity    int64
}
