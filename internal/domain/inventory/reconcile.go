package inventory

import (
	"sort"

	"github.com/jhoicas/inventario-series/internal/domain/entity"
)

// Repair es una corrección aplicada a una fila de stock agregado.
type Repair struct {
	WarehouseID string
	Before      int64
	After       int64
	Created     bool // la fila no existía
}

// ReconciliationPlan es el resultado de comparar las filas de stock con el conteo real de series.
type ReconciliationPlan struct {
	ProductID string
	Repairs   []Repair
	// Rows son las filas finales (existentes corregidas y nuevas), en el orden de entrada
	// seguido de las creadas ordenadas por almacén.
	Rows  []*entity.Stock
	Total int64
}

// HasRepairs indica si hubo que corregir o crear alguna fila.
func (p ReconciliationPlan) HasRepairs() bool { return len(p.Repairs) > 0 }

// PlanReconciliation calcula las correcciones necesarias para que cada fila de stock del producto
// sea igual al número de series in_stock no eliminadas en su almacén.
// Las filas existentes sin series quedan en 0; los almacenes con series y sin fila generan una fila nueva
// con stock mínimo 0. No modifica rows: devuelve copias.
func PlanReconciliation(productID string, trueCounts map[string]int64, rows []*entity.Stock) ReconciliationPlan {
	plan := ReconciliationPlan{ProductID: productID}
	seen := make(map[string]struct{}, len(rows))

	for _, r := range rows {
		seen[r.WarehouseID] = struct{}{}
		want := trueCounts[r.WarehouseID]
		row := *r
		if row.Quantity != want {
			plan.Repairs = append(plan.Repairs, Repair{WarehouseID: r.WarehouseID, Before: r.Quantity, After: want})
			row.Quantity = want
		}
		plan.Rows = append(plan.Rows, &row)
		plan.Total += want
	}

	missing := make([]string, 0)
	for wh, n := range trueCounts {
		if _, ok := seen[wh]; ok || wh == "" {
			continue
		}
		if n == 0 {
			continue
		}
		missing = append(missing, wh)
	}
	sort.Strings(missing)
	for _, wh := range missing {
		n := trueCounts[wh]
		plan.Repairs = append(plan.Repairs, Repair{WarehouseID: wh, Before: 0, After: n, Created: true})
		plan.Rows = append(plan.Rows, &entity.Stock{ProductID: productID, WarehouseID: wh, Quantity: n})
		plan.Total += n
	}
	return plan
}
