package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-series/internal/domain/entity"
	"github.com/jhoicas/inventario-series/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `
		SELECT id, company_id, sku, name, kind, requires_serial, tracks_lots, stock, cost, created_at, updated_at
		FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Kind, &p.RequiresSerial, &p.TracksLots,
		&p.Stock, &p.Cost, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// UpdateStock fija el stock resumen del producto.
func (r *ProductRepo) UpdateStock(ctx context.Context, productID string, stock int64) error {
	_, err := r.q.Exec(ctx, `UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`, productID, stock)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	return nil
}

// UpdateCost actualiza el costo promedio ponderado del producto.
func (r *ProductRepo) UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error {
	_, err := r.q.Exec(ctx, `UPDATE products SET cost = $2, updated_at = now() WHERE id = $1`, productID, cost)
	if err != nil {
		return fmt.Errorf("update product cost: %w", err)
	}
	return nil
}

// ListSerializedIDs devuelve los IDs de productos que requieren serie.
func (r *ProductRepo) ListSerializedIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM products WHERE requires_serial ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list serialized products: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan serialized products: %w", err)
	}
	return ids, nil
}

// ListKitComponents devuelve las líneas del kit.
func (r *ProductRepo) ListKitComponents(ctx context.Context, kitID string) ([]entity.KitComponent, error) {
	query := `
		SELECT kit_id, component_id, quantity
		FROM kit_components WHERE kit_id = $1 ORDER BY component_id`
	rows, err := r.q.Query(ctx, query, kitID)
	if err != nil {
		return nil, fmt.Errorf("list kit components: %w", err)
	}
	defer rows.Close()
	var list []entity.KitComponent
	for rows.Next() {
		var c entity.KitComponent
		if err := rows.Scan(&c.KitID, &c.ComponentID, &c.Quantity); err != nil {
			return nil, fmt.Errorf("scan kit component: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// FindSummaryDiscrepancies lista productos cuyo stock resumen difiere de la suma de sus filas por almacén.
func (r *ProductRepo) FindSummaryDiscrepancies(ctx context.Context) ([]repository.SummaryDiscrepancy, error) {
	query := `
		SELECT p.id, p.sku, p.name, p.stock, COALESCE(SUM(s.quantity), 0)::bigint AS rows_total
		FROM products p
		LEFT JOIN stock s ON s.product_id = p.id
		WHERE p.kind <> 'kit'
		GROUP BY p.id, p.sku, p.name, p.stock
		HAVING p.stock <> COALESCE(SUM(s.quantity), 0)
		ORDER BY p.sku`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find summary discrepancies: %w", err)
	}
	defer rows.Close()
	var list []repository.SummaryDiscrepancy
	for rows.Next() {
		var d repository.SummaryDiscrepancy
		if err := rows.Scan(&d.ProductID, &d.SKU, &d.Name, &d.Summary, &d.RowsTotal); err != nil {
			return nil, fmt.Errorf("scan summary discrepancy: %w", err)
		}
		d.Difference = d.Summary - d.RowsTotal
		list = append(list, d)
	}
	return list, rows.Err()
}
