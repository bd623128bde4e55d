package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-series/internal/domain"
	"github.com/jhoicas/inventario-series/internal/domain/entity"
	"github.com/jhoicas/inventario-series/internal/domain/repository"
)

var _ repository.SerialUnitRepository = (*SerialUnitRepo)(nil)

const serialColumns = `id, product_id, warehouse_id, serial_number, state, purchase_id, sale_id,
	deleted_at, created_at, updated_at`

// SerialUnitRepo implementación de SerialUnitRepository sobre PostgreSQL.
// La unicidad (product_id, serial_number) entre filas no eliminadas la garantiza un índice parcial.
type SerialUnitRepo struct {
	q Querier
}

// NewSerialUnitRepository construye el adaptador de series. Pasar pool o tx (Querier).
func NewSerialUnitRepository(q Querier) *SerialUnitRepo {
	return &SerialUnitRepo{q: q}
}

// Create inserta la unidad.
func (r *SerialUnitRepo) Create(ctx context.Context, unit *entity.SerialUnit) error {
	if unit.ID == "" {
		unit.ID = uuid.New().String()
	}
	query := `INSERT INTO serial_units (` + serialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		unit.ID, unit.ProductID, nullable(unit.WarehouseID), unit.SerialNumber, unit.State,
		nullable(unit.PurchaseID), nullable(unit.SaleID), unit.DeletedAt, unit.CreatedAt, unit.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: '%s'", domain.ErrDuplicateSerial, unit.SerialNumber)
		}
		return fmt.Errorf("insert serial unit: %w", err)
	}
	return nil
}

// GetByID obtiene la unidad, incluida si está eliminada.
func (r *SerialUnitRepo) GetByID(ctx context.Context, id string) (*entity.SerialUnit, error) {
	return r.get(ctx, `SELECT `+serialColumns+` FROM serial_units WHERE id = $1`, id)
}

// GetForUpdate obtiene la unidad y bloquea la fila.
func (r *SerialUnitRepo) GetForUpdate(ctx context.Context, id string) (*entity.SerialUnit, error) {
	return r.get(ctx, `SELECT `+serialColumns+` FROM serial_units WHERE id = $1 FOR UPDATE`, id)
}

func (r *SerialUnitRepo) get(ctx context.Context, query, id string) (*entity.SerialUnit, error) {
	u, err := scanSerial(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get serial unit: %w", err)
	}
	return u, nil
}

// Update persiste almacén, estado y documentos de la unidad.
func (r *SerialUnitRepo) Update(ctx context.Context, unit *entity.SerialUnit) error {
	query := `
		UPDATE serial_units
		SET warehouse_id = $2, serial_number = $3, state = $4, purchase_id = $5, sale_id = $6, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		unit.ID, nullable(unit.WarehouseID), unit.SerialNumber, unit.State,
		nullable(unit.PurchaseID), nullable(unit.SaleID),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: '%s'", domain.ErrDuplicateSerial, unit.SerialNumber)
		}
		return fmt.Errorf("update serial unit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete marca la unidad como eliminada.
func (r *SerialUnitRepo) SoftDelete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `UPDATE serial_units SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete serial unit: %w", err)
	}
	return nil
}

// Restore revierte el borrado lógico.
func (r *SerialUnitRepo) Restore(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `UPDATE serial_units SET deleted_at = NULL, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSerial
		}
		return fmt.Errorf("restore serial unit: %w", err)
	}
	return nil
}

// ExistsActive indica si hay otra unidad no eliminada con la misma serie.
func (r *SerialUnitRepo) ExistsActive(ctx context.Context, productID, serialNumber, excludePurchaseID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM serial_units
			WHERE product_id = $1 AND serial_number = $2 AND deleted_at IS NULL
			  AND ($3 = '' OR purchase_id IS DISTINCT FROM $3)
		)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, productID, serialNumber, excludePurchaseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check serial exists: %w", err)
	}
	return exists, nil
}

// ListByPurchase lista las unidades no eliminadas de una compra, opcionalmente de un producto.
func (r *SerialUnitRepo) ListByPurchase(ctx context.Context, purchaseID, productID string) ([]*entity.SerialUnit, error) {
	query := `SELECT ` + serialColumns + ` FROM serial_units
		WHERE purchase_id = $1 AND ($2 = '' OR product_id::text = $2) AND deleted_at IS NULL
		ORDER BY serial_number`
	return r.list(ctx, query, purchaseID, productID)
}

// ListBySale lista las unidades no eliminadas vendidas en una venta.
func (r *SerialUnitRepo) ListBySale(ctx context.Context, saleID string) ([]*entity.SerialUnit, error) {
	query := `SELECT ` + serialColumns + ` FROM serial_units
		WHERE sale_id = $1 AND deleted_at IS NULL ORDER BY serial_number`
	return r.list(ctx, query, saleID)
}

func (r *SerialUnitRepo) list(ctx context.Context, query string, args ...any) ([]*entity.SerialUnit, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list serial units: %w", err)
	}
	defer rows.Close()
	var list []*entity.SerialUnit
	for rows.Next() {
		u, err := scanSerial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan serial unit: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// CountInStockByWarehouse cuenta las unidades in_stock no eliminadas por almacén.
func (r *SerialUnitRepo) CountInStockByWarehouse(ctx context.Context, productID string) (map[string]int64, error) {
	query := `
		SELECT warehouse_id, COUNT(*)
		FROM serial_units
		WHERE product_id = $1 AND state = 'in_stock' AND deleted_at IS NULL AND warehouse_id IS NOT NULL
		GROUP BY warehouse_id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("count serial units: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int64)
	for rows.Next() {
		var warehouseID string
		var n int64
		if err := rows.Scan(&warehouseID, &n); err != nil {
			return nil, fmt.Errorf("scan serial count: %w", err)
		}
		counts[warehouseID] = n
	}
	return counts, rows.Err()
}

func scanSerial(row pgx.Row) (*entity.SerialUnit, error) {
	var u entity.SerialUnit
	var warehouseID, purchaseID, saleID *string
	err := row.Scan(
		&u.ID, &u.ProductID, &warehouseID, &u.SerialNumber, &u.State, &purchaseID, &saleID,
		&u.DeletedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.WarehouseID = deref(warehouseID)
	u.PurchaseID = deref(purchaseID)
	u.SaleID = deref(saleID)
	return &u, nil
}
