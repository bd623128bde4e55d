package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-series/internal/domain/entity"
	"github.com/jhoicas/inventario-series/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, product_id, warehouse_id, number, expires_at, initial_qty, current_qty, unit_cost, created_at, updated_at`

// LotRepo implementación de LotRepository sobre PostgreSQL.
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes.
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// LockByNumber bloquea el lote por número dentro del producto y almacén.
func (r *LotRepo) LockByNumber(ctx context.Context, productID, warehouseID, number string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots
		WHERE product_id = $1 AND warehouse_id = $2 AND number = $3 FOR UPDATE`
	l, err := scanLot(r.q.QueryRow(ctx, query, productID, warehouseID, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock lot: %w", err)
	}
	return l, nil
}

// Create inserta un lote nuevo.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	query := `INSERT INTO lots (` + lotColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.ProductID, lot.WarehouseID, lot.Number, lot.ExpiresAt,
		lot.InitialQty, lot.CurrentQty, lot.UnitCost, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// Update persiste cantidades, costo y caducidad del lote.
func (r *LotRepo) Update(ctx context.Context, lot *entity.Lot) error {
	query := `
		UPDATE lots SET expires_at = $2, initial_qty = $3, current_qty = $4, unit_cost = $5, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, lot.ID, lot.ExpiresAt, lot.InitialQty, lot.CurrentQty, lot.UnitCost)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	return nil
}

// ListAvailableForUpdate devuelve los lotes con existencia, primero los que vencen antes.
func (r *LotRepo) ListAvailableForUpdate(ctx context.Context, productID, warehouseID string) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots
		WHERE product_id = $1 AND warehouse_id = $2 AND current_qty > 0
		ORDER BY expires_at ASC NULLS LAST, created_at ASC
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(&l.ID, &l.ProductID, &l.WarehouseID, &l.Number, &l.ExpiresAt,
		&l.InitialQty, &l.CurrentQty, &l.UnitCost, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
