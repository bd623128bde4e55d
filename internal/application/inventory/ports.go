package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-series/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Serials    repository.SerialUnitRepository
	Stock      repository.StockRepository
	Movements  repository.InventoryMovementRepository
	Products   repository.ProductRepository
	Warehouses repository.WarehouseRepository
	Lots       repository.LotRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si ctx ya lleva una transacción abierta por otro Run, la función se une a ella y el commit
// queda en manos del Run externo.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
	// InTransaction indica si ctx lleva una transacción abierta.
	InTransaction(ctx context.Context) bool
}

// Lock es un candado distribuido obtenido.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker obtiene candados distribuidos. Devuelve domain.ErrSweepInProgress si la clave ya está tomada.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// SweepReportWriter persiste el resultado de un barrido (por ejemplo en XLSX).
type SweepReportWriter interface {
	Write(path string, report *SweepReport) error
}
