package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-series/internal/application/inventory"
	"github.com/jhoicas/inventario-series/internal/domain"
)

var _ inventory.Locker = (*Locker)(nil)

// Locker obtiene candados distribuidos en Redis; evita dos barridos de conciliación simultáneos.
type Locker struct {
	client *redislock.Client
}

// NewLocker construye el locker sobre un cliente de Redis.
func NewLocker(rdb goredis.UniversalClient) *Locker {
	return &Locker{client: redislock.New(rdb)}
}

// Obtain toma la clave por ttl sin reintentos. Si otro proceso la tiene devuelve domain.ErrSweepInProgress.
func (l *Locker) Obtain(ctx context.Context, key string, ttl time.Duration) (inventory.Lock, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.ErrSweepInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return lock, nil
}
