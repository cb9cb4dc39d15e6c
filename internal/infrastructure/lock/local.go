package lock

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/stockledger-api/internal/application/ports"
	"github.com/jhoicas/stockledger-api/internal/domain"
)

// LocalLocker lock en proceso para una sola instancia (o sin Redis configurado).
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

var _ ports.Locker = (*LocalLocker)(nil)

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

// Acquire igual semántica que RedisLocker: no espera, falla con ErrConcurrencyConflict.
func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[key]; busy {
		return nil, fmt.Errorf("%s: %w", key, domain.ErrConcurrencyConflict)
	}
	l.held[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}
