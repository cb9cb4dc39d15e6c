package lock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/lock"
)

func TestLocalLocker_SecondAcquireConflicts(t *testing.T) {
	l := lock.NewLocalLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "approval:a1")
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "approval:a1")
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	other, err := l.Acquire(ctx, "approval:a2")
	require.NoError(t, err)
	other()

	release()
	release() // idempotente

	again, err := l.Acquire(ctx, "approval:a1")
	require.NoError(t, err)
	again()
}

func TestLocalLocker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := lock.NewLocalLocker().Acquire(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
