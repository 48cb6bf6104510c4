package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

func newStore(t *testing.T) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyStore(client, time.Minute), mr
}

func TestIdempotencyStore_SegundaReservaEsDuplicada(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.CheckAndInsert(ctx, "comp-1:/api/dispatches", "k1"))
	err := store.CheckAndInsert(ctx, "comp-1:/api/dispatches", "k1")
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)

	// Otro alcance con la misma clave no choca.
	assert.NoError(t, store.CheckAndInsert(ctx, "comp-2:/api/dispatches", "k1"))
}

func TestIdempotencyStore_DeleteLiberaLaClave(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.CheckAndInsert(ctx, "s", "k"))
	require.NoError(t, store.Delete(ctx, "s", "k"))
	assert.NoError(t, store.CheckAndInsert(ctx, "s", "k"))
}

func TestIdempotencyStore_ExpiraConTTL(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.CheckAndInsert(ctx, "s", "k"))
	mr.FastForward(2 * time.Minute)
	assert.NoError(t, store.CheckAndInsert(ctx, "s", "k"))
}

func TestIdempotencyStore_ClaveVacia(t *testing.T) {
	store, _ := newStore(t)
	assert.Error(t, store.CheckAndInsert(context.Background(), "s", ""))
}
