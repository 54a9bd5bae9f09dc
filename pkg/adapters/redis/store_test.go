package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mojomast/arbor/pkg/adapters/redis"
	"github.com/mojomast/arbor/pkg/domain"
	"github.com/mojomast/arbor/pkg/ports/tests"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestStore_Contract(t *testing.T) {
	_, client := newTestClient(t)
	tests.RunSessionStoreContract(t, redis.NewStore(client, "arbor:"))
}

func TestStore_TTLExpiration(t *testing.T) {
	mr, client := newTestClient(t)
	store := redis.NewStore(client, "arbor:", redis.WithTTL(time.Second))
	ctx := context.Background()

	state := domain.NewSessionState("session-ttl", "intro")
	require.NoError(t, store.Save(ctx, "session-ttl", state))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, "session-ttl")

	// miniredis advances expiry on demand.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "session-ttl")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_PrefixIsolation(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()

	a := redis.NewStore(client, "a:")
	b := redis.NewStore(client, "b:")

	require.NoError(t, a.Save(ctx, "s1", domain.NewSessionState("s1", "intro")))

	_, err := b.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	sessions, err := b.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
