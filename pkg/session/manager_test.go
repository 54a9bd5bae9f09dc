package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mojomast/arbor/pkg/adapters/memory"
	"github.com/mojomast/arbor/pkg/domain"
	"github.com/mojomast/arbor/pkg/ports"
)

// fakeLocker records distributed lock activity.
type fakeLocker struct {
	mu       sync.Mutex
	locked   []string
	unlocked []string
	fail     error
}

func (f *fakeLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.locked = append(f.locked, key)
	return func(context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unlocked = append(f.unlocked, key)
		return nil
	}, nil
}

func TestManager_StoreRoundTrip(t *testing.T) {
	m := NewManager(memory.NewStore())
	ctx := context.Background()

	state := domain.NewSessionState("s1", "intro")
	require.NoError(t, m.Save(ctx, "s1", state))

	loaded, err := m.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "intro", loaded.TreeID)

	ids, err := m.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "s1")

	require.NoError(t, m.Delete(ctx, "s1"))
	_, err = m.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_WithLockSerializes(t *testing.T) {
	m := NewManager(memory.NewStore())
	ctx := context.Background()

	var inSection bool
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.WithLock(ctx, "same-session", func(context.Context) error {
				if inSection {
					t.Error("two holders inside the critical section")
				}
				inSection = true
				time.Sleep(time.Millisecond)
				inSection = false
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Idle lock entries are garbage collected.
	m.mu.Lock()
	assert.Empty(t, m.locks)
	m.mu.Unlock()
}

func TestManager_DistributedLocker(t *testing.T) {
	t.Run("locks around the callback", func(t *testing.T) {
		locker := &fakeLocker{}
		m := NewManager(memory.NewStore(), WithDistributedLocker(locker))

		err := m.WithLock(context.Background(), "s1", func(context.Context) error {
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"s1"}, locker.locked)
		assert.Equal(t, []string{"s1"}, locker.unlocked)
	})

	t.Run("acquisition failure aborts the callback", func(t *testing.T) {
		locker := &fakeLocker{fail: errors.New("redis down")}
		m := NewManager(memory.NewStore(), WithDistributedLocker(locker))

		called := false
		err := m.WithLock(context.Background(), "s1", func(context.Context) error {
			called = true
			return nil
		})
		require.Error(t, err)
		assert.False(t, called)
	})
}

func TestManager_WithLockPropagatesError(t *testing.T) {
	m := NewManager(memory.NewStore())
	want := errors.New("boom")

	err := m.WithLock(context.Background(), "s1", func(context.Context) error {
		return want
	})
	assert.ErrorIs(t, err, want)
}
