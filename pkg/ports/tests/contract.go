// Package tests provides contract suites that adapter implementations
// run to verify they honor the port interfaces.
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mojomast/arbor/pkg/domain"
	"github.com/mojomast/arbor/pkg/ports"
)

// RunSessionStoreContract verifies that a SessionStore implementation
// adheres to the interface contract.
func RunSessionStoreContract(t *testing.T, store ports.SessionStore) {
	ctx := context.Background()
	sessionID := "contract-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewSessionState(sessionID, "intro")
		state.CurrentNodeID = "greeting"
		state.ChosenOnce["intro/greeting#0"] = true
		state.Offered = []int{0, 2}

		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, state.CurrentNodeID, loaded.CurrentNodeID)
		assert.Equal(t, state.TreeID, loaded.TreeID)
		assert.True(t, loaded.ChosenOnce["intro/greeting#0"])
		assert.Equal(t, []int{0, 2}, loaded.Offered)
	})

	t.Run("Load isolates the stored state", func(t *testing.T) {
		state := domain.NewSessionState(sessionID, "intro")
		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.ChosenOnce["intro/greeting#1"] = true

		reloaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.False(t, reloaded.ChosenOnce["intro/greeting#1"],
			"mutating a loaded state must not leak into the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewSessionState(sessionID, "intro")))
		require.NoError(t, store.Delete(ctx, sessionID))

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSessionState(id1, "intro"))
		_ = store.Save(ctx, id2, domain.NewSessionState(id2, "intro"))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunTreeLoaderContract verifies that a TreeLoader implementation
// adheres to the interface contract.
func RunTreeLoaderContract(t *testing.T, loader ports.TreeLoader, wantIDs []string) {
	t.Run("ListTrees", func(t *testing.T) {
		ids, err := loader.ListTrees()
		require.NoError(t, err)
		for _, want := range wantIDs {
			assert.Contains(t, ids, want)
		}
	})

	t.Run("GetTree", func(t *testing.T) {
		for _, id := range wantIDs {
			tree, err := loader.GetTree(id)
			require.NoError(t, err)
			require.NotNil(t, tree)
			assert.Equal(t, id, tree.ID)
			assert.NotEmpty(t, tree.StartNode)
		}
	})

	t.Run("GetTree Non-Existent", func(t *testing.T) {
		_, err := loader.GetTree("definitely-not-a-tree")
		assert.ErrorIs(t, err, domain.ErrTreeNotFound)
	})
}
