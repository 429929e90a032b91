package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/equaio/pkg/arithmetic"
	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/parser"
	"github.com/aretw0/equaio/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleSnapshot builds a snapshot with every field populated.
func sampleSnapshot(id string) *domain.Snapshot {
	ctx := arithmetic.Context("a")
	s := domain.NewSnapshot(id, ctx)
	current := parser.MustParseEquality("(x + 3) - 3 = 5 - 3", ctx)
	target := parser.MustParseEquality("x = 2", ctx)
	s.Rules["add_zero"] = parser.MustParseEquality("a + 0 = a", ctx)
	s.History = []domain.Step{
		{Expression: parser.MustParseEquality("x + 3 = 5", ctx)},
		{Expression: current, Label: "subtract both side by 3"},
	}
	s.Current = &current
	s.Target = &target
	s.ErrorMessages = []string{"rule missing is not defined"}
	s.PrintRHSOnly = true
	s.UpdatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return s
}

// RunSnapshotStoreContract verifies that a SnapshotStore implementation
// honours the port contract.
func RunSnapshotStoreContract(t *testing.T, store ports.SnapshotStore) {
	t.Helper()
	ctx := context.Background()
	sessionID := fmt.Sprintf("contract-%d", time.Now().UnixNano())

	t.Run("Save and Load", func(t *testing.T) {
		snapshot := sampleSnapshot(sessionID)
		require.NoError(t, store.Save(ctx, sessionID, snapshot))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		require.NotNil(t, loaded.Current)
		require.NotNil(t, loaded.Target)
		assert.True(t, snapshot.Current.Equal(*loaded.Current))
		assert.True(t, snapshot.Target.Equal(*loaded.Target))
		assert.Equal(t, "(x + 3) - 3 = 5 - 3", loaded.Current.String())
		require.Len(t, loaded.History, 2)
		assert.Equal(t, "subtract both side by 3", loaded.History[1].Label)
		assert.Equal(t, "a + 0 = a", loaded.Rules["add_zero"].String())
		assert.Equal(t, snapshot.ErrorMessages, loaded.ErrorMessages)
		assert.True(t, loaded.PrintRHSOnly)
		assert.Equal(t, snapshot.Context, loaded.Context)
		assert.True(t, snapshot.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.ErrorMessages = append(loaded.ErrorMessages, "mutated")
		loaded.Rules["extra"] = *loaded.Current

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Len(t, again.ErrorMessages, 1)
		assert.NotContains(t, again.Rules, "extra")
	})

	t.Run("Save overwrites", func(t *testing.T) {
		snapshot := sampleSnapshot(sessionID)
		snapshot.ErrorMessages = nil
		require.NoError(t, store.Save(ctx, sessionID, snapshot))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Empty(t, loaded.ErrorMessages)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, sessionID))
		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)

		assert.NoError(t, store.Delete(ctx, sessionID), "deleting twice is fine")
	})

	t.Run("List", func(t *testing.T) {
		id1, id2 := sessionID+"-1", sessionID+"-2"
		require.NoError(t, store.Save(ctx, id1, sampleSnapshot(id1)))
		require.NoError(t, store.Save(ctx, id2, sampleSnapshot(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
		assert.NotContains(t, sessions, sessionID)
	})
}

// RunRuleSetLoaderContract verifies a RuleSetLoader against the documents
// it was seeded with.
func RunRuleSetLoaderContract(t *testing.T, loader ports.RuleSetLoader, setupData map[string][]byte) {
	t.Helper()

	t.Run("GetRuleSet", func(t *testing.T) {
		for name, want := range setupData {
			got, err := loader.GetRuleSet(name)
			require.NoError(t, err, name)
			assert.Equal(t, string(want), string(got), name)
		}
	})

	t.Run("GetRuleSet NotFound", func(t *testing.T) {
		_, err := loader.GetRuleSet("non-existent-rule-set")
		assert.Error(t, err)
	})

	t.Run("ListRuleSets", func(t *testing.T) {
		names, err := loader.ListRuleSets()
		require.NoError(t, err)
		assert.Len(t, names, len(setupData))
		assert.IsNonDecreasing(t, names)
		for name := range setupData {
			assert.Contains(t, names, name)
		}
	})
}
