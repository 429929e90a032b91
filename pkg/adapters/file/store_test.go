package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/equaio/pkg/adapters/file"
	"github.com/aretw0/equaio/pkg/arithmetic"
	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/ports"
	contract "github.com/aretw0/equaio/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.SnapshotStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	contract.RunSnapshotStoreContract(t, store)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "absent"))
	sessions, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestFileStore_SkipsTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", domain.NewSnapshot("s1", arithmetic.Context())))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-s2-123.json"), []byte("{"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, sessions)
}

func TestFileStore_RejectsBadIDs(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()
	snapshot := domain.NewSnapshot("", arithmetic.Context())

	assert.Error(t, store.Save(ctx, "", snapshot))
	assert.Error(t, store.Save(ctx, "../escape", snapshot))
	_, err := store.Load(ctx, "a/b")
	assert.Error(t, err)
	assert.Error(t, store.Delete(ctx, ".."))
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))

	_, err := file.New(dir).Load(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}
