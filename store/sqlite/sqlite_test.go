package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/earnings-engine/settings"
	"github.com/warp/earnings-engine/store/sqlite"
	"github.com/warp/earnings-engine/store/storetest"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Backend {
		return newStore(t)
	})
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	// GIVEN: a file-backed store with saved settings
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "earnings.db")

	s, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "u1", storetest.Sample()))
	require.NoError(t, s.Close())

	// WHEN: the database is reopened, re-running migrations
	s, err = sqlite.New(path)
	require.NoError(t, err)
	defer s.Close()

	// THEN: the settings are still there
	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "CZK", got.Currency)
}

func TestSQLiteStore_CreatesMissingDirectory(t *testing.T) {
	// GIVEN: a path whose parent directories do not exist yet
	path := filepath.Join(t.TempDir(), "data", "nested", "earnings.db")

	// WHEN: the store is opened
	s, err := sqlite.New(path)

	// THEN: the directories and database are created
	require.NoError(t, err)
	defer s.Close()
	assert.FileExists(t, path)
}

func TestSQLiteStore_Reset(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Save(ctx, "u1", storetest.Sample()))

	require.NoError(t, s.Reset(ctx))

	_, err := s.Get(ctx, "u1")
	assert.ErrorIs(t, err, settings.ErrNotFound)
}
