package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	derrors "github.com/illarion/datavault/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInitializes(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), FileName)

	db, err := Open(dbPath)
	require.NoError(t, err)

	version, err := db.GetVersion()
	require.NoError(t, err)
	assert.Equal(t, Version, version)

	id, err := db.GetVaultID()
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.NoError(t, db.Close())

	// Reopening keeps the same identity.
	db2, err := Open(dbPath)
	require.NoError(t, err)
	defer db2.Close()

	id2, err := db2.GetVaultID()
	require.NoError(t, err)
	assert.Equal(t, id, id2)
}

func TestSyncAndEntries(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	defer db.Close()

	before, err := db.GetModified()
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, db.Sync([]Entry{
		{Path: "b.txt.enc", Size: 10, Fingerprint: "bb", Synced: now},
		{Path: "a.txt.enc", Size: 5, Fingerprint: "aa", Synced: now},
	}, nil))

	entries, err := db.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.txt.enc", entries[0].Path)
	assert.Equal(t, "b.txt.enc", entries[1].Path)
	assert.True(t, entries[0].Synced.Equal(now))

	after, err := db.GetModified()
	require.NoError(t, err)
	assert.False(t, after.Before(before))

	require.NoError(t, db.Sync(nil, []string{"a.txt.enc", "missing.enc"}))
	entries, err = db.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b.txt.enc", entries[0].Path)
	assert.Equal(t, "bb", entries[0].Fingerprint)
}

func TestSync_EmptyLeavesFileUntouched(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), FileName)
	db, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Sync([]Entry{{Path: "a.enc", Size: 1}}, nil))
	require.NoError(t, db.Close())
	before, err := os.ReadFile(dbPath)
	require.NoError(t, err)

	db, err = Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Sync(nil, nil))
	require.NoError(t, db.Close())

	after, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestReset(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Sync([]Entry{{Path: "x.enc"}}, nil))
	require.NoError(t, db.Reset())

	entries, err := db.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpenBusy(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), FileName)

	db, err := Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = Open(dbPath)
	assert.ErrorIs(t, err, derrors.ErrVaultBusy)
}

func TestOpenReadOnly(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), FileName)

	db, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Sync([]Entry{{Path: "x.enc", Size: 1}}, nil))
	require.NoError(t, db.Close())

	ro, err := OpenReadOnly(dbPath)
	require.NoError(t, err)
	defer ro.Close()

	entries, err := ro.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
