package vault

import (
	"os"
	"path/filepath"
	"testing"

	derrors "github.com/illarion/datavault/internal/errors"
	"github.com/illarion/datavault/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeVault(t *testing.T, root string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, PlainDir), 0700))
	require.NoError(t, os.MkdirAll(filepath.Join(root, EncryptedDir), 0700))
}

func TestCreate(t *testing.T) {
	root := filepath.Join(t.TempDir(), "secrets")

	v, err := Create(root)
	require.NoError(t, err)
	assert.True(t, IsVault(v.Root))

	keep, err := os.Stat(filepath.Join(v.PlainPath(), ".keep"))
	require.NoError(t, err)
	assert.Zero(t, keep.Size())

	gitignore, err := os.ReadFile(filepath.Join(v.Root, GitIgnore))
	require.NoError(t, err)
	assert.Equal(t, "decrypted/*\n!decrypted/.keep\n", string(gitignore))

	db, err := storage.Open(v.IndexPath())
	require.NoError(t, err)
	defer db.Close()
	id, err := db.GetVaultID()
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestCreate_Exists(t *testing.T) {
	root := t.TempDir()

	_, err := Create(root)
	assert.ErrorIs(t, err, derrors.ErrVaultExists)
}

func TestIsVault(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, IsVault(dir))

	require.NoError(t, os.Mkdir(filepath.Join(dir, PlainDir), 0700))
	assert.False(t, IsVault(dir))

	// A file named like a side does not count.
	require.NoError(t, os.WriteFile(filepath.Join(dir, EncryptedDir), nil, 0600))
	assert.False(t, IsVault(dir))

	require.NoError(t, os.Remove(filepath.Join(dir, EncryptedDir)))
	require.NoError(t, os.Mkdir(filepath.Join(dir, EncryptedDir), 0700))
	assert.True(t, IsVault(dir))
}

func TestDiscover_StartIsVault(t *testing.T) {
	root := t.TempDir()
	makeVault(t, root)
	// Nested vault is not reported when the start itself is a vault.
	makeVault(t, filepath.Join(root, "decrypted", "inner"))

	vaults, err := Discover(root, DiscoverOptions{})
	require.NoError(t, err)
	require.Len(t, vaults, 1)
	assert.Equal(t, root, vaults[0].Root)
}

func TestDiscover_Descendants(t *testing.T) {
	root := t.TempDir()
	makeVault(t, filepath.Join(root, "b"))
	makeVault(t, filepath.Join(root, "a", "nested"))
	makeVault(t, filepath.Join(root, "a", "nested", "decrypted", "inner"))
	makeVault(t, filepath.Join(root, ".git", "hidden"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "c", "empty"), 0700))

	vaults, err := Discover(root, DiscoverOptions{})
	require.NoError(t, err)

	var roots []string
	for _, v := range vaults {
		roots = append(roots, v.Root)
	}
	assert.Equal(t, []string{
		filepath.Join(root, "a", "nested"),
		filepath.Join(root, "b"),
	}, roots)
}

func TestDiscover_MaxDepth(t *testing.T) {
	root := t.TempDir()
	makeVault(t, filepath.Join(root, "one", "two", "three"))

	_, err := Discover(root, DiscoverOptions{MaxDepth: 2})
	assert.ErrorIs(t, err, derrors.ErrNoVaultFound)

	vaults, err := Discover(root, DiscoverOptions{MaxDepth: 3})
	require.NoError(t, err)
	assert.Len(t, vaults, 1)
}

func TestDiscover_SkipsSymlinks(t *testing.T) {
	target := t.TempDir()
	makeVault(t, target)

	root := t.TempDir()
	if err := os.Symlink(target, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	_, err := Discover(root, DiscoverOptions{})
	assert.ErrorIs(t, err, derrors.ErrNoVaultFound)
}

func TestDiscover_Errors(t *testing.T) {
	_, err := Discover(t.TempDir(), DiscoverOptions{})
	assert.ErrorIs(t, err, derrors.ErrNoVaultFound)

	_, err = Discover(filepath.Join(t.TempDir(), "missing"), DiscoverOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
