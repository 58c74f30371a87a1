package diff

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illarion/datavault/internal/crypto"
	derrors "github.com/illarion/datavault/internal/errors"
	"github.com/illarion/datavault/internal/pathmap"
	"github.com/illarion/datavault/internal/vault"
)

func newCodec(t *testing.T) *crypto.Codec {
	t.Helper()
	s, err := crypto.GenerateSecret()
	require.NoError(t, err)
	secret, err := crypto.ParseSecret(s)
	require.NoError(t, err)
	codec, err := crypto.NewCodec(secret)
	require.NoError(t, err)
	return codec
}

func newVault(t *testing.T) vault.Vault {
	t.Helper()
	v, err := vault.Create(filepath.Join(t.TempDir(), "v"))
	require.NoError(t, err)
	return v
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, data, 0600))
}

func writePlain(t *testing.T, v vault.Vault, rel, content string) {
	writeFile(t, filepath.Join(v.PlainPath(), filepath.FromSlash(rel)), []byte(content))
}

func writeSealed(t *testing.T, v vault.Vault, codec *crypto.Codec, rel, content string) {
	t.Helper()
	sealed, err := codec.Encrypt([]byte(content))
	require.NoError(t, err)
	writeFile(t, filepath.Join(v.EncryptedPath(), filepath.FromSlash(rel)+pathmap.EncryptedExt), sealed)
}

func newTestDiffer(t *testing.T, codec *crypto.Codec) *Differ {
	t.Helper()
	m, err := pathmap.New(nil)
	require.NoError(t, err)
	return NewDiffer(m, codec, nil)
}

func kinds(r *Result) map[string]Kind {
	out := make(map[string]Kind, len(r.Entries))
	for _, e := range r.Entries {
		out[e.Path] = e.Kind
	}
	return out
}

func TestDiff_PlaintextIsSource(t *testing.T) {
	codec := newCodec(t)
	v := newVault(t)

	writePlain(t, v, "new.txt", "new")
	writePlain(t, v, "same.txt", "same")
	writeSealed(t, v, codec, "same.txt", "same")
	writePlain(t, v, "dir/edited.txt", "after")
	writeSealed(t, v, codec, "dir/edited.txt", "before")
	writeSealed(t, v, codec, "gone.txt", "gone")

	r, err := newTestDiffer(t, codec).Diff(context.Background(), v, PlaintextIsSource)
	require.NoError(t, err)

	assert.Equal(t, map[string]Kind{
		"new.txt":        Added,
		"same.txt":       Unchanged,
		"dir/edited.txt": Modified,
		"gone.txt":       Removed,
	}, kinds(r))

	var paths []string
	for _, e := range r.Entries {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"dir/edited.txt", "gone.txt", "new.txt", "same.txt"}, paths)
	assert.True(t, r.HasChanges())
	assert.Equal(t, 1, r.Counts()[Unchanged])
	assert.Len(t, r.Filter(Added, Removed), 2)
}

func TestDiff_EncryptedIsSource(t *testing.T) {
	codec := newCodec(t)
	v := newVault(t)

	writePlain(t, v, "local.txt", "local")
	writeSealed(t, v, codec, "remote.txt", "remote")

	r, err := newTestDiffer(t, codec).Diff(context.Background(), v, EncryptedIsSource)
	require.NoError(t, err)

	assert.Equal(t, map[string]Kind{
		"local.txt":  Removed,
		"remote.txt": Added,
	}, kinds(r))
	assert.Equal(t, "remote.txt.enc", r.Filter(Added)[0].EncryptedPath)
}

func TestDiff_FreshVaultIsComplete(t *testing.T) {
	codec := newCodec(t)
	v := newVault(t)
	files := []string{"a.txt", "b/c.txt", "b/d/e.bin"}
	for _, f := range files {
		writePlain(t, v, f, f)
	}

	r, err := newTestDiffer(t, codec).Diff(context.Background(), v, PlaintextIsSource)
	require.NoError(t, err)

	require.Len(t, r.Entries, len(files))
	for _, e := range r.Entries {
		assert.Equal(t, Added, e.Kind, e.Path)
		assert.NotEmpty(t, e.PlainFingerprint)
	}
}

func TestDiff_Unreadable(t *testing.T) {
	codec := newCodec(t)
	v := newVault(t)

	writePlain(t, v, "ok.txt", "ok")
	writeSealed(t, v, codec, "ok.txt", "ok")
	writePlain(t, v, "other-key.txt", "x")
	writeSealed(t, v, newCodec(t), "other-key.txt", "x")
	writePlain(t, v, "garbage.txt", "y")
	writeFile(t, filepath.Join(v.EncryptedPath(), "garbage.txt.enc"), []byte("not a container"))

	r, err := newTestDiffer(t, codec).Diff(context.Background(), v, EncryptedIsSource)
	require.NoError(t, err)

	unreadable := r.Unreadable()
	require.Len(t, unreadable, 2)
	assert.Equal(t, "garbage.txt", unreadable[0].Path)
	assert.ErrorIs(t, unreadable[0].Err, derrors.ErrFormat)
	assert.Equal(t, "other-key.txt", unreadable[1].Path)
	assert.ErrorIs(t, unreadable[1].Err, derrors.ErrAuthentication)

	var entryErr *derrors.UnreadableEntryError
	assert.ErrorAs(t, unreadable[1].Err, &entryErr)
	assert.False(t, r.HasChanges())
}

func TestDiff_ExcludesUnmappable(t *testing.T) {
	codec := newCodec(t)
	v := newVault(t)

	// decrypted/.keep exists from Create.
	writePlain(t, v, "notes.swp", "swap")
	writeFile(t, filepath.Join(v.EncryptedPath(), "README"), []byte("no extension"))
	writePlain(t, v, "keep.txt", "k")
	if err := os.Symlink("keep.txt", filepath.Join(v.PlainPath(), "link.txt")); err != nil {
		t.Logf("symlinks not supported: %v", err)
	}

	m, err := pathmap.New([]string{"*.swp"})
	require.NoError(t, err)
	r, err := NewDiffer(m, codec, nil).Diff(context.Background(), v, PlaintextIsSource)
	require.NoError(t, err)

	assert.Equal(t, map[string]Kind{"keep.txt": Added}, kinds(r))
}

func TestDiff_Errors(t *testing.T) {
	v := newVault(t)

	_, err := newTestDiffer(t, nil).Diff(context.Background(), v, PlaintextIsSource)
	assert.ErrorIs(t, err, derrors.ErrMissingSecret)

	writePlain(t, v, "a.txt", "a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newTestDiffer(t, newCodec(t)).Diff(ctx, v, PlaintextIsSource)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResult_EmptyVault(t *testing.T) {
	r, err := newTestDiffer(t, newCodec(t)).Diff(context.Background(), newVault(t), PlaintextIsSource)
	require.NoError(t, err)
	assert.True(t, r.Empty())
	assert.False(t, r.HasChanges())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "added", Added.String())
	assert.Equal(t, "unreadable", Unreadable.String())
	assert.Equal(t, "encrypted-is-source", EncryptedIsSource.String())
}
