package pathmap

import (
	"testing"

	derrors "github.com/illarion/datavault/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapper_Bijection(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)

	paths := []string{
		"a.txt",
		"nested/dir/b.json",
		".env",
		"config/.env.local",
		"already.enc",
		"no-extension",
	}
	for _, p := range paths {
		enc, err := m.ToEncrypted(p)
		require.NoError(t, err, p)
		assert.Equal(t, p+EncryptedExt, enc)

		back, err := m.ToPlain(enc)
		require.NoError(t, err, enc)
		assert.Equal(t, p, back)
	}
}

func TestMapper_RejectsUncleanPaths(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)

	for _, p := range []string{"./a.txt", "a//b", "a/", "a/./b", "a/b/../c"} {
		_, err := m.ToEncrypted(p)
		assert.ErrorIs(t, err, derrors.ErrUnmappable, p)

		_, err = m.ToPlain(p + EncryptedExt)
		assert.ErrorIs(t, err, derrors.ErrUnmappable, p)
	}
}

func TestMapper_Unmappable(t *testing.T) {
	m, err := New([]string{"*.swp", "tmp/**"})
	require.NoError(t, err)

	plain := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"absolute", "/etc/passwd"},
		{"parent", "../x"},
		{"nested parent", "a/../../x"},
		{"side root", "."},
		{"keep file", KeepFile},
		{"ignored name", "docs/.notes.swp"},
		{"ignored dir", "tmp/cache/file"},
	}
	for _, tt := range plain {
		t.Run("plain "+tt.name, func(t *testing.T) {
			_, err := m.ToEncrypted(tt.input)
			assert.ErrorIs(t, err, derrors.ErrUnmappable)
		})
	}

	encrypted := []string{"a.txt", ".enc", "dir/.enc", "../a.enc", "tmp/x.enc"}
	for _, p := range encrypted {
		_, err := m.ToPlain(p)
		assert.ErrorIs(t, err, derrors.ErrUnmappable, p)
	}
}

func TestMapper_KeepFileOnlyAtRoot(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	enc, err := m.ToEncrypted("sub/.keep")
	require.NoError(t, err)
	assert.Equal(t, "sub/.keep.enc", enc)
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New([]string{"[unclosed"})
	assert.Error(t, err)
}
