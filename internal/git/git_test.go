package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	cmd := exec.Command("git", "init", "-q")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())
	return dir
}

func gitRun(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func TestCheckVault_NotARepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	// TempDir is outside any work tree on test machines.
	status, err := CheckVault(context.Background(), t.TempDir(), "decrypted", "vault.db", true, []string{"a.txt"})
	require.NoError(t, err)
	if status.IsRepo {
		t.Skip("temp dir is inside a git work tree")
	}
	assert.False(t, status.HasProblems())
	assert.Empty(t, FormatStatus(status, "vault.db"))
}

func TestCheckVault_Hygiene(t *testing.T) {
	root := initRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "decrypted"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("decrypted/*.txt\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "decrypted", "ignored.txt"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "decrypted", "exposed.env"), []byte("y"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "vault.db"), []byte("db"), 0600))
	gitRun(t, root, "add", "vault.db", "decrypted/exposed.env")

	status, err := CheckVault(context.Background(), root, "decrypted", "vault.db", true,
		[]string{"exposed.env", "ignored.txt"})
	require.NoError(t, err)

	assert.True(t, status.IsRepo)
	assert.True(t, status.IndexTracked)
	assert.Equal(t, []string{"decrypted/exposed.env"}, status.TrackedPlaintext)
	assert.Equal(t, []string{"decrypted/exposed.env"}, status.UnignoredPlaintext)
	assert.Equal(t, 1, status.IgnoredPlaintext)
	assert.True(t, status.HasProblems())

	out := FormatStatus(status, "vault.db")
	assert.Contains(t, out, "ok: vault.db is tracked by git")
	assert.Contains(t, out, "git rm --cached decrypted/exposed.env")
	// Tracked files are not reported twice.
	assert.NotContains(t, out, "exposed.env not in .gitignore")
}
