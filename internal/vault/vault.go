package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	derrors "github.com/illarion/datavault/internal/errors"
	"github.com/illarion/datavault/internal/pathmap"
	"github.com/illarion/datavault/internal/storage"
)

const (
	PlainDir     = "decrypted"
	EncryptedDir = "encrypted"
	GitIgnore    = ".gitignore"

	DirPerm  = 0700
	FilePerm = 0600

	// DefaultMaxDepth bounds how deep Discover descends below the start directory.
	DefaultMaxDepth = 8
)

// Vault is a discovered vault root.
type Vault struct {
	Root string
}

// New returns a Vault for root made absolute.
func New(root string) (Vault, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Vault{}, fmt.Errorf("failed to get absolute path: %w", err)
	}
	return Vault{Root: abs}, nil
}

// PlainPath returns the plaintext side directory.
func (v Vault) PlainPath() string {
	return filepath.Join(v.Root, PlainDir)
}

// EncryptedPath returns the encrypted side directory.
func (v Vault) EncryptedPath() string {
	return filepath.Join(v.Root, EncryptedDir)
}

// IndexPath returns the vault index file.
func (v Vault) IndexPath() string {
	return filepath.Join(v.Root, storage.FileName)
}

func (v Vault) String() string {
	return v.Root
}

// IsVault reports whether dir has both vault sides.
func IsVault(dir string) bool {
	for _, side := range []string{PlainDir, EncryptedDir} {
		info, err := os.Stat(filepath.Join(dir, side))
		if err != nil || !info.IsDir() {
			return false
		}
	}
	return true
}

// DiscoverOptions tunes Discover.
type DiscoverOptions struct {
	MaxDepth int
}

// Discover returns the vault at startDir, or every vault below it in path
// order. Symbolic links are never followed and the walk does not descend
// into a vault once found.
func Discover(startDir string, opts DiscoverOptions) ([]Vault, error) {
	start, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	info, err := os.Stat(start)
	if err != nil {
		return nil, fmt.Errorf("cannot search %s: %w", startDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cannot search %s: not a directory", startDir)
	}

	if IsVault(start) {
		return []Vault{{Root: start}}, nil
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	var vaults []Vault
	err = filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directories are skipped, not fatal.
			if d != nil && d.IsDir() && path != start {
				return fs.SkipDir
			}
			return err
		}
		if !d.IsDir() || path == start {
			return nil
		}
		if d.Name() == ".git" {
			return fs.SkipDir
		}

		rel, _ := filepath.Rel(start, path)
		depth := strings.Count(filepath.ToSlash(rel), "/") + 1
		if IsVault(path) {
			vaults = append(vaults, Vault{Root: path})
			return fs.SkipDir
		}
		if depth >= maxDepth {
			return fs.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", startDir, err)
	}

	if len(vaults) == 0 {
		return nil, fmt.Errorf("%w under %s", derrors.ErrNoVaultFound, start)
	}

	sort.Slice(vaults, func(i, j int) bool { return vaults[i].Root < vaults[j].Root })
	return vaults, nil
}

// Create scaffolds a new vault at root, which must not exist yet.
func Create(root string) (Vault, error) {
	v, err := New(root)
	if err != nil {
		return Vault{}, err
	}
	if _, err := os.Lstat(v.Root); err == nil {
		return Vault{}, fmt.Errorf("%w: %s", derrors.ErrVaultExists, root)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Vault{}, fmt.Errorf("cannot create vault at %s: %w", root, err)
	}

	if err := os.MkdirAll(v.Root, 0755); err != nil {
		return Vault{}, fmt.Errorf("failed to create vault root: %w", err)
	}
	for _, dir := range []string{v.PlainPath(), v.EncryptedPath()} {
		if err := os.Mkdir(dir, DirPerm); err != nil {
			return Vault{}, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(filepath.Join(v.PlainPath(), pathmap.KeepFile), nil, FilePerm); err != nil {
		return Vault{}, fmt.Errorf("failed to create keep file: %w", err)
	}
	if err := os.WriteFile(filepath.Join(v.Root, GitIgnore), []byte(GitIgnoreLines()), 0644); err != nil {
		return Vault{}, fmt.Errorf("failed to create %s: %w", GitIgnore, err)
	}

	db, err := storage.Open(v.IndexPath())
	if err != nil {
		return Vault{}, err
	}
	if err := db.Close(); err != nil {
		return Vault{}, fmt.Errorf("failed to close index: %w", err)
	}

	return v, nil
}

// GitIgnoreLines returns the ignore rules that keep the plaintext side out
// of version control, relative to the vault root.
func GitIgnoreLines() string {
	return PlainDir + "/*\n!" + PlainDir + "/" + pathmap.KeepFile + "\n"
}
