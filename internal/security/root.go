package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Temp files of an atomic write are named ".<base>.dvtmp-<hex>".
const (
	tempMarker    = ".dvtmp-"
	tempSuffixLen = 12
)

var (
	ErrPathEscapes  = errors.New("path escapes vault side")
	ErrAbsolutePath = errors.New("absolute paths are not allowed")
	ErrEmptyPath    = errors.New("empty path not allowed")
)

// Root provides file operations confined to a directory.
type Root struct {
	root *os.Root
	dir  string
}

// Open opens dir as a confined root.
func Open(dir string) (*Root, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", absPath, err)
	}

	return &Root{root: root, dir: absPath}, nil
}

// Close releases the underlying directory handle.
func (r *Root) Close() error {
	if r.root != nil {
		return r.root.Close()
	}
	return nil
}

// Dir returns the absolute directory of the root.
func (r *Root) Dir() string {
	return r.dir
}

// ValidateAndNormalize checks a relative path and returns it in slash form.
// It rejects empty, absolute and escaping paths.
func ValidateAndNormalize(rel string) (string, error) {
	if rel == "" {
		return "", ErrEmptyPath
	}
	platformPath := filepath.FromSlash(rel)
	if !filepath.IsLocal(platformPath) {
		if filepath.IsAbs(platformPath) || strings.HasPrefix(rel, "/") {
			return "", fmt.Errorf("%w: %s", ErrAbsolutePath, rel)
		}
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, rel)
	}
	return filepath.ToSlash(filepath.Clean(platformPath)), nil
}

func (r *Root) platform(rel string) (string, error) {
	clean, err := ValidateAndNormalize(rel)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	return filepath.FromSlash(clean), nil
}

// ReadFile reads a file inside the root.
func (r *Root) ReadFile(rel string) ([]byte, error) {
	p, err := r.platform(rel)
	if err != nil {
		return nil, err
	}
	return r.root.ReadFile(p)
}

// WriteFileAtomic writes data to rel, creating parent directories.
// The file is first written to a temporary sibling and then renamed into
// place, so readers see either the old or the new content.
func (r *Root) WriteFileAtomic(rel string, data []byte, perm os.FileMode) error {
	p, err := r.platform(rel)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(p); dir != "." {
		if err := r.root.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", filepath.ToSlash(dir), err)
		}
	}

	suffix := make([]byte, tempSuffixLen/2)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Errorf("failed to generate temp name: %w", err)
	}
	tmp := filepath.Join(filepath.Dir(p), "."+filepath.Base(p)+tempMarker+hex.EncodeToString(suffix))

	f, err := r.root.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		r.root.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		r.root.Remove(tmp)
		return fmt.Errorf("failed to sync %s: %w", rel, err)
	}
	if err := f.Close(); err != nil {
		r.root.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", rel, err)
	}

	if err := r.root.Rename(tmp, p); err != nil {
		r.root.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", rel, err)
	}
	return nil
}

// Remove deletes a file and then any parent directories it left empty.
func (r *Root) Remove(rel string) error {
	p, err := r.platform(rel)
	if err != nil {
		return err
	}
	if err := r.root.Remove(p); err != nil {
		return err
	}
	r.pruneParents(p)
	return nil
}

// pruneParents removes empty directories from p's parent up to the root.
// It stops at the first directory that cannot be removed.
func (r *Root) pruneParents(p string) {
	for dir := filepath.Dir(p); dir != "." && dir != string(filepath.Separator); dir = filepath.Dir(dir) {
		if err := r.root.Remove(dir); err != nil {
			return
		}
	}
}

// Files lists regular files under the root as sorted slash paths.
// Symlinks and other irregular files are skipped, directories named in
// skipDirs are not descended into, and leftover temp files are ignored.
func (r *Root) Files(skipDirs ...string) ([]string, error) {
	var files []string
	err := fs.WalkDir(r.root.FS(), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			for _, skip := range skipDirs {
				if p != "." && d.Name() == skip {
					return fs.SkipDir
				}
			}
			return nil
		}
		if !d.Type().IsRegular() || isTempName(d.Name()) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", r.dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// RemoveAll deletes every non-directory entry under the root except the
// paths in keep, then removes directories left empty. It returns the removed
// paths in sorted order.
func (r *Root) RemoveAll(keep ...string) ([]string, error) {
	keepSet := make(map[string]bool, len(keep))
	for _, k := range keep {
		keepSet[k] = true
	}

	var entries []string
	err := fs.WalkDir(r.root.FS(), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && !keepSet[p] {
			entries = append(entries, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", r.dir, err)
	}
	sort.Strings(entries)

	var removed []string
	for _, e := range entries {
		if err := r.Remove(e); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", e, err)
		}
		removed = append(removed, e)
	}
	return removed, nil
}

// isTempName reports whether name has exactly the shape of an in-flight
// atomic write. Other names, however close, are user files.
func isTempName(name string) bool {
	i := strings.LastIndex(name, tempMarker)
	if i < 2 || name[0] != '.' {
		return false
	}
	suffix := name[i+len(tempMarker):]
	if len(suffix) != tempSuffixLen || strings.ToLower(suffix) != suffix {
		return false
	}
	_, err := hex.DecodeString(suffix)
	return err == nil
}
