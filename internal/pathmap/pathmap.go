// Package pathmap maps plaintext-side paths to encrypted-side paths and back.
//
// Paths are slash-separated and relative to their side of the vault. The
// mapping only changes the final component (it appends or strips the
// encrypted extension), so both trees keep the same directory structure.
package pathmap

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	derrors "github.com/illarion/datavault/internal/errors"
)

const (
	// EncryptedExt is appended to every plaintext name on the encrypted side.
	EncryptedExt = ".enc"

	// KeepFile is the placeholder that keeps an empty plaintext side in version control.
	KeepFile = ".keep"
)

// Mapper converts between plaintext and encrypted relative paths.
type Mapper struct {
	ignore []string
}

// New creates a Mapper. Paths matching any of the doublestar ignore
// patterns are treated as unmappable.
func New(ignore []string) (*Mapper, error) {
	for _, p := range ignore {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid ignore pattern %q", p)
		}
	}
	return &Mapper{ignore: ignore}, nil
}

// ToEncrypted returns the encrypted-side path for a plaintext-side path.
func (m *Mapper) ToEncrypted(plainRel string) (string, error) {
	clean, err := m.check(plainRel)
	if err != nil {
		return "", err
	}
	return clean + EncryptedExt, nil
}

// ToPlain returns the plaintext-side path for an encrypted-side path.
func (m *Mapper) ToPlain(encRel string) (string, error) {
	clean, err := normalize(encRel)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(clean, EncryptedExt) || strings.HasSuffix(clean, "/"+EncryptedExt) || clean == EncryptedExt {
		return "", fmt.Errorf("%w: %s: missing %s extension", derrors.ErrUnmappable, encRel, EncryptedExt)
	}
	return m.check(strings.TrimSuffix(clean, EncryptedExt))
}

func (m *Mapper) check(plainRel string) (string, error) {
	clean, err := normalize(plainRel)
	if err != nil {
		return "", err
	}
	if clean == KeepFile {
		return "", fmt.Errorf("%w: %s is the placeholder file", derrors.ErrUnmappable, clean)
	}
	for _, pattern := range m.ignore {
		if ok, _ := doublestar.Match(pattern, clean); ok {
			return "", fmt.Errorf("%w: %s matches ignore pattern %q", derrors.ErrUnmappable, clean, pattern)
		}
		// A bare name pattern also matches in any directory.
		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match(pattern, path.Base(clean)); ok {
				return "", fmt.Errorf("%w: %s matches ignore pattern %q", derrors.ErrUnmappable, clean, pattern)
			}
		}
	}
	return clean, nil
}

// normalize validates a relative path and returns it in slash form.
func normalize(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("%w: empty path", derrors.ErrUnmappable)
	}
	slashed := filepath.ToSlash(rel)
	if path.IsAbs(slashed) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s is absolute", derrors.ErrUnmappable, rel)
	}
	if !filepath.IsLocal(filepath.FromSlash(slashed)) {
		return "", fmt.Errorf("%w: %s escapes the vault", derrors.ErrUnmappable, rel)
	}
	clean := path.Clean(slashed)
	if clean == "." {
		return "", fmt.Errorf("%w: %s names the side root", derrors.ErrUnmappable, rel)
	}
	if clean != slashed {
		return "", fmt.Errorf("%w: %s is not a clean path", derrors.ErrUnmappable, rel)
	}
	return clean, nil
}
