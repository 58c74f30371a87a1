package core

import (
	"context"
	"fmt"

	"github.com/illarion/datavault/internal/diff"
	"github.com/illarion/datavault/internal/pathmap"
	"github.com/illarion/datavault/internal/security"
	"github.com/illarion/datavault/internal/storage"
	"github.com/illarion/datavault/internal/vault"
)

// Clear deletes every file on the plaintext side except the placeholder.
// The encrypted side and the index are untouched.
func (s *Service) Clear(ctx context.Context, v vault.Vault) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// A read lock is enough to keep a concurrent encrypt out.
	idx, err := peekIndex(v)
	if err != nil {
		return nil, err
	}
	if idx != nil {
		defer idx.Close()
	}

	report, err := s.clearSide(v, OpClear, v.PlainPath(), pathmap.KeepFile)
	if err != nil {
		return report, err
	}
	for i, f := range report.Files {
		if enc, err := s.mapper.ToEncrypted(f.Path); err == nil {
			report.Files[i].EncryptedPath = enc
		}
	}
	return report, nil
}

// ClearEncrypted deletes every file on the encrypted side and empties the
// index. The plaintext side is untouched.
func (s *Service) ClearEncrypted(ctx context.Context, v vault.Vault) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var idx *storage.Storage
	if indexExists(v) {
		var err error
		if idx, err = lockIndex(v); err != nil {
			return nil, err
		}
		defer idx.Close()
	}

	report, err := s.clearSide(v, OpClearEncrypted, v.EncryptedPath())
	if err != nil {
		return report, err
	}
	for i, f := range report.Files {
		report.Files[i].EncryptedPath = f.Path
		if plain, err := s.mapper.ToPlain(f.Path); err == nil {
			report.Files[i].Path = plain
		}
	}

	if idx != nil {
		if err := idx.Reset(); err != nil {
			return report, fmt.Errorf("failed to reset index: %w", err)
		}
	}
	return report, nil
}

func (s *Service) clearSide(v vault.Vault, op Operation, dir string, keep ...string) (*Report, error) {
	log := s.log.WithVault(v.Root)

	root, err := security.Open(dir)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	report := newReport(v, op, false)
	removed, err := root.RemoveAll(keep...)
	for _, rel := range removed {
		report.add(diff.Entry{Path: rel, Kind: diff.Removed}, ActionDelete, nil)
		log.Debug().Str("path", rel).Msg("removed")
	}
	if err != nil {
		return report, err
	}

	log.Info().Str("op", string(op)).Int("removed", len(removed)).Msg("vault cleared")
	return report, nil
}
