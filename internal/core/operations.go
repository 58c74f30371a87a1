package core

import (
	"context"
	"fmt"

	"github.com/illarion/datavault/internal/crypto"
	"github.com/illarion/datavault/internal/diff"
	derrors "github.com/illarion/datavault/internal/errors"
	"github.com/illarion/datavault/internal/logger"
	"github.com/illarion/datavault/internal/storage"
	"github.com/illarion/datavault/internal/vault"
)

// Inspect returns the diff encrypt would apply. Nothing is modified.
func (s *Service) Inspect(ctx context.Context, v vault.Vault, secret *crypto.Secret) (*diff.Result, error) {
	codec, err := crypto.NewCodec(secret)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.differ(codec, s.log.WithVault(v.Root)).Diff(ctx, v, diff.PlaintextIsSource)
}

// Encrypt makes the encrypted side match the plaintext side.
//
// Added and modified files are encrypted and written atomically, removed
// files are deleted from the encrypted side. Entries whose ciphertext cannot
// be decrypted are skipped unless opts.Force is set, so a vault encrypted
// with another secret is not overwritten by accident.
func (s *Service) Encrypt(ctx context.Context, v vault.Vault, secret *crypto.Secret, opts Options) (*Report, error) {
	codec, err := crypto.NewCodec(secret)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := s.log.WithVault(v.Root)

	var idx *storage.Storage
	if !opts.DryRun {
		if idx, err = lockIndex(v); err != nil {
			return nil, err
		}
		defer idx.Close()
	}

	sd, err := openSides(v)
	if err != nil {
		return nil, err
	}
	defer sd.Close()

	result, err := s.differ(codec, log).DiffRoots(ctx, sd.plain, sd.enc, diff.PlaintextIsSource)
	if err != nil {
		return nil, fmt.Errorf("failed to compare %s: %w", v.Root, err)
	}

	report := newReport(v, OpEncrypt, opts.DryRun)
	sync := newIndexSync(result)

	var runErr error
	for _, e := range result.Entries {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		switch e.Kind {
		case diff.Unchanged:
			report.add(e, ActionNone, nil)
			sync.keep(e.EncryptedPath, e.EncryptedFingerprint, e.EncryptedSize)

		case diff.Added, diff.Modified:
			s.encryptEntry(sd, codec, e, opts, report, sync, log)

		case diff.Removed:
			if s.removeEntry(e, e.EncryptedPath, sd.enc.Remove, opts, report, log) {
				sync.drop(e.EncryptedPath)
			}

		case diff.Unreadable:
			if opts.Force && e.InPlain {
				log.Warn().Str("path", e.Path).Err(e.Err).Msg("overwriting unreadable ciphertext")
				s.encryptEntry(sd, codec, e, opts, report, sync, log)
				continue
			}
			log.Warn().Str("path", e.Path).Err(e.Err).Msg("skipping unreadable entry")
			report.add(e, ActionSkip, e.Err)
		}
	}

	if idx != nil {
		if err := sync.apply(idx); err != nil {
			return report, fmt.Errorf("failed to update index: %w", err)
		}
	}

	logSummary(log, report)
	if runErr != nil {
		return report, runErr
	}
	return report, nil
}

func (s *Service) encryptEntry(sd *sides, codec *crypto.Codec, e diff.Entry, opts Options, report *Report, sync *indexSync, log *logger.Logger) {
	if opts.DryRun {
		report.add(e, ActionWrite, nil)
		return
	}

	plaintext, err := sd.plain.ReadFile(e.Path)
	if err != nil {
		report.add(e, ActionFailed, &derrors.UnreadableEntryError{Path: e.Path, Err: err})
		return
	}
	sealed, err := codec.Encrypt(plaintext)
	crypto.ClearBytes(plaintext)
	if err != nil {
		report.add(e, ActionFailed, fmt.Errorf("failed to encrypt %s: %w", e.Path, err))
		return
	}

	if err := sd.enc.WriteFileAtomic(e.EncryptedPath, sealed, EncryptedFilePerm); err != nil {
		report.add(e, ActionFailed, err)
		log.Error().Str("path", e.EncryptedPath).Err(err).Msg("write failed")
		return
	}

	sync.keep(e.EncryptedPath, diff.Fingerprint(sealed), int64(len(sealed)))
	report.add(e, ActionWrite, nil)
	log.Debug().Str("path", e.Path).Stringer("kind", e.Kind).Msg("encrypted")
}

// removeEntry deletes rel through remove, which also prunes empty parents.
func (s *Service) removeEntry(e diff.Entry, rel string, remove func(string) error, opts Options, report *Report, log *logger.Logger) bool {
	if opts.DryRun {
		report.add(e, ActionDelete, nil)
		return false
	}
	if err := remove(rel); err != nil {
		report.add(e, ActionFailed, fmt.Errorf("failed to remove %s: %w", rel, err))
		log.Error().Str("path", rel).Err(err).Msg("remove failed")
		return false
	}
	report.add(e, ActionDelete, nil)
	log.Debug().Str("path", rel).Msg("removed")
	return true
}

// Decrypt makes the plaintext side match the encrypted side.
//
// Added and modified files are decrypted and written atomically, plaintext
// files with no encrypted counterpart are deleted. Since that discards local
// edits, it only happens with opts.Force: otherwise Decrypt refuses with
// ErrLocalChanges and leaves the vault untouched, and the CLI's -f and -i
// flags are the two ways to proceed. Dry runs are never refused. Unreadable entries are skipped and reported while the
// remaining files are processed.
func (s *Service) Decrypt(ctx context.Context, v vault.Vault, secret *crypto.Secret, opts Options) (*Report, error) {
	codec, err := crypto.NewCodec(secret)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := s.log.WithVault(v.Root)

	var idx *storage.Storage
	if !opts.DryRun {
		if idx, err = lockIndex(v); err != nil {
			return nil, err
		}
		defer idx.Close()
	}

	sd, err := openSides(v)
	if err != nil {
		return nil, err
	}
	defer sd.Close()

	result, err := s.differ(codec, log).DiffRoots(ctx, sd.plain, sd.enc, diff.EncryptedIsSource)
	if err != nil {
		return nil, fmt.Errorf("failed to compare %s: %w", v.Root, err)
	}

	if !opts.Force && !opts.DryRun {
		counts := result.Counts()
		if counts[diff.Modified] > 0 || counts[diff.Removed] > 0 {
			return nil, fmt.Errorf("%w: %d modified, %d only in plaintext (use force to overwrite)",
				derrors.ErrLocalChanges, counts[diff.Modified], counts[diff.Removed])
		}
	}

	report := newReport(v, OpDecrypt, opts.DryRun)
	sync := newIndexSync(result)

	var runErr error
	for _, e := range result.Entries {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		switch e.Kind {
		case diff.Unchanged:
			report.add(e, ActionNone, nil)
			sync.keep(e.EncryptedPath, e.EncryptedFingerprint, e.EncryptedSize)

		case diff.Added, diff.Modified:
			if s.decryptEntry(sd, codec, e, opts, report, log) {
				sync.keep(e.EncryptedPath, e.EncryptedFingerprint, e.EncryptedSize)
			}

		case diff.Removed:
			s.removeEntry(e, e.Path, sd.plain.Remove, opts, report, log)

		case diff.Unreadable:
			log.Warn().Str("path", e.Path).Err(e.Err).Msg("skipping unreadable entry")
			report.add(e, ActionSkip, e.Err)
		}
	}

	if idx != nil {
		if err := sync.apply(idx); err != nil {
			return report, fmt.Errorf("failed to update index: %w", err)
		}
	}

	logSummary(log, report)
	if runErr != nil {
		return report, runErr
	}
	return report, nil
}

func (s *Service) decryptEntry(sd *sides, codec *crypto.Codec, e diff.Entry, opts Options, report *Report, log *logger.Logger) bool {
	if opts.DryRun {
		report.add(e, ActionWrite, nil)
		return false
	}

	// Files only on the encrypted side are first opened here, so a bad
	// ciphertext is reported as unreadable like any other.
	sealed, err := sd.enc.ReadFile(e.EncryptedPath)
	if err == nil {
		var plaintext []byte
		plaintext, err = codec.Decrypt(sealed)
		if err == nil {
			defer crypto.ClearBytes(plaintext)
			return s.writePlain(sd, e, plaintext, report, log)
		}
	}
	e.Kind = diff.Unreadable
	e.Err = &derrors.UnreadableEntryError{Path: e.Path, Err: err}
	log.Warn().Str("path", e.Path).Err(err).Msg("skipping unreadable entry")
	report.add(e, ActionSkip, e.Err)
	return false
}

func (s *Service) writePlain(sd *sides, e diff.Entry, plaintext []byte, report *Report, log *logger.Logger) bool {
	if err := sd.plain.WriteFileAtomic(e.Path, plaintext, PlainFilePerm); err != nil {
		report.add(e, ActionFailed, err)
		log.Error().Str("path", e.Path).Err(err).Msg("write failed")
		return false
	}

	report.add(e, ActionWrite, nil)
	log.Debug().Str("path", e.Path).Stringer("kind", e.Kind).Msg("decrypted")
	return true
}

func logSummary(log *logger.Logger, r *Report) {
	counts := r.Counts()
	log.Info().
		Str("op", string(r.Operation)).
		Bool("dry_run", r.DryRun).
		Int("added", counts[diff.Added]).
		Int("modified", counts[diff.Modified]).
		Int("removed", counts[diff.Removed]).
		Int("unchanged", counts[diff.Unchanged]).
		Int("unreadable", counts[diff.Unreadable]).
		Msg("vault processed")
}
