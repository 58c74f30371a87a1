package diff

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/illarion/datavault/internal/crypto"
	derrors "github.com/illarion/datavault/internal/errors"
	"github.com/illarion/datavault/internal/logger"
	"github.com/illarion/datavault/internal/pathmap"
	"github.com/illarion/datavault/internal/security"
	"github.com/illarion/datavault/internal/vault"
)

// Differ computes vault diffs.
type Differ struct {
	mapper *pathmap.Mapper
	codec  *crypto.Codec
	log    *logger.Logger
}

// NewDiffer returns a Differ. The codec is required to classify files
// present on both sides.
func NewDiffer(mapper *pathmap.Mapper, codec *crypto.Codec, log *logger.Logger) *Differ {
	return &Differ{mapper: mapper, codec: codec, log: logger.OrNop(log)}
}

// Fingerprint returns the xxhash64 hex digest of data.
func Fingerprint(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// Diff opens both sides of v and diffs them.
func (d *Differ) Diff(ctx context.Context, v vault.Vault, dir Direction) (*Result, error) {
	plain, err := security.Open(v.PlainPath())
	if err != nil {
		return nil, err
	}
	defer plain.Close()

	enc, err := security.Open(v.EncryptedPath())
	if err != nil {
		return nil, err
	}
	defer enc.Close()

	return d.DiffRoots(ctx, plain, enc, dir)
}

// DiffRoots diffs already opened sides. The context is checked between files.
func (d *Differ) DiffRoots(ctx context.Context, plain, enc *security.Root, dir Direction) (*Result, error) {
	if d.codec == nil {
		return nil, derrors.ErrMissingSecret
	}

	plainFiles, err := plain.Files()
	if err != nil {
		return nil, err
	}
	encFiles, err := enc.Files()
	if err != nil {
		return nil, err
	}

	entries := make(map[string]*Entry)
	for _, p := range plainFiles {
		encRel, err := d.mapper.ToEncrypted(p)
		if err != nil {
			continue
		}
		entries[p] = &Entry{Path: p, EncryptedPath: encRel, InPlain: true}
	}
	for _, e := range encFiles {
		p, err := d.mapper.ToPlain(e)
		if err != nil {
			d.log.Debug().Str("path", e).Msg("skipping unmappable encrypted file")
			continue
		}
		if entry, ok := entries[p]; ok {
			entry.InEncrypted = true
			continue
		}
		entries[p] = &Entry{Path: p, EncryptedPath: e, InEncrypted: true}
	}

	result := &Result{Root: plain.Dir(), Direction: dir, Entries: make([]Entry, 0, len(entries))}
	for _, entry := range entries {
		result.Entries = append(result.Entries, *entry)
	}
	result.sort()

	for i := range result.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d.classify(&result.Entries[i], plain, enc, dir)
	}
	return result, nil
}

func (d *Differ) classify(e *Entry, plain, enc *security.Root, dir Direction) {
	var plainData []byte
	if e.InPlain {
		data, err := plain.ReadFile(e.Path)
		if err != nil {
			d.unreadable(e, err)
			return
		}
		plainData = data
		e.PlainFingerprint = Fingerprint(data)
		defer crypto.ClearBytes(plainData)
	}

	var sealed []byte
	if e.InEncrypted {
		data, err := enc.ReadFile(e.EncryptedPath)
		if err != nil {
			d.unreadable(e, err)
			return
		}
		sealed = data
		e.EncryptedFingerprint = Fingerprint(data)
		e.EncryptedSize = int64(len(data))
	}

	switch {
	case e.InPlain && !e.InEncrypted:
		e.Kind = sourceOnly(dir, PlaintextIsSource)
	case e.InEncrypted && !e.InPlain:
		e.Kind = sourceOnly(dir, EncryptedIsSource)
	default:
		opened, err := d.codec.Decrypt(sealed)
		if err != nil {
			d.unreadable(e, err)
			return
		}
		if Fingerprint(opened) == e.PlainFingerprint && bytes.Equal(opened, plainData) {
			e.Kind = Unchanged
		} else {
			e.Kind = Modified
		}
		crypto.ClearBytes(opened)
	}

	d.log.Debug().Str("path", e.Path).Stringer("kind", e.Kind).Msg("classified")
}

// sourceOnly classifies a file that exists on one side only.
func sourceOnly(dir, side Direction) Kind {
	if dir == side {
		return Added
	}
	return Removed
}

func (d *Differ) unreadable(e *Entry, err error) {
	e.Kind = Unreadable
	e.Err = &derrors.UnreadableEntryError{Path: e.Path, Err: err}
	d.log.Debug().Str("path", e.Path).Err(err).Msg("unreadable")
}
