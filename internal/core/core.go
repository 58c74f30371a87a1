package core

import (
	"errors"
	"fmt"
	"os"

	"github.com/illarion/datavault/internal/crypto"
	"github.com/illarion/datavault/internal/diff"
	"github.com/illarion/datavault/internal/logger"
	"github.com/illarion/datavault/internal/pathmap"
	"github.com/illarion/datavault/internal/security"
	"github.com/illarion/datavault/internal/storage"
	"github.com/illarion/datavault/internal/vault"
)

const (
	PlainFilePerm     = 0600 // plaintext side: owner rw only
	EncryptedFilePerm = 0644 // encrypted side is meant to be committed
)

// Options controls Encrypt and Decrypt.
type Options struct {
	// Force encrypts over unreadable ciphertexts, or lets decrypt overwrite
	// and delete plaintext files that differ from the encrypted side.
	Force bool
	// DryRun computes the report without writing anything.
	DryRun bool
}

// Service runs vault operations.
type Service struct {
	mapper *pathmap.Mapper
	log    *logger.Logger
}

// New creates a Service. A nil mapper maps every path except the
// placeholder file.
func New(mapper *pathmap.Mapper, log *logger.Logger) (*Service, error) {
	if mapper == nil {
		m, err := pathmap.New(nil)
		if err != nil {
			return nil, err
		}
		mapper = m
	}
	return &Service{mapper: mapper, log: logger.OrNop(log)}, nil
}

// sides holds both opened sides of a vault.
type sides struct {
	plain *security.Root
	enc   *security.Root
}

func openSides(v vault.Vault) (*sides, error) {
	plain, err := security.Open(v.PlainPath())
	if err != nil {
		return nil, fmt.Errorf("cannot open plaintext side: %w", err)
	}
	enc, err := security.Open(v.EncryptedPath())
	if err != nil {
		plain.Close()
		return nil, fmt.Errorf("cannot open encrypted side: %w", err)
	}
	return &sides{plain: plain, enc: enc}, nil
}

func (s *sides) Close() error {
	return errors.Join(s.plain.Close(), s.enc.Close())
}

// lockIndex opens the vault index for writing, creating it when missing.
// Holding it keeps a second invocation on the same vault out.
func lockIndex(v vault.Vault) (*storage.Storage, error) {
	return storage.Open(v.IndexPath())
}

// peekIndex opens an existing index read-only, or returns nil when the vault
// has none yet.
func peekIndex(v vault.Vault) (*storage.Storage, error) {
	if !indexExists(v) {
		return nil, nil
	}
	return storage.OpenReadOnly(v.IndexPath())
}

func indexExists(v vault.Vault) bool {
	_, err := os.Stat(v.IndexPath())
	return err == nil
}

func (s *Service) differ(codec *crypto.Codec, log *logger.Logger) *diff.Differ {
	return diff.NewDiffer(s.mapper, codec, log)
}
