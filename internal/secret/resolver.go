// Package secret finds the vault secret for a command invocation.
//
// Sources are tried in order: the --secret flag, DATAVAULT_SECRET, the OS
// keyring entry for the vault, and finally an interactive prompt when the
// user asked for one and stdin is a terminal.
package secret

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/illarion/datavault/internal/crypto"
	"github.com/illarion/datavault/internal/keyring"
	"github.com/illarion/datavault/internal/logger"
	"github.com/illarion/datavault/internal/storage"
	"github.com/illarion/datavault/internal/vault"
)

// Source names where a secret came from.
type Source string

const (
	SourceNone    Source = ""
	SourceFlag    Source = "flag"
	SourceEnv     Source = "env"
	SourceKeyring Source = "keyring"
	SourcePrompt  Source = "prompt"
)

// Resolver resolves secrets. The zero value only consults Flag and Env.
type Resolver struct {
	Flag       string
	Env        string
	UseKeyring bool
	Ask        bool

	// Prompt reads a secret interactively; it defaults to ReadSecret.
	Prompt func(prompt string) ([]byte, error)
	// Interactive reports whether prompting is possible; it defaults to
	// checking that stdin is a terminal.
	Interactive func() bool

	Log *logger.Logger

	prompted string
}

// Resolve returns the secret for v, or nil with SourceNone when no source
// has one. A value that is present but malformed is an error.
func (r *Resolver) Resolve(v vault.Vault) (*crypto.Secret, Source, error) {
	log := logger.OrNop(r.Log)

	if s := strings.TrimSpace(r.Flag); s != "" {
		return parse(s, SourceFlag)
	}
	if s := strings.TrimSpace(r.Env); s != "" {
		return parse(s, SourceEnv)
	}

	if r.UseKeyring {
		if id, err := VaultID(v); err == nil {
			s, err := keyring.GetSecret(id)
			if err == nil && s != "" {
				log.Debug().Str("vault", v.Root).Msg("using secret from keyring")
				return parse(s, SourceKeyring)
			}
			if err != nil && !errors.Is(err, keyring.ErrNotFound) {
				log.Debug().Err(err).Msg("keyring unavailable")
			}
		}
	}

	if r.Ask && r.interactive() {
		if r.prompted == "" {
			data, err := r.prompt(fmt.Sprintf("Secret for %s: ", v.Root))
			if err != nil {
				return nil, SourceNone, err
			}
			r.prompted = strings.TrimSpace(string(data))
			crypto.ClearBytes(data)
		}
		if r.prompted != "" {
			return parse(r.prompted, SourcePrompt)
		}
	}

	return nil, SourceNone, nil
}

func parse(s string, src Source) (*crypto.Secret, Source, error) {
	secret, err := crypto.ParseSecret(s)
	if err != nil {
		return nil, src, fmt.Errorf("secret from %s: %w", src, err)
	}
	return secret, src, nil
}

func (r *Resolver) interactive() bool {
	if r.Interactive != nil {
		return r.Interactive()
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (r *Resolver) prompt(p string) ([]byte, error) {
	if r.Prompt != nil {
		return r.Prompt(p)
	}
	return ReadSecret(p)
}

// ReadSecret reads a secret from the terminal without echoing
func ReadSecret(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}
	return secret, nil
}

// VaultID reads the vault ID from the vault index.
func VaultID(v vault.Vault) (string, error) {
	if _, err := os.Stat(v.IndexPath()); err != nil {
		return "", fmt.Errorf("vault %s has no index: %w", v.Root, err)
	}
	db, err := storage.OpenReadOnly(v.IndexPath())
	if err != nil {
		return "", err
	}
	defer db.Close()
	return db.GetVaultID()
}
