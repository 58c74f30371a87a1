package errors

import (
	"errors"
	"fmt"
)

// Vault errors indicate problems locating or laying out a vault.
var (
	// ErrNoVaultFound indicates discovery found no vault under the search path.
	ErrNoVaultFound = errors.New("no vault found")

	// ErrVaultExists indicates a vault cannot be created because the path is taken.
	ErrVaultExists = errors.New("a file already exists at that path")

	// ErrVaultBusy indicates another process holds the vault index lock.
	ErrVaultBusy = errors.New("vault is in use by another process")

	// ErrLocalChanges indicates decrypting would overwrite or delete plaintext
	// files that differ from the encrypted side.
	ErrLocalChanges = errors.New("plaintext side has changes that would be overwritten")
)

// Secret errors indicate missing or malformed key material.
var (
	// ErrMissingSecret indicates no secret was supplied for an operation that needs one.
	ErrMissingSecret = errors.New("secret is not set")

	// ErrInvalidSecret indicates the secret string is not valid key material.
	ErrInvalidSecret = errors.New("invalid secret")
)

// Crypto errors indicate a ciphertext could not be opened.
var (
	// ErrAuthentication indicates a wrong key or a tampered ciphertext.
	ErrAuthentication = errors.New("authentication failed")

	// ErrFormat indicates the bytes are not a datavault ciphertext container.
	ErrFormat = errors.New("malformed ciphertext")
)

// ErrUnmappable indicates a path has no counterpart on the other side of a vault.
var ErrUnmappable = errors.New("path is not mappable")

// UnreadableEntryError reports a single vault entry that could not be read
// or decrypted. It is collected into reports rather than aborting a run.
type UnreadableEntryError struct {
	Path string
	Err  error
}

func (e *UnreadableEntryError) Error() string {
	return fmt.Sprintf("%s: unreadable: %v", e.Path, e.Err)
}

func (e *UnreadableEntryError) Unwrap() error {
	return e.Err
}
