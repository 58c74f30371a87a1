// Package errors provides typed error values for datavault.
//
// Sentinel errors let callers branch with errors.Is() instead of matching
// strings. Internal packages wrap them with context:
//
//	return fmt.Errorf("decrypting %s: %w", path, errors.ErrAuthentication)
//
// The CLI layer maps them to user-facing messages.
//
// # Error Categories
//
//   - Vault errors: discovery and layout (ErrNoVaultFound, ErrVaultExists)
//   - Secret errors: key material (ErrMissingSecret, ErrInvalidSecret)
//   - Crypto errors: ciphertext problems (ErrAuthentication, ErrFormat)
//   - Entry errors: per-file, non-fatal (UnreadableEntryError)
package errors
