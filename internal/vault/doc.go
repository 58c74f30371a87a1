// Package vault describes the on-disk vault layout and finds vaults.
//
// A vault root holds:
//   - decrypted/  the plaintext side, never committed (contains .keep)
//   - encrypted/  the encrypted side, safe to commit
//   - vault.db    the vault index (see package storage)
//   - .gitignore  keeps decrypted/ out of version control
//
// Discover treats any directory with both sides as a vault; the index and
// .gitignore are optional.
package vault
