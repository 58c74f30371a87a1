// Package storage provides the BBolt vault index for datavault.
//
// The index lives in vault.db at the vault root and is committed alongside
// the encrypted side. It uses two buckets:
//   - config: format version, timestamps and the vault ID
//   - index: one record per encrypted file written by the last sync
//
// Records describe ciphertext only (size, xxhash fingerprint, sync time),
// so the index reveals nothing about plaintext content. It lets status
// report changes without the secret.
//
// BBolt provides ACID transactions and a file lock; Open fails with
// ErrVaultBusy when another process holds the vault.
package storage
