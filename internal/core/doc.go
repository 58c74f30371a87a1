// Package core implements the vault operations.
//
// Operations:
//   - Inspect: preview what encrypt would do, without touching files
//   - Encrypt: bring the encrypted side in line with the plaintext side
//   - Decrypt: bring the plaintext side in line with the encrypted side
//   - Clear / ClearEncrypted: empty one side, leaving the other untouched
//   - Status: compare the encrypted side with the vault index (no secret)
//
// Each operation works on one vault and returns a Report. RunBatch applies an
// operation to several vaults in order and collects the results.
//
// Every file is written atomically, but a pass over many files is not a
// transaction: an interrupted run leaves each file either old or new.
package core
