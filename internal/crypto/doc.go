// Package crypto provides the datavault encryption codec and secrets.
//
// Encryption uses XChaCha20-Poly1305 with:
//   - 32-byte key decoded from the vault secret
//   - 24-byte random nonce per encryption operation
//   - the container header bound as associated data
//
// Container layout:
//
//	"DVLT" | version (1 byte) | nonce (24 bytes) | ciphertext+tag
//
// Secrets are 32 random bytes, URL-safe base64 encoded with padding.
//
// Memory safety:
//   - Use ClearBytes() to zero sensitive data after use
//   - Call Secret.Destroy() when done with the key
package crypto
