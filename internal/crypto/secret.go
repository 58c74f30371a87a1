package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	derrors "github.com/illarion/datavault/internal/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the raw secret length in bytes.
const KeySize = chacha20poly1305.KeySize

// Secret holds raw key material for one invocation. It is never persisted.
type Secret struct {
	key []byte
}

// ParseSecret decodes a URL-safe base64 secret string into key material.
func ParseSecret(s string) (*Secret, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, derrors.ErrMissingSecret
	}

	key, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: not url-safe base64", derrors.ErrInvalidSecret)
	}
	if len(key) != KeySize {
		ClearBytes(key)
		return nil, fmt.Errorf("%w: decoded to %d bytes, want %d", derrors.ErrInvalidSecret, len(key), KeySize)
	}

	return &Secret{key: key}, nil
}

// GenerateSecret returns a fresh random secret string suitable for ParseSecret.
func GenerateSecret() (string, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	defer ClearBytes(key)

	return base64.URLEncoding.EncodeToString(key), nil
}

// Destroy clears the key from memory
func (s *Secret) Destroy() {
	if s != nil {
		ClearBytes(s.key)
	}
}

// Encode returns the secret in the form accepted by ParseSecret, for
// storing it in the OS keyring.
func (s *Secret) Encode() string {
	return base64.URLEncoding.EncodeToString(s.key)
}
