package crypto

import (
	"bytes"
	"crypto/rand"
	"fmt"

	derrors "github.com/illarion/datavault/internal/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	Magic         = "DVLT"
	FormatVersion = byte(1)
	HeaderSize    = len(Magic) + 1
	NonceSize     = chacha20poly1305.NonceSizeX // 24
	TagSize       = chacha20poly1305.Overhead   // 16
)

// Codec provides authenticated encryption of single payloads.
type Codec struct {
	secret *Secret
}

// NewCodec creates a codec bound to the given secret.
func NewCodec(secret *Secret) (*Codec, error) {
	if secret == nil {
		return nil, derrors.ErrMissingSecret
	}
	if len(secret.key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes", derrors.ErrInvalidSecret, KeySize)
	}
	return &Codec{secret: secret}, nil
}

func header() []byte {
	h := make([]byte, 0, HeaderSize)
	h = append(h, Magic...)
	return append(h, FormatVersion)
}

// Encrypt seals plaintext with a fresh random nonce.
func (c *Codec) Encrypt(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(c.secret.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	hdr := header()
	out := make([]byte, HeaderSize+NonceSize, HeaderSize+NonceSize+len(plaintext)+TagSize)
	copy(out, hdr)

	nonce := out[HeaderSize:]
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return aead.Seal(out, nonce, plaintext, hdr), nil
}

// Decrypt opens a container produced by Encrypt.
// It returns ErrFormat when the bytes are not a container and
// ErrAuthentication when the key is wrong or the data was altered.
func (c *Codec) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < HeaderSize+NonceSize+TagSize {
		return nil, fmt.Errorf("%w: %d bytes is too short", derrors.ErrFormat, len(ciphertext))
	}
	hdr := ciphertext[:HeaderSize]
	if !bytes.Equal(hdr[:len(Magic)], []byte(Magic)) {
		return nil, fmt.Errorf("%w: bad magic", derrors.ErrFormat)
	}
	if hdr[len(Magic)] != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", derrors.ErrFormat, hdr[len(Magic)])
	}

	aead, err := chacha20poly1305.NewX(c.secret.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce := ciphertext[HeaderSize : HeaderSize+NonceSize]
	plaintext, err := aead.Open(nil, nonce, ciphertext[HeaderSize+NonceSize:], hdr)
	if err != nil {
		return nil, derrors.ErrAuthentication
	}

	return plaintext, nil
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
