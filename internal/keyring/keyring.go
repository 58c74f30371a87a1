// Package keyring stores vault secrets in the OS keyring, keyed by the
// vault ID from the vault index.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "datavault"

// ErrNotFound is returned when no secret is stored for a vault.
var ErrNotFound = keyring.ErrNotFound

// SaveSecret stores a vault secret in the OS keyring
func SaveSecret(vaultID, secret string) error {
	if err := keyring.Set(serviceName, vaultID, secret); err != nil {
		return fmt.Errorf("failed to save secret to keyring: %w", err)
	}
	return nil
}

// GetSecret retrieves a vault secret from the OS keyring
func GetSecret(vaultID string) (string, error) {
	return keyring.Get(serviceName, vaultID)
}

// DeleteSecret removes a vault secret from the OS keyring.
// Deleting a missing entry is not an error.
func DeleteSecret(vaultID string) error {
	if err := keyring.Delete(serviceName, vaultID); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete secret from keyring: %w", err)
	}
	return nil
}

// HasSecret checks if a secret is stored for the vault
func HasSecret(vaultID string) bool {
	_, err := keyring.Get(serviceName, vaultID)
	return err == nil
}
