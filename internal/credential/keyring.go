package credential

import (
	"fmt"
	"os"

	"github.com/99designs/keyring"
)

const serviceName = "modulesync"

// CanvasTokenKey is the keyring entry holding the Canvas access token.
const CanvasTokenKey = "canvas-token"

// TokenEnv overrides the keyring entry when set.
const TokenEnv = "CANVAS_TOKEN"

// ErrNotFound is returned, wrapped, when a key has no entry.
var ErrNotFound = keyring.ErrKeyNotFound

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/modulesync/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("modulesync-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key from the system keyring.
func Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// CanvasToken returns the access token from the environment or, failing
// that, from the keyring.
func CanvasToken() (string, error) {
	if token := os.Getenv(TokenEnv); token != "" {
		return token, nil
	}
	token, err := Get(CanvasTokenKey)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", fmt.Errorf("credential %q is empty", CanvasTokenKey)
	}
	return token, nil
}
