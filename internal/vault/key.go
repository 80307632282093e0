package vault

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	aerrors "github.com/yigitkabak/aperium/internal/errors"
	logger "github.com/yigitkabak/aperium/internal/logging"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// IVSize is the AES block and IV length in bytes.
	IVSize = 16
)

// GenerateKey returns KeySize random bytes from crypto/rand.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// LoadOrCreateKey reads the hex key at path. A missing key is generated and
// saved. A key that cannot be read or decoded is replaced after a warning.
func LoadOrCreateKey(path string, log logger.Logger) ([]byte, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		key, decodeErr := hex.DecodeString(strings.TrimSpace(string(data)))
		if decodeErr == nil && len(key) == KeySize {
			log.Debugf("Loaded encryption key from %s", path)
			return key, nil
		}
		log.Warnf("Encryption key at %s is corrupt, generating a new key. Packages created with the old key may no longer decrypt.", path)
	case os.IsNotExist(err):
		log.Infof("No encryption key found, creating one at %s", path)
	default:
		log.Warnf("Could not read encryption key at %s (%v), generating a new key. Packages created with the old key may no longer decrypt.", path, err)
	}

	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := SaveKey(path, key); err != nil {
		return nil, err
	}
	return key, nil
}

// SaveKey writes key as hex to path with mode 0600, creating the parent
// directory with mode 0700.
func SaveKey(path string, key []byte) error {
	if len(key) != KeySize {
		return fmt.Errorf("%w: got %d bytes", aerrors.ErrInvalidKeyLength, len(key))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(key)), 0600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set key file permissions: %w", err)
	}
	return nil
}
