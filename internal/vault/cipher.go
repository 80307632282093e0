package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	aerrors "github.com/yigitkabak/aperium/internal/errors"
)

// Encrypt encrypts plaintext with AES-256-CBC under key and returns
// hex(iv):hex(ciphertext). Every call uses a fresh IV.
func Encrypt(plaintext []byte, key []byte) (string, error) {
	block, err := newBlock(key)
	if err != nil {
		return "", err
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	// Copy so padding never writes into the caller's backing array.
	padded := pkcs7Pad(append([]byte(nil), plaintext...), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. A token that is not hex(iv):hex(ciphertext)
// returns ErrMalformedToken; a wrong key or damaged ciphertext usually
// surfaces as ErrDecryptionFailed.
func Decrypt(token string, key []byte) ([]byte, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}

	ivHex, ctHex, ok := strings.Cut(token, ":")
	if !ok {
		return nil, fmt.Errorf("%w: missing ':' separator", aerrors.ErrMalformedToken)
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return nil, fmt.Errorf("%w: iv is not hex", aerrors.ErrMalformedToken)
	}
	if len(iv) != IVSize {
		return nil, fmt.Errorf("%w: iv is %d bytes, want %d", aerrors.ErrMalformedToken, len(iv), IVSize)
	}

	ciphertext, err := hex.DecodeString(ctHex)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext is not hex", aerrors.ErrMalformedToken)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not a positive multiple of %d",
			aerrors.ErrDecryptionFailed, len(ciphertext), aes.BlockSize)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return pkcs7Unpad(plaintext, aes.BlockSize)
}

func newBlock(key []byte) (cipher.Block, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", aerrors.ErrInvalidKeyLength, len(key), KeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return block, nil
}
