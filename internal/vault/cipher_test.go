package vault

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aerrors "github.com/yigitkabak/aperium/internal/errors"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	return key
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testKey(t)

	tests := []struct {
		name      string
		plaintext string
	}{
		{"Script", "apt install htop"},
		{"Empty", ""},
		{"ExactBlock", strings.Repeat("a", 16)},
		{"MultiLine", "#!/bin/sh\nset -e\napt install git\n"},
		{"Unicode", "echo 'merhaba dünya'"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			token, err := Encrypt([]byte(tc.plaintext), key)
			require.NoError(t, err)

			got, err := Decrypt(token, key)
			require.NoError(t, err)
			assert.Equal(t, tc.plaintext, string(got))
		})
	}
}

func TestEncryptTokenFormat(t *testing.T) {
	key := testKey(t)

	token, err := Encrypt([]byte("pacman -S git"), key)
	require.NoError(t, err)

	ivHex, ctHex, ok := strings.Cut(token, ":")
	require.True(t, ok, "token must contain ':'")
	assert.Len(t, ivHex, IVSize*2)

	ct, err := hex.DecodeString(ctHex)
	require.NoError(t, err)
	assert.Equal(t, 0, len(ct)%16)
	assert.Equal(t, strings.ToLower(token), token, "hex must be lowercase")
}

func TestEncryptUsesFreshIV(t *testing.T) {
	key := testKey(t)
	plaintext := []byte("apt install htop")

	first, err := Encrypt(plaintext, key)
	require.NoError(t, err)
	second, err := Encrypt(plaintext, key)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, strings.SplitN(first, ":", 2)[0], strings.SplitN(second, ":", 2)[0])
}

func TestEncryptDoesNotModifyInput(t *testing.T) {
	key := testKey(t)
	buf := make([]byte, 5, 64)
	copy(buf, "hello")
	backing := buf[:cap(buf)]
	before := append([]byte(nil), backing...)

	_, err := Encrypt(buf, key)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(before, backing), "Encrypt wrote into the caller's slice")
}

func TestInvalidKeyLength(t *testing.T) {
	_, err := Encrypt([]byte("x"), make([]byte, 16))
	assert.True(t, errors.Is(err, aerrors.ErrInvalidKeyLength))

	_, err = Decrypt("00:00", nil)
	assert.True(t, errors.Is(err, aerrors.ErrInvalidKeyLength))
}

func TestDecryptMalformedToken(t *testing.T) {
	key := testKey(t)
	validIV := strings.Repeat("ab", IVSize)

	tests := []struct {
		name  string
		token string
	}{
		{"NoSeparator", "deadbeef"},
		{"Empty", ""},
		{"IVNotHex", "zz" + validIV[2:] + ":00112233445566778899aabbccddeeff"},
		{"IVTooShort", "abcd:00112233445566778899aabbccddeeff"},
		{"CiphertextNotHex", validIV + ":nothex"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decrypt(tc.token, key)
			require.Error(t, err)
			assert.True(t, errors.Is(err, aerrors.ErrMalformedToken), "got %v", err)
		})
	}
}

func TestDecryptBadCiphertext(t *testing.T) {
	key := testKey(t)
	iv := strings.Repeat("00", IVSize)

	_, err := Decrypt(iv+":", key)
	assert.True(t, errors.Is(err, aerrors.ErrDecryptionFailed), "empty ciphertext: %v", err)

	_, err = Decrypt(iv+":0011", key)
	assert.True(t, errors.Is(err, aerrors.ErrDecryptionFailed), "short ciphertext: %v", err)
}

func TestDecryptWrongKey(t *testing.T) {
	token, err := Encrypt([]byte("apt install htop"), testKey(t))
	require.NoError(t, err)

	// CBC has no authentication, so a wrong key either fails on padding or
	// yields different bytes. The hash check catches the second case.
	got, err := Decrypt(token, testKey(t))
	if err != nil {
		assert.True(t, errors.Is(err, aerrors.ErrDecryptionFailed))
		return
	}
	assert.False(t, Verify(got, Hash([]byte("apt install htop"))))
}

func TestPKCS7Unpad(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    []byte
		wantErr bool
	}{
		{"OneByte", append(bytes.Repeat([]byte{'a'}, 15), 1), bytes.Repeat([]byte{'a'}, 15), false},
		{"FullBlock", bytes.Repeat([]byte{16}, 16), []byte{}, false},
		{"ZeroPadding", append(bytes.Repeat([]byte{'a'}, 15), 0), nil, true},
		{"TooLarge", append(bytes.Repeat([]byte{'a'}, 15), 17), nil, true},
		{"Inconsistent", append(bytes.Repeat([]byte{'a'}, 14), 1, 2), nil, true},
		{"Unaligned", []byte{1, 2, 3}, nil, true},
		{"Empty", nil, nil, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := pkcs7Unpad(tc.input, 16)
			if tc.wantErr {
				assert.True(t, errors.Is(err, aerrors.ErrDecryptionFailed), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
