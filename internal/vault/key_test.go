package vault

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logger "github.com/yigitkabak/aperium/internal/logging"
)

func quietLogger(errOut *bytes.Buffer) logger.Logger {
	color.NoColor = true
	return logger.Logger{Out: &bytes.Buffer{}, Err: errOut}
}

func TestLoadOrCreateKeyCreatesKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "key.enc")
	var errOut bytes.Buffer

	key, err := LoadOrCreateKey(path, quietLogger(&errOut))
	require.NoError(t, err)
	assert.Len(t, key, KeySize)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(key), string(data))
	assert.Empty(t, errOut.String(), "first-run key creation should not warn")
}

func TestLoadOrCreateKeyReusesKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.enc")
	var errOut bytes.Buffer

	first, err := LoadOrCreateKey(path, quietLogger(&errOut))
	require.NoError(t, err)
	second, err := LoadOrCreateKey(path, quietLogger(&errOut))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLoadOrCreateKeyToleratesWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.enc")
	want := bytes.Repeat([]byte{0x42}, KeySize)
	require.NoError(t, os.WriteFile(path, []byte(hex.EncodeToString(want)+"\n"), 0600))

	var errOut bytes.Buffer
	got, err := LoadOrCreateKey(path, quietLogger(&errOut))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadOrCreateKeyRegeneratesCorruptKey(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"NotHex", "this is not a key"},
		{"WrongLength", hex.EncodeToString([]byte("short"))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "key.enc")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0644))

			var errOut bytes.Buffer
			key, err := LoadOrCreateKey(path, quietLogger(&errOut))
			require.NoError(t, err)
			assert.Len(t, key, KeySize)
			assert.True(t, strings.Contains(errOut.String(), "may no longer decrypt"), "expected a warning, got %q", errOut.String())

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
		})
	}
}

func TestSaveKeyRejectsWrongLength(t *testing.T) {
	err := SaveKey(filepath.Join(t.TempDir(), "key.enc"), []byte("short"))
	assert.Error(t, err)
}
