package pkgfile

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aerrors "github.com/yigitkabak/aperium/internal/errors"
	"github.com/yigitkabak/aperium/internal/vault"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := vault.GenerateKey()
	require.NoError(t, err)
	return key
}

// writeZip builds an archive with the given entries.
func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestCreateAndLoad(t *testing.T) {
	dir := t.TempDir()
	key := testKey(t)
	out := filepath.Join(dir, "demo.apm")

	created, err := Create(out, Meta{Name: "demo"}, map[Platform]string{
		PlatformDebian: "apt install htop",
		PlatformArch:   "pacman -S htop",
		PlatformNixOS:  "   ",
	}, key)
	require.NoError(t, err)

	assert.Equal(t, DefaultVersion, created.Version)
	assert.Equal(t, DefaultDescription, created.Description)
	assert.Empty(t, created.NixOSPackagesEnc, "blank payloads are omitted")
	assert.Equal(t, vault.Hash([]byte("apt install htop")), created.DebianScriptHash)

	loaded, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, created, loaded)

	plaintext, err := Open(mustPayload(t, loaded, PlatformDebian), key)
	require.NoError(t, err)
	assert.Equal(t, "apt install htop", plaintext)
}

func TestCreateWritesOnlyDescriptor(t *testing.T) {
	out := filepath.Join(t.TempDir(), "demo.apm")
	_, err := Create(out, Meta{Name: "demo", Version: "2.0.0", Description: "tools"},
		map[Platform]string{PlatformGeneric: "echo hi"}, testKey(t))
	require.NoError(t, err)

	r, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, r.File, 1)
	assert.Equal(t, DescriptorName, r.File[0].Name)

	rc, err := r.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()

	var raw map[string]any
	require.NoError(t, json.NewDecoder(rc).Decode(&raw))
	assert.Equal(t, "demo", raw["name"])
	assert.Equal(t, "2.0.0", raw["version"])
	assert.Contains(t, raw, "genericScriptEnc")
	assert.Contains(t, raw, "genericScriptHash")
	assert.NotContains(t, raw, "debianScriptEnc")
}

func TestCreateRefusesExistingDestination(t *testing.T) {
	out := filepath.Join(t.TempDir(), "demo.apm")
	require.NoError(t, os.WriteFile(out, []byte("keep me"), 0644))

	_, err := Create(out, Meta{Name: "demo"}, nil, testKey(t))
	assert.True(t, errors.Is(err, aerrors.ErrDestinationExists), "got %v", err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestCreateValidation(t *testing.T) {
	dir := t.TempDir()
	key := testKey(t)

	_, err := Create(filepath.Join(dir, "demo.zip"), Meta{Name: "demo"}, nil, key)
	assert.True(t, errors.Is(err, aerrors.ErrInvalidExtension), "got %v", err)

	_, err = Create(filepath.Join(dir, "bad.apm"), Meta{Name: "../bad"}, nil, key)
	assert.True(t, errors.Is(err, aerrors.ErrInvalidPackageName), "got %v", err)

	_, err = Create(filepath.Join(dir, "demo.apm"), Meta{Name: "demo"}, map[Platform]string{PlatformGeneric: "x"}, []byte("short"))
	assert.True(t, errors.Is(err, aerrors.ErrInvalidKeyLength), "got %v", err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed creates must leave nothing behind")
}

func TestValidateExtension(t *testing.T) {
	tests := []struct {
		path string
		ok   bool
	}{
		{"demo.apm", true},
		{"DEMO.APM", true},
		{"legacy.apr", true},
		{"demo.zip", false},
		{"demo", false},
		{"demo.apm.bak", false},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			err := ValidateExtension(tc.path)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, aerrors.ErrInvalidExtension), "got %v", err)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.apm"))
	assert.True(t, errors.Is(err, aerrors.ErrFileNotFound), "got %v", err)

	// Extension is checked before the file system is touched.
	_, err = Load(filepath.Join(dir, "missing.txt"))
	assert.True(t, errors.Is(err, aerrors.ErrInvalidExtension), "got %v", err)

	notZip := filepath.Join(dir, "garbage.apm")
	require.NoError(t, os.WriteFile(notZip, []byte("not a zip"), 0644))
	_, err = Load(notZip)
	assert.True(t, errors.Is(err, aerrors.ErrInvalidPackage), "got %v", err)

	badJSON := filepath.Join(dir, "badjson.apm")
	writeZip(t, badJSON, map[string]string{DescriptorName: "{not json"})
	_, err = Load(badJSON)
	assert.True(t, errors.Is(err, aerrors.ErrInvalidPackage), "got %v", err)

	badName := filepath.Join(dir, "badname.apm")
	writeZip(t, badName, map[string]string{DescriptorName: `{"name":"../../etc","version":"1.0.0"}`})
	_, err = Load(badName)
	assert.True(t, errors.Is(err, aerrors.ErrInvalidPackageName), "got %v", err)
}

func TestLoadMissingDescriptorLeavesNoScratchDir(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	pkg := filepath.Join(t.TempDir(), "empty.apm")
	writeZip(t, pkg, map[string]string{"README.md": "no descriptor here"})

	_, err := Load(pkg)
	assert.True(t, errors.Is(err, aerrors.ErrInvalidPackage), "got %v", err)

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "aperium_apm_extract_"), "scratch dir %s left behind", e.Name())
	}
}

func TestLoadRejectsZipSlip(t *testing.T) {
	pkg := filepath.Join(t.TempDir(), "slip.apm")
	writeZip(t, pkg, map[string]string{
		DescriptorName:       `{"name":"slip","version":"1.0.0"}`,
		"../../escaped.txt": "owned",
	})

	_, err := Load(pkg)
	assert.True(t, errors.Is(err, aerrors.ErrInvalidPackage), "got %v", err)
}

func TestLoadLegacyExtension(t *testing.T) {
	pkg := filepath.Join(t.TempDir(), "legacy.apr")
	writeZip(t, pkg, map[string]string{DescriptorName: `{"name":"legacy","version":"0.1.0"}`})

	d, err := Load(pkg)
	require.NoError(t, err)
	assert.Equal(t, "legacy", d.Name)
	assert.Empty(t, d.Payloads())
}

func mustPayload(t *testing.T, d *Descriptor, p Platform) Payload {
	t.Helper()
	payload, ok := d.Payload(p)
	require.True(t, ok, "expected %s payload", p)
	return payload
}
