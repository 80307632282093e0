package workflows

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/yigitkabak/aperium/internal/configs"
	"github.com/yigitkabak/aperium/internal/executor"
	logger "github.com/yigitkabak/aperium/internal/logging"
	"github.com/yigitkabak/aperium/internal/nixos"
	"github.com/yigitkabak/aperium/internal/pkgfile"
	"github.com/yigitkabak/aperium/internal/platform"
	"github.com/yigitkabak/aperium/internal/privilege"
	"github.com/yigitkabak/aperium/internal/registry"
	"github.com/yigitkabak/aperium/internal/vault"
)

// testEnv wires real components to temp directories with sudo disabled.
// Scripts are "run" with cat so the normalized script ends up in stdout.
type testEnv struct {
	dir      string
	key      []byte
	warnings *bytes.Buffer
	log      logger.Logger
	priv     *privilege.Executor
	registry *registry.Registry
	runner   *countingRunner
	nix      *nixos.Patcher
	osID     string
}

func newTestEnv(t *testing.T, osID string) *testEnv {
	t.Helper()
	color.NoColor = true

	dir := t.TempDir()
	key, err := vault.GenerateKey()
	require.NoError(t, err)

	original := configs.AperiumSettings
	configs.AperiumSettings = configs.DefaultSettings(dir)
	configs.AperiumSettings.HistoryFile = filepath.Join(dir, "history.jsonl")
	t.Cleanup(func() {
		configs.AperiumSettings = original
	})

	warnings := &bytes.Buffer{}
	log := logger.Logger{Out: &bytes.Buffer{}, Err: warnings}
	priv := &privilege.Executor{UseSudo: false, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}, Log: log}

	nixConfig := filepath.Join(dir, "nixos", "configuration.nix")
	require.NoError(t, os.MkdirAll(filepath.Dir(nixConfig), 0755))
	require.NoError(t, os.WriteFile(nixConfig, []byte("{ config, pkgs, ... }:\n{\n  imports = [ ./hardware-configuration.nix ];\n}\n"), 0644))

	return &testEnv{
		dir:      dir,
		key:      key,
		warnings: warnings,
		log:      log,
		priv:     priv,
		registry: &registry.Registry{Dir: filepath.Join(dir, "installed_packages"), Priv: priv, Log: log},
		runner: &countingRunner{next: &executor.Executor{
			Priv:    priv,
			Shell:   "cat",
			TempDir: t.TempDir(),
			Log:     log,
		}},
		nix: &nixos.Patcher{
			ConfigPath: nixConfig,
			ModulesDir: filepath.Join(dir, "nixos", "aperium-modules"),
			Priv:       priv,
			Confirm:    func(string) bool { return false },
			Now:        func() time.Time { return time.UnixMilli(1700000000000) },
			Log:        log,
		},
		osID: osID,
	}
}

func (e *testEnv) detector(t *testing.T) *platform.Detector {
	t.Helper()
	path := filepath.Join(t.TempDir(), "os-release")
	require.NoError(t, os.WriteFile(path, []byte("ID="+e.osID+"\n"), 0644))
	return &platform.Detector{OSReleasePath: path, Log: e.log}
}

func (e *testEnv) installOptions(t *testing.T, pkg string) InstallOptions {
	return InstallOptions{
		PackagePath: pkg,
		Key:         e.key,
		ToolVersion: "1.0.0-test",
		Detector:    e.detector(t),
		Scripts:     e.runner,
		Nix:         e.nix,
		Registry:    e.registry,
		Priv:        e.priv,
		Log:         e.log,
	}
}

func (e *testEnv) createPackage(t *testing.T, name string, scripts map[pkgfile.Platform]string) string {
	t.Helper()
	out := filepath.Join(e.dir, name+".apm")
	_, err := pkgfile.Create(out, pkgfile.Meta{Name: name}, scripts, e.key)
	require.NoError(t, err)
	return out
}

// writeDescriptor writes d as a package without going through Create, so
// tests can produce packages Create would refuse to build.
func writeDescriptor(t *testing.T, path string, d *pkgfile.Descriptor) {
	t.Helper()
	data, err := json.Marshal(d)
	require.NoError(t, err)

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create(pkgfile.DescriptorName)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}

type countingRunner struct {
	next  ScriptRunner
	calls int
}

func (c *countingRunner) Run(ctx context.Context, script, label string) (*executor.Result, error) {
	c.calls++
	return c.next.Run(ctx, script, label)
}

type countingDetector struct {
	id    string
	calls int
}

func (c *countingDetector) Detect() string {
	c.calls++
	return c.id
}
