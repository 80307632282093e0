package privilege

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigitkabak/aperium/internal/configs"
	aerrors "github.com/yigitkabak/aperium/internal/errors"
	logger "github.com/yigitkabak/aperium/internal/logging"
)

func direct() *Executor {
	return &Executor{
		UseSudo: false,
		Stdin:   &bytes.Buffer{},
		Stdout:  &bytes.Buffer{},
		Stderr:  &bytes.Buffer{},
		Log:     logger.Logger{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}},
	}
}

func TestNewDisablesSudoInTermux(t *testing.T) {
	t.Setenv("TERMUX_VERSION", "0.118")

	e := New(&configs.Settings{UseSudo: true}, logger.Logger{Out: &bytes.Buffer{}})
	assert.False(t, e.UseSudo)
}

func TestNewHonoursConfig(t *testing.T) {
	os.Unsetenv("TERMUX_VERSION")

	e := New(&configs.Settings{UseSudo: false}, logger.Logger{})
	assert.False(t, e.UseSudo)
}

func TestCommandWrapping(t *testing.T) {
	ctx := context.Background()
	e := &Executor{UseSudo: true}

	assert.Equal(t, []string{"sudo", "mkdir", "-p", "/etc/nixos/x"}, e.Command(ctx, "mkdir", "-p", "/etc/nixos/x").Args)
	assert.Equal(t, []string{"sudo", "-E", "nixos-rebuild", "switch"}, e.CommandEnv(ctx, "nixos-rebuild", "switch").Args)

	e.UseSudo = false
	assert.Equal(t, []string{"mkdir", "-p", "/tmp/x"}, e.Command(ctx, "mkdir", "-p", "/tmp/x").Args)
	assert.Equal(t, []string{"nixos-rebuild", "switch"}, e.CommandEnv(ctx, "nixos-rebuild", "switch").Args)
}

func TestEnsureWithoutSudo(t *testing.T) {
	e := direct()
	notices := 0
	e.Notice = func() { notices++ }

	assert.NoError(t, e.Ensure(context.Background()))
	assert.Zero(t, notices)
}

func TestEnsureAsksOnce(t *testing.T) {
	e := direct()
	e.UseSudo = true
	notices := 0
	e.Notice = func() { notices++ }
	var calls [][]string
	e.run = func(cmd *exec.Cmd) error {
		calls = append(calls, cmd.Args)
		return nil
	}
	ctx := context.Background()

	require.NoError(t, e.Ensure(ctx))
	require.NoError(t, e.Ensure(ctx))
	assert.Equal(t, 1, notices)
	assert.Equal(t, [][]string{{"sudo", "-v"}}, calls)
}

func TestEnsureDenied(t *testing.T) {
	e := direct()
	e.UseSudo = true
	e.run = func(*exec.Cmd) error { return errors.New("incorrect password") }

	err := e.Ensure(context.Background())
	assert.True(t, errors.Is(err, aerrors.ErrPrivilegeDenied), "got %v", err)
}

func TestRunClassifiesErrors(t *testing.T) {
	ctx := context.Background()
	e := direct()

	require.NoError(t, e.Run(ctx, "sh", "-c", "exit 0"))

	err := e.Run(ctx, "sh", "-c", "exit 3")
	assert.True(t, errors.Is(err, aerrors.ErrNonZeroExit), "got %v", err)
	assert.Contains(t, err.Error(), "code 3")

	err = e.Run(ctx, "aperium-command-that-does-not-exist")
	assert.True(t, errors.Is(err, aerrors.ErrSpawnFailed), "got %v", err)
}

func TestRunUsesExecutorStreams(t *testing.T) {
	var out bytes.Buffer
	e := direct()
	e.Stdout = &out

	require.NoError(t, e.Run(context.Background(), "sh", "-c", "echo hello"))
	assert.Equal(t, "hello\n", out.String())
}

func TestDirectFileOperations(t *testing.T) {
	ctx := context.Background()
	e := direct()
	dir := t.TempDir()

	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, e.MkdirAll(ctx, nested))
	assert.DirExists(t, nested)

	target := filepath.Join(nested, "record.json")
	require.NoError(t, e.WriteFile(ctx, target, []byte("first"), 0644))
	require.NoError(t, e.WriteFile(ctx, target, []byte("second"), 0644))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	copyPath := filepath.Join(dir, "copy.json")
	require.NoError(t, e.Copy(ctx, target, copyPath))
	data, err = os.ReadFile(copyPath)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	require.NoError(t, e.Remove(ctx, copyPath))
	assert.NoFileExists(t, copyPath)
	assert.NoError(t, e.Remove(ctx, copyPath), "removing a missing file is not an error")

	entries, err := os.ReadDir(nested)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files should remain")
}

func TestCopyMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := direct().Copy(context.Background(), filepath.Join(dir, "missing"), filepath.Join(dir, "dst"))
	assert.Error(t, err)
}

func TestWriteFileWithSudoInstallsAsRoot(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("TMPDIR", tmpDir)

	var (
		args     []string
		tempData string
	)
	e := direct()
	e.UseSudo = true
	e.run = func(cmd *exec.Cmd) error {
		args = cmd.Args
		data, err := os.ReadFile(cmd.Args[len(cmd.Args)-2])
		require.NoError(t, err)
		tempData = string(data)
		return nil
	}

	target := "/etc/nixos/configuration.nix"
	require.NoError(t, e.WriteFile(context.Background(), target, []byte("{ }\n"), 0644))

	require.Len(t, args, 10)
	assert.Equal(t, []string{"sudo", "install", "-m", "0644", "-o", "root", "-g", "root"}, args[:8])
	assert.Equal(t, tmpDir, filepath.Dir(args[8]))
	assert.Equal(t, target, args[9])
	assert.Equal(t, "{ }\n", tempData)

	_, err := os.Stat(args[8])
	assert.True(t, os.IsNotExist(err), "temp file should be removed after install")
}

func TestWriteFileWithSudoFailure(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	e := direct()
	e.UseSudo = true
	e.run = func(cmd *exec.Cmd) error {
		return exec.Command("sh", "-c", "exit 1").Run()
	}

	err := e.WriteFile(context.Background(), "/etc/nixos/configuration.nix", []byte("x"), 0644)
	assert.True(t, errors.Is(err, aerrors.ErrNonZeroExit), "got %v", err)

	entries, readErr := os.ReadDir(os.TempDir())
	require.NoError(t, readErr)
	assert.Empty(t, entries, "temp file should be removed when install fails")
}
