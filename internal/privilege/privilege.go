package privilege

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/yigitkabak/aperium/internal/configs"
	aerrors "github.com/yigitkabak/aperium/internal/errors"
	logger "github.com/yigitkabak/aperium/internal/logging"
	"github.com/yigitkabak/aperium/internal/utils"
)

type Executor struct {
	UseSudo bool

	// Stdin, Stdout and Stderr are attached to interactive commands. They
	// default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Log logger.Logger

	// Notice, when set, is called once right before sudo asks for
	// credentials.
	Notice func()

	ensured bool
	// run replaces cmd.Run in tests.
	run func(cmd *exec.Cmd) error
}

// New returns an Executor that uses sudo unless cfg disables it, the process
// already runs as root, or aper runs inside Termux.
func New(cfg *configs.Settings, log logger.Logger) *Executor {
	useSudo := cfg.UseSudo
	switch {
	case utils.IsTermux():
		log.Debugf("Termux environment detected, running commands directly")
		useSudo = false
	case utils.IsRoot():
		log.Debugf("Running as root, sudo is not needed")
		useSudo = false
	}
	return &Executor{UseSudo: useSudo, Log: log}
}

// Ensure asks for sudo credentials once per Executor.
func (e *Executor) Ensure(ctx context.Context) error {
	if !e.UseSudo || e.ensured {
		return nil
	}
	e.Log.Infof("Administrator privileges are required to install packages")
	if e.Notice != nil {
		e.Notice()
	}

	cmd := exec.CommandContext(ctx, "sudo", "-v")
	e.attach(cmd)
	run := (*exec.Cmd).Run
	if e.run != nil {
		run = e.run
	}
	if err := run(cmd); err != nil {
		return fmt.Errorf("%w: %v", aerrors.ErrPrivilegeDenied, err)
	}
	e.ensured = true
	return nil
}

// Command builds name args..., prefixed with sudo when needed.
func (e *Executor) Command(ctx context.Context, name string, args ...string) *exec.Cmd {
	if !e.UseSudo {
		return exec.CommandContext(ctx, name, args...)
	}
	return exec.CommandContext(ctx, "sudo", append([]string{name}, args...)...)
}

// CommandEnv is Command with the caller's environment preserved (sudo -E).
func (e *Executor) CommandEnv(ctx context.Context, name string, args ...string) *exec.Cmd {
	if !e.UseSudo {
		return exec.CommandContext(ctx, name, args...)
	}
	return exec.CommandContext(ctx, "sudo", append([]string{"-E", name}, args...)...)
}

// Run runs name args... attached to the executor's streams.
func (e *Executor) Run(ctx context.Context, name string, args ...string) error {
	return e.RunCmd(e.Command(ctx, name, args...))
}

// RunEnv runs name args... with the environment preserved.
func (e *Executor) RunEnv(ctx context.Context, name string, args ...string) error {
	return e.RunCmd(e.CommandEnv(ctx, name, args...))
}

// RunCmd runs a command built by Command or CommandEnv attached to the
// executor's streams. Exit failures wrap ErrNonZeroExit; anything that
// prevents the command from starting wraps ErrSpawnFailed.
func (e *Executor) RunCmd(cmd *exec.Cmd) error {
	e.attach(cmd)
	e.Log.Debugf("Running %s", strings.Join(cmd.Args, " "))
	if e.run != nil {
		return Classify(cmd, e.run(cmd))
	}
	return Classify(cmd, cmd.Run())
}

// Classify maps an exec error for cmd onto the execution error sentinels.
func Classify(cmd *exec.Cmd, err error) error {
	if err == nil {
		return nil
	}
	line := strings.Join(cmd.Args, " ")
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("%w: %s exited with code %d", aerrors.ErrNonZeroExit, line, exitErr.ExitCode())
	}
	return fmt.Errorf("%w: %s: %v", aerrors.ErrSpawnFailed, line, err)
}

func (e *Executor) attach(cmd *exec.Cmd) {
	if cmd.Stdin == nil {
		cmd.Stdin = e.Stdin
		if cmd.Stdin == nil {
			cmd.Stdin = os.Stdin
		}
	}
	if cmd.Stdout == nil {
		cmd.Stdout = e.Stdout
		if cmd.Stdout == nil {
			cmd.Stdout = os.Stdout
		}
	}
	if cmd.Stderr == nil {
		cmd.Stderr = e.Stderr
		if cmd.Stderr == nil {
			cmd.Stderr = os.Stderr
		}
	}
}

// MkdirAll creates dir and its parents.
func (e *Executor) MkdirAll(ctx context.Context, dir string) error {
	if !e.UseSudo {
		return os.MkdirAll(dir, 0755)
	}
	return e.Run(ctx, "mkdir", "-p", dir)
}

// Copy copies src to dst, replacing dst.
func (e *Executor) Copy(ctx context.Context, src, dst string) error {
	if !e.UseSudo {
		return copyFile(src, dst)
	}
	return e.Run(ctx, "cp", src, dst)
}

// Remove deletes path. A missing path is not an error.
func (e *Executor) Remove(ctx context.Context, path string) error {
	if !e.UseSudo {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	return e.Run(ctx, "rm", "-f", path)
}

// WriteFile replaces path with data. The data is written to a temp file
// first. Without sudo the temp file is renamed over path; with sudo it is
// installed as root:root so the result is never owned by the invoking user.
func (e *Executor) WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	if !e.UseSudo {
		// The temp file sits next to path so the rename is atomic.
		tmpPath, err := writeTemp(filepath.Dir(path), filepath.Base(path), data, perm)
		if err != nil {
			return err
		}
		if err := os.Rename(tmpPath, path); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to move %s into place: %w", path, err)
		}
		return nil
	}

	tmpPath, err := writeTemp(os.TempDir(), filepath.Base(path), data, perm)
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)

	return e.Run(ctx, "install", "-m", fmt.Sprintf("%04o", perm.Perm()), "-o", "root", "-g", "root", tmpPath, path)
}

func writeTemp(dir, base string, data []byte, perm os.FileMode) (string, error) {
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file for %s: %w", base, err)
	}
	name := tmp.Name()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(name, perm)
	}
	if err != nil {
		os.Remove(name)
		return "", fmt.Errorf("failed to write temp file for %s: %w", base, err)
	}
	return name, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
