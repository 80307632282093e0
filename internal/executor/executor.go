package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/briandowns/spinner"

	aerrors "github.com/yigitkabak/aperium/internal/errors"
	logger "github.com/yigitkabak/aperium/internal/logging"
	"github.com/yigitkabak/aperium/internal/privilege"
)

// StderrLimit is how much stderr an ExitError keeps.
const StderrLimit = 1024

type Executor struct {
	Priv *privilege.Executor

	// Shell runs the script file. Defaults to bash.
	Shell string
	// TempDir holds the script file. Defaults to os.TempDir().
	TempDir string
	// Progress receives the spinner. Nil disables it.
	Progress io.Writer

	Log logger.Logger
}

type Result struct {
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// ExitError reports a script that ran but exited non-zero.
type ExitError struct {
	Label  string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("installation %q exited with code %d", e.Label, e.Code)
}

func (e *ExitError) Is(target error) bool {
	return target == aerrors.ErrNonZeroExit
}

// Run normalizes script and runs it. Blank scripts succeed without running
// anything.
func (e *Executor) Run(ctx context.Context, script, label string) (*Result, error) {
	if strings.TrimSpace(script) == "" {
		e.Log.Infof("Script content to run for %q is empty", label)
		return &Result{}, nil
	}

	path, err := e.writeScript(Normalize(script))
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	priv := e.Priv
	if priv == nil {
		priv = &privilege.Executor{Log: e.Log}
	}

	shell := e.Shell
	if shell == "" {
		shell = "bash"
	}

	var stdout, stderr bytes.Buffer
	cmd := priv.Command(ctx, shell, path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.Log.Infof("Running installation script for %q", label)
	e.Log.Debugf("Running %s", strings.Join(cmd.Args, " "))

	stop := e.startSpinner(label)
	start := time.Now()
	err = cmd.Run()
	stop()

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return result, &ExitError{
				Label:  label,
				Code:   exitErr.ExitCode(),
				Stderr: Truncate(result.Stderr, StderrLimit),
			}
		}
		return result, fmt.Errorf("%w: %s: %v", aerrors.ErrSpawnFailed, shell, err)
	}

	e.Log.Infof("Installation script for %q completed in %s", label, result.Duration.Round(time.Millisecond))
	return result, nil
}

func (e *Executor) writeScript(script string) (string, error) {
	f, err := os.CreateTemp(e.TempDir, "aper_script_*.sh")
	if err != nil {
		return "", fmt.Errorf("failed to create script file: %w", err)
	}
	path := f.Name()

	_, err = f.WriteString(script)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(path, 0700)
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write script file: %w", err)
	}
	return path, nil
}

func (e *Executor) startSpinner(label string) func() {
	if e.Progress == nil {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(e.Progress))
	s.Suffix = fmt.Sprintf(" Installing %s...", label)
	_ = s.Color("cyan")
	s.Start()
	return s.Stop
}

// Truncate shortens s to at most n bytes plus "..." without splitting a rune.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
