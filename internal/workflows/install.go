package workflows

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/yigitkabak/aperium/internal/audit"
	"github.com/yigitkabak/aperium/internal/executor"
	logger "github.com/yigitkabak/aperium/internal/logging"
	"github.com/yigitkabak/aperium/internal/nixos"
	"github.com/yigitkabak/aperium/internal/pkgfile"
	"github.com/yigitkabak/aperium/internal/privilege"
	"github.com/yigitkabak/aperium/internal/registry"
)

// PlatformDetector reports the running OS family. *platform.Detector
// implements it.
type PlatformDetector interface {
	Detect() string
}

// ScriptRunner runs a decrypted shell payload. *executor.Executor implements it.
type ScriptRunner interface {
	Run(ctx context.Context, script, label string) (*executor.Result, error)
}

// NixApplier installs a decrypted NixOS package list. *nixos.Patcher
// implements it.
type NixApplier interface {
	Apply(ctx context.Context, packageList, name string) (*nixos.Result, error)
}

// InstallOptions configures the install workflow.
type InstallOptions struct {
	// PackagePath is the .apm or .apr file to install.
	PackagePath string

	// Key decrypts the package payloads.
	Key []byte

	// ToolVersion is stored in the installation record.
	ToolVersion string

	Detector PlatformDetector
	Scripts  ScriptRunner
	Nix      NixApplier
	Registry *registry.Registry

	// Priv, when set, is asked for sudo credentials once the payload has
	// been verified and before anything runs.
	Priv *privilege.Executor

	// Force installs even when an identical package is already recorded.
	Force bool

	Log logger.Logger
}

// InstallResult contains the outcome of an install operation.
type InstallResult struct {
	Name    string
	Version string

	// Hash is the combined payload hash stored in the registry.
	Hash string

	// Platform is the detected OS family. Empty when a generic payload made
	// detection unnecessary.
	Platform string

	// Payload is the payload that was installed, or "" when none matched.
	Payload pkgfile.Platform

	// Skipped is true when an identical package was already installed.
	Skipped bool

	// Executed is true when a payload ran to completion.
	Executed bool

	Script *executor.Result
	Nix    *nixos.Result
	Record *registry.Record
}

// Install installs a package file.
//
// The package is skipped if the registry already holds its combined hash.
// Otherwise a generic payload is preferred, then the payload for the detected
// platform. The chosen payload is decrypted and checked against its hash
// before anything runs. A package with no usable payload is still recorded.
//
// Returns ErrInvalidExtension, ErrFileNotFound or ErrInvalidPackage if the
// package cannot be loaded.
// Returns ErrHashMismatch or a decryption error if the payload fails
// verification; nothing is run in that case.
// Returns ErrPrivilegeDenied if sudo refuses.
// Returns an *executor.ExitError, ErrSpawnFailed or a NixOS patch error if the
// payload fails.
func Install(ctx context.Context, opts InstallOptions) (result *InstallResult, err error) {
	log := opts.Log

	result = &InstallResult{}
	defer func() {
		recordInstall(opts.PackagePath, result, err)
	}()

	d, err := pkgfile.Load(opts.PackagePath)
	if err != nil {
		return nil, err
	}
	log.Infof("%q successfully extracted", opts.PackagePath)

	result.Name = d.Name
	result.Version = d.Version
	result.Hash = d.CombinedHash()

	if !opts.Force && opts.Registry.IsInstalled(d.Name, result.Hash) {
		result.Skipped = true
		return result, nil
	}

	if _, ok := d.Payload(pkgfile.PlatformGeneric); ok {
		log.Infof("Found generic Bash script")
	} else if opts.Detector != nil {
		result.Platform = opts.Detector.Detect()
		log.Infof("System detected as %s", result.Platform)
	}

	payload, ok := d.Select(result.Platform)
	if !ok {
		log.Warnf("No suitable or generic installation script found for detected system (%s)", result.Platform)
		if err := ensurePrivileges(ctx, opts.Priv); err != nil {
			return result, err
		}
		return register(ctx, opts, result)
	}

	plaintext, err := pkgfile.Open(payload, opts.Key)
	if err != nil {
		return result, fmt.Errorf("%s could not be verified: %w", payload.Platform.Label(), err)
	}
	log.Infof("%s successfully verified", payload.Platform.Label())
	result.Payload = payload.Platform

	if err := ensurePrivileges(ctx, opts.Priv); err != nil {
		return result, err
	}

	if payload.Platform == pkgfile.PlatformNixOS {
		result.Nix, err = opts.Nix.Apply(ctx, plaintext, d.Name)
	} else {
		result.Script, err = opts.Scripts.Run(ctx, plaintext, d.Name)
	}
	if err != nil {
		return result, err
	}
	result.Executed = true

	return register(ctx, opts, result)
}

func ensurePrivileges(ctx context.Context, priv *privilege.Executor) error {
	if priv == nil {
		return nil
	}
	return priv.Ensure(ctx)
}

func register(ctx context.Context, opts InstallOptions, result *InstallResult) (*InstallResult, error) {
	rec, err := opts.Registry.Register(ctx, result.Name, result.Hash, opts.ToolVersion)
	if err != nil {
		return result, err
	}
	result.Record = rec
	return result, nil
}

func recordInstall(path string, result *InstallResult, err error) {
	entry := audit.Entry{
		Operation: "install",
		Path:      path,
		Outcome:   audit.OutcomeInstalled,
	}
	if result != nil {
		entry.Package = result.Name
		entry.Version = result.Version
		entry.Hash = result.Hash
		entry.Platform = string(result.Payload)
		if result.Skipped {
			entry.Outcome = audit.OutcomeSkipped
		}
	}
	if entry.Package == "" {
		entry.Package = filepath.Base(path)
	}
	if err != nil {
		entry.Outcome = audit.OutcomeFailed
		entry.Error = err.Error()
	}
	audit.Log(entry)
}
