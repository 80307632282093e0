package nixos

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yigitkabak/aperium/internal/configs"
	aerrors "github.com/yigitkabak/aperium/internal/errors"
	logger "github.com/yigitkabak/aperium/internal/logging"
	"github.com/yigitkabak/aperium/internal/privilege"
	"github.com/yigitkabak/aperium/internal/utils"
)

// RebuildPrompt is the question asked before rebuilding.
const RebuildPrompt = "Do you want to rebuild your system now?"

type State int

const (
	StateNothingToDo State = iota
	StateRebuilt
	StateRebuildSkipped
)

func (s State) String() string {
	switch s {
	case StateNothingToDo:
		return "nothing to do"
	case StateRebuilt:
		return "rebuilt"
	case StateRebuildSkipped:
		return "rebuild skipped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Patcher struct {
	ConfigPath string
	ModulesDir string
	Priv       *privilege.Executor

	// Confirm answers RebuildPrompt. A nil Confirm skips the rebuild.
	Confirm func(prompt string) bool
	Now     func() time.Time
	// RebuildCommand defaults to nixos-rebuild switch.
	RebuildCommand []string

	Log logger.Logger
}

type Result struct {
	State            State
	Packages         []string
	ModulePath       string
	BackupPath       string
	ImportAdded      bool
	BlockSynthesized bool
}

func NewPatcher(cfg *configs.Settings, priv *privilege.Executor, confirm func(string) bool, log logger.Logger) *Patcher {
	return &Patcher{
		ConfigPath: cfg.NixConfigPath,
		ModulesDir: cfg.NixModulesDir,
		Priv:       priv,
		Confirm:    confirm,
		Log:        log,
	}
}

// Apply installs the comma-separated packageList as a module named after
// name and offers to rebuild. Every step before the rebuild fails closed:
// the backup is taken before the first write.
func (p *Patcher) Apply(ctx context.Context, packageList, name string) (*Result, error) {
	pkgs := ParsePackageList(packageList)
	if len(pkgs) == 0 {
		p.Log.Infof("NixOS package list for %q is empty", name)
		return &Result{State: StateNothingToDo}, nil
	}
	if !utils.IsValidPackageName(name) {
		return nil, fmt.Errorf("%w: %q", aerrors.ErrInvalidPackageName, name)
	}

	configPath := p.configPath()
	modulesDir := p.modulesDir()
	priv := p.priv()
	result := &Result{Packages: pkgs}

	p.Log.Infof("Ensuring module directory exists: %s", modulesDir)
	if err := priv.MkdirAll(ctx, modulesDir); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", aerrors.ErrModuleDir, modulesDir, err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", aerrors.ErrBackup, err)
	}
	result.BackupPath = fmt.Sprintf("%s.bak_aper_%d", configPath, p.now().UnixMilli())
	if err := priv.Copy(ctx, configPath, result.BackupPath); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", aerrors.ErrBackup, configPath, err)
	}
	p.Log.Infof("Backed up %s to %s", configPath, result.BackupPath)

	result.ModulePath = filepath.Join(modulesDir, ModuleFileName(name))
	if err := priv.WriteFile(ctx, result.ModulePath, []byte(RenderModule(pkgs)), 0644); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", aerrors.ErrModuleWrite, result.ModulePath, err)
	}
	p.Log.Infof("Created NixOS module for %q at %s", name, result.ModulePath)

	if err := p.patchConfig(ctx, configPath, info.Mode().Perm(), result); err != nil {
		return nil, err
	}

	if p.Confirm == nil || !p.Confirm(RebuildPrompt) {
		p.Log.Warnf("NixOS rebuild skipped. Remember to run `sudo nixos-rebuild switch`.")
		result.State = StateRebuildSkipped
		return result, nil
	}

	rebuild := p.RebuildCommand
	if len(rebuild) == 0 {
		rebuild = []string{"nixos-rebuild", "switch"}
	}
	p.Log.Infof("Rebuilding NixOS system, this may take a while")
	if err := priv.RunEnv(ctx, rebuild[0], rebuild[1:]...); err != nil {
		return nil, fmt.Errorf("%w: %v (backup at %s)", aerrors.ErrRebuildFailed, err, result.BackupPath)
	}

	result.State = StateRebuilt
	return result, nil
}

func (p *Patcher) patchConfig(ctx context.Context, configPath string, perm os.FileMode, result *Result) error {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("%w: %v", aerrors.ErrImportPatch, err)
	}

	ref := ImportLine(configPath, result.ModulePath)
	patched, changed, synthesized, err := PatchImports(string(content), ref)
	if err != nil {
		return fmt.Errorf("%w (configuration left unchanged)", err)
	}
	if !changed {
		p.Log.Infof("Import for %s already exists in %s", ref, configPath)
		return nil
	}

	if CheckBalanced(string(content)) == nil {
		if err := CheckBalanced(patched); err != nil {
			return fmt.Errorf("%w (configuration left unchanged)", err)
		}
	} else {
		p.Log.Warnf("%s already has unbalanced brackets; adding the import anyway", configPath)
	}

	if err := p.priv().WriteFile(ctx, configPath, []byte(patched), perm); err != nil {
		return fmt.Errorf("%w: %s: %v", aerrors.ErrImportPatch, configPath, err)
	}

	result.ImportAdded = true
	result.BlockSynthesized = synthesized
	if synthesized {
		p.Log.Warnf("No existing 'imports' block found, added a new one to %s", configPath)
	} else {
		p.Log.Infof("Added import for %s to %s", ref, configPath)
	}
	return nil
}

func (p *Patcher) configPath() string {
	if p.ConfigPath == "" {
		return configs.DefaultNixConfigPath
	}
	return p.ConfigPath
}

func (p *Patcher) modulesDir() string {
	if p.ModulesDir == "" {
		return configs.DefaultNixModulesDir
	}
	return p.ModulesDir
}

func (p *Patcher) priv() *privilege.Executor {
	if p.Priv == nil {
		return &privilege.Executor{Log: p.Log}
	}
	return p.Priv
}

func (p *Patcher) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}
