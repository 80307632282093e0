package configs

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

const (
	DefaultNixConfigPath = "/etc/nixos/configuration.nix"
	DefaultNixModulesDir = "/etc/nixos/aperium-modules"
	DefaultShell         = "bash"
)

type Settings struct {
	ConfigDir    string
	KeyFile      string
	RegistryDir  string
	HistoryFile  string
	SettingsFile string

	NixConfigPath string
	NixModulesDir string

	UseSudo bool
	Shell   string
}

var AperiumSettings *Settings

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("error getting home directory: %s", err)
	}

	AperiumSettings = DefaultSettings(homeDir)
}

// DefaultSettings returns the settings rooted at homeDir/.aperium, or at
// APERIUM_HOME when it is set.
func DefaultSettings(homeDir string) *Settings {
	configDir := os.Getenv("APERIUM_HOME")
	if configDir == "" {
		configDir = filepath.Join(homeDir, ".aperium")
	}

	return &Settings{
		ConfigDir:     configDir,
		KeyFile:       filepath.Join(configDir, "key.enc"),
		RegistryDir:   filepath.Join(configDir, "installed_packages"),
		HistoryFile:   filepath.Join(configDir, "history.jsonl"),
		SettingsFile:  filepath.Join(configDir, "config.toml"),
		NixConfigPath: DefaultNixConfigPath,
		NixModulesDir: DefaultNixModulesDir,
		UseSudo:       true,
		Shell:         DefaultShell,
	}
}

// FileConfig mirrors config.toml. Pointer and empty values mean "not set".
type FileConfig struct {
	Exec     ExecConfig     `toml:"exec"`
	NixOS    NixOSConfig    `toml:"nixos"`
	Registry RegistryConfig `toml:"registry"`
}

type ExecConfig struct {
	UseSudo *bool  `toml:"use_sudo"`
	Shell   string `toml:"shell"`
}

type NixOSConfig struct {
	ConfigPath string `toml:"config_path"`
	ModulesDir string `toml:"modules_dir"`
}

type RegistryConfig struct {
	Dir string `toml:"dir"`
}

// LoadSettingsFile merges s.SettingsFile into s. A missing file is not an error.
func LoadSettingsFile(s *Settings) error {
	if _, err := os.Stat(s.SettingsFile); os.IsNotExist(err) {
		return nil
	}

	var fc FileConfig
	if err := LoadTOML(s.SettingsFile, &fc); err != nil {
		return fmt.Errorf("failed to load settings from %s: %w", s.SettingsFile, err)
	}

	s.Apply(fc)
	return nil
}

// Apply overrides the fields fc sets.
func (s *Settings) Apply(fc FileConfig) {
	if fc.Exec.UseSudo != nil {
		s.UseSudo = *fc.Exec.UseSudo
	}
	if fc.Exec.Shell != "" {
		s.Shell = fc.Exec.Shell
	}
	if fc.NixOS.ConfigPath != "" {
		s.NixConfigPath = fc.NixOS.ConfigPath
	}
	if fc.NixOS.ModulesDir != "" {
		s.NixModulesDir = fc.NixOS.ModulesDir
	}
	if fc.Registry.Dir != "" {
		s.RegistryDir = fc.Registry.Dir
	}
}

// FileConfig returns the settings as they would be written to config.toml.
func (s *Settings) FileConfig() FileConfig {
	useSudo := s.UseSudo
	return FileConfig{
		Exec:     ExecConfig{UseSudo: &useSudo, Shell: s.Shell},
		NixOS:    NixOSConfig{ConfigPath: s.NixConfigPath, ModulesDir: s.NixModulesDir},
		Registry: RegistryConfig{Dir: s.RegistryDir},
	}
}
