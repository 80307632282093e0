package configs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	aerrors "github.com/yigitkabak/aperium/internal/errors"
)

const settingsHeader = "# Aperium settings. Remove a key to fall back to the built-in default.\n\n"

// LoadTOML decodes a TOML file into data.
func LoadTOML(filePath string, data interface{}) error {
	_, err := toml.DecodeFile(filePath, data)
	return err
}

// EncodeSettings writes fc to w in config.toml layout.
func EncodeSettings(w io.Writer, fc FileConfig) error {
	return toml.NewEncoder(w).Encode(fc)
}

// WriteSettingsFile stores the effective settings of s in s.SettingsFile so
// they can be edited later. An existing file is kept unless force is set.
//
// Returns ErrDestinationExists if the file exists and force is false.
func WriteSettingsFile(s *Settings, force bool) error {
	path := s.SettingsFile
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", aerrors.ErrDestinationExists, path)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	_, err = io.WriteString(tmp, settingsHeader)
	if err == nil {
		err = EncodeSettings(tmp, s.FileConfig())
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
