// Package registry records which packages have been installed.
//
// Each installed package has one JSON record, <dir>/<name>.json, holding the
// combined hash of the package payloads. Installing a package whose hash
// matches its record is a no-op.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	aerrors "github.com/yigitkabak/aperium/internal/errors"
	logger "github.com/yigitkabak/aperium/internal/logging"
	"github.com/yigitkabak/aperium/internal/privilege"
	"github.com/yigitkabak/aperium/internal/utils"
)

type Record struct {
	Name        string    `json:"name"`
	Hash        string    `json:"hash"`
	InstalledAt time.Time `json:"installedAt"`
	// Version is the aper version that installed the package.
	Version string `json:"version"`
}

type Registry struct {
	Dir  string
	Priv *privilege.Executor
	Log  logger.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

func (r *Registry) path(name string) string {
	return filepath.Join(r.Dir, name+".json")
}

// IsInstalled reports whether name is recorded with exactly hash. A record
// with another hash, or one that cannot be read, counts as not installed.
func (r *Registry) IsInstalled(name, hash string) bool {
	rec, err := r.Get(name)
	if err != nil {
		if !errors.Is(err, aerrors.ErrNotInstalled) {
			r.Log.Warnf("Could not read installation record for %q: %v", name, err)
		}
		return false
	}
	if rec.Hash != hash {
		r.Log.Warnf("A different version of %q is already installed", name)
		return false
	}
	return true
}

// Get returns the record for name, or ErrNotInstalled.
func (r *Registry) Get(name string) (*Record, error) {
	if !utils.IsValidPackageName(name) {
		return nil, fmt.Errorf("%w: %q", aerrors.ErrInvalidPackageName, name)
	}

	data, err := os.ReadFile(r.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", aerrors.ErrNotInstalled, name)
		}
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("corrupt record %s: %w", r.path(name), err)
	}
	return &rec, nil
}

// Register writes or replaces the record for name.
func (r *Registry) Register(ctx context.Context, name, hash, toolVersion string) (*Record, error) {
	if !utils.IsValidPackageName(name) {
		return nil, fmt.Errorf("%w: %q", aerrors.ErrInvalidPackageName, name)
	}

	rec := &Record{
		Name:        name,
		Hash:        hash,
		InstalledAt: r.now().UTC(),
		Version:     toolVersion,
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, err
	}

	priv := r.priv()
	if err := priv.MkdirAll(ctx, r.Dir); err != nil {
		return nil, fmt.Errorf("failed to create registry directory %s: %w", r.Dir, err)
	}
	if err := priv.WriteFile(ctx, r.path(name), data, 0644); err != nil {
		return nil, fmt.Errorf("failed to record installation of %q: %w", name, err)
	}

	r.Log.Infof("Package %q installation recorded", name)
	return rec, nil
}

// List returns every readable record sorted by name. Unreadable records are
// skipped with a warning.
func (r *Registry) List() ([]Record, error) {
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read registry directory %s: %w", r.Dir, err)
	}

	var records []Record
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ".json")
		if entry.IsDir() || !ok {
			continue
		}
		rec, err := r.Get(name)
		if err != nil {
			r.Log.Warnf("Skipping %s: %v", entry.Name(), err)
			continue
		}
		records = append(records, *rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})
	return records, nil
}

// Remove deletes the record for name so the next install runs again. The
// installed software itself is not touched. Corrupt records can be removed.
func (r *Registry) Remove(ctx context.Context, name string) error {
	if !utils.IsValidPackageName(name) {
		return fmt.Errorf("%w: %q", aerrors.ErrInvalidPackageName, name)
	}
	if _, err := os.Stat(r.path(name)); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", aerrors.ErrNotInstalled, name)
	}
	if err := r.priv().Remove(ctx, r.path(name)); err != nil {
		return fmt.Errorf("failed to remove record for %q: %w", name, err)
	}
	return nil
}

func (r *Registry) priv() *privilege.Executor {
	if r.Priv == nil {
		return &privilege.Executor{Log: r.Log}
	}
	return r.Priv
}

func (r *Registry) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

