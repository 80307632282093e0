package pkgfile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	aerrors "github.com/yigitkabak/aperium/internal/errors"
	"github.com/yigitkabak/aperium/internal/vault"
)

const (
	// DescriptorName is the archive entry holding the descriptor.
	DescriptorName = "package.json"

	// maxEntrySize caps extracted entries; descriptors are a few KB.
	maxEntrySize = 64 << 20
)

// Meta is the descriptor metadata supplied when creating a package.
type Meta struct {
	Name        string
	Version     string
	Description string
}

// ValidateExtension accepts .apm and .apr paths, ignoring case.
func ValidateExtension(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".apm", ".apr":
		return nil
	}
	return fmt.Errorf("%w: %s (expected .apm or .apr)", aerrors.ErrInvalidExtension, path)
}

// Create encrypts the non-blank scripts under key and writes a new package
// to outPath. outPath must end in .apm and must not exist.
func Create(outPath string, meta Meta, scripts map[Platform]string, key []byte) (*Descriptor, error) {
	if !strings.EqualFold(filepath.Ext(outPath), ".apm") {
		return nil, fmt.Errorf("%w: %s (packages are created as .apm)", aerrors.ErrInvalidExtension, outPath)
	}
	if err := ValidateName(meta.Name); err != nil {
		return nil, err
	}
	if _, err := os.Stat(outPath); err == nil {
		return nil, fmt.Errorf("%w: %s", aerrors.ErrDestinationExists, outPath)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to check %s: %w", outPath, err)
	}

	d := &Descriptor{
		Name:        meta.Name,
		Version:     meta.Version,
		Description: meta.Description,
	}
	if d.Version == "" {
		d.Version = DefaultVersion
	}
	if d.Description == "" {
		d.Description = DefaultDescription
	}

	for _, p := range Platforms {
		script := scripts[p]
		if strings.TrimSpace(script) == "" {
			continue
		}
		enc, err := vault.Encrypt([]byte(script), key)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt %s payload: %w", p, err)
		}
		d.setPayload(p, enc, vault.Hash([]byte(script)))
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", DescriptorName, err)
	}

	if err := writeArchive(outPath, data); err != nil {
		return nil, err
	}
	return d, nil
}

// writeArchive writes a zip holding only the descriptor, going through a
// temp file in the destination directory so a failure leaves nothing behind.
func writeArchive(outPath string, descriptor []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".aperium-*.apm.tmp")
	if err != nil {
		return fmt.Errorf("failed to create package file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	w, err := zw.Create(DescriptorName)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", DescriptorName, err)
	}
	if _, err = w.Write(descriptor); err != nil {
		return fmt.Errorf("failed to write %s: %w", DescriptorName, err)
	}
	if err = zw.Close(); err != nil {
		return fmt.Errorf("failed to finish package archive: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close package file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set package file permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), outPath); err != nil {
		return fmt.Errorf("failed to move package into place: %w", err)
	}
	return nil
}

// Load extracts the package at path into a scratch directory and parses its
// descriptor. The scratch directory is always removed before Load returns.
func Load(path string) (*Descriptor, error) {
	if err := ValidateExtension(path); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", aerrors.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	scratch, err := os.MkdirTemp("", "aperium_apm_extract_")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	if err := extract(path, scratch); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(scratch, DescriptorName))
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found in %s", aerrors.ErrInvalidPackage, DescriptorName, path)
	}

	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %s is not valid JSON: %v", aerrors.ErrInvalidPackage, DescriptorName, err)
	}
	if err := ValidateName(d.Name); err != nil {
		return nil, err
	}
	return &d, nil
}

func extract(archivePath, dest string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("%w: %s is not a zip archive: %v", aerrors.ErrInvalidPackage, archivePath, err)
	}
	defer r.Close()

	root := filepath.Clean(dest) + string(os.PathSeparator)
	for _, f := range r.File {
		target := filepath.Join(dest, f.Name)
		if !strings.HasPrefix(target, root) {
			return fmt.Errorf("%w: entry %q escapes the package", aerrors.ErrInvalidPackage, f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0700); err != nil {
				return fmt.Errorf("failed to extract %s: %w", f.Name, err)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: cannot read entry %q: %v", aerrors.ErrInvalidPackage, f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	defer out.Close()

	n, err := io.Copy(out, io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return fmt.Errorf("%w: cannot read entry %q: %v", aerrors.ErrInvalidPackage, f.Name, err)
	}
	if n > maxEntrySize {
		return fmt.Errorf("%w: entry %q is too large", aerrors.ErrInvalidPackage, f.Name)
	}
	return nil
}
