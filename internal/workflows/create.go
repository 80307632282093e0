package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yigitkabak/aperium/internal/audit"
	"github.com/yigitkabak/aperium/internal/pkgfile"
)

// CreateOptions configures the create workflow.
type CreateOptions struct {
	// Name is the package name. It becomes the registry and module file name.
	Name string

	// Version and Description default to 1.0.0 and "Aperium Package".
	Version     string
	Description string

	// OutputPath is the package file to write. Defaults to <Name>.apm in
	// the working directory.
	OutputPath string

	// Scripts maps payload slots to plaintext. Blank entries are omitted.
	Scripts map[pkgfile.Platform]string

	// Key encrypts the payloads.
	Key []byte
}

// CreateResult contains the outcome of a create operation.
type CreateResult struct {
	// Path is the package file that was written.
	Path string

	Descriptor *pkgfile.Descriptor

	// Payloads lists the payload slots that were filled.
	Payloads []pkgfile.Platform
}

// Create writes a new package file with encrypted payloads.
//
// Returns ErrInvalidPackageName if Name cannot be used as a file name.
// Returns ErrDestinationExists if the output file already exists.
// Returns ErrInvalidExtension if OutputPath does not end in .apm.
func Create(ctx context.Context, opts CreateOptions) (*CreateResult, error) {
	if err := pkgfile.ValidateName(opts.Name); err != nil {
		return nil, err
	}

	outPath := opts.OutputPath
	if outPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outPath = filepath.Join(cwd, opts.Name+".apm")
	}

	d, err := pkgfile.Create(outPath, pkgfile.Meta{
		Name:        opts.Name,
		Version:     opts.Version,
		Description: opts.Description,
	}, opts.Scripts, opts.Key)
	if err != nil {
		return nil, err
	}

	result := &CreateResult{Path: outPath, Descriptor: d}
	for _, p := range d.Payloads() {
		result.Payloads = append(result.Payloads, p.Platform)
	}

	audit.Log(audit.Entry{
		Operation: "create",
		Package:   d.Name,
		Version:   d.Version,
		Hash:      d.CombinedHash(),
		Path:      outPath,
		Outcome:   audit.OutcomeCreated,
	})

	return result, nil
}
