package workflows

import (
	"context"

	"github.com/yigitkabak/aperium/internal/pkgfile"
)

// ViewOptions configures the view workflow.
type ViewOptions struct {
	// PackagePath is the .apm or .apr file to inspect.
	PackagePath string

	// Key decrypts the package payloads.
	Key []byte

	// Platform, when set, limits the view to that payload.
	Platform pkgfile.Platform
}

// ViewResult contains the decrypted contents of a package.
type ViewResult struct {
	Descriptor *pkgfile.Descriptor

	// Payloads holds one entry per payload present in the package, in
	// display order. Payloads that fail to decrypt or verify carry an error.
	Payloads []pkgfile.PayloadView

	// Platform is the payload the view was limited to, if any.
	Platform pkgfile.Platform
}

// View decrypts every payload in a package for display. Nothing is run.
//
// Returns ErrInvalidExtension, ErrFileNotFound or ErrInvalidPackage if the
// package cannot be loaded. Payload failures are reported per payload.
func View(ctx context.Context, opts ViewOptions) (*ViewResult, error) {
	d, err := pkgfile.Load(opts.PackagePath)
	if err != nil {
		return nil, err
	}

	payloads := pkgfile.View(d, opts.Key)
	if opts.Platform != "" {
		var only []pkgfile.PayloadView
		for _, p := range payloads {
			if p.Platform == opts.Platform {
				only = append(only, p)
			}
		}
		payloads = only
	}

	return &ViewResult{
		Descriptor: d,
		Payloads:   payloads,
		Platform:   opts.Platform,
	}, nil
}
