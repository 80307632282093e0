package workflows

import (
	"context"

	"github.com/yigitkabak/aperium/internal/audit"
	"github.com/yigitkabak/aperium/internal/registry"
)

// ForgetOptions configures the forget workflow.
type ForgetOptions struct {
	Registry *registry.Registry
	Name     string
}

// Forget removes the installation record for a package so the next install
// runs its payload again. Installed software is left in place.
//
// Returns ErrNotInstalled if there is no record for Name.
func Forget(ctx context.Context, opts ForgetOptions) error {
	if err := opts.Registry.Remove(ctx, opts.Name); err != nil {
		return err
	}

	audit.Log(audit.Entry{
		Operation: "forget",
		Package:   opts.Name,
		Outcome:   audit.OutcomeForgotten,
	})
	return nil
}
