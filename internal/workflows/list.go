package workflows

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/yigitkabak/aperium/internal/registry"
)

// ListOptions configures the list workflow.
type ListOptions struct {
	Registry *registry.Registry

	// Pattern filters package names with glob syntax (*, ?, [a-z], {a,b}).
	// Empty lists everything.
	Pattern string
}

// List returns the installation records, sorted by name.
func List(ctx context.Context, opts ListOptions) ([]registry.Record, error) {
	if opts.Pattern != "" && !doublestar.ValidatePattern(opts.Pattern) {
		return nil, fmt.Errorf("invalid pattern %q", opts.Pattern)
	}

	records, err := opts.Registry.List()
	if err != nil {
		return nil, err
	}
	if opts.Pattern == "" {
		return records, nil
	}

	var matched []registry.Record
	for _, rec := range records {
		ok, err := doublestar.Match(opts.Pattern, rec.Name)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", opts.Pattern, err)
		}
		if ok {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}
