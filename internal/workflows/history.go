package workflows

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/yigitkabak/aperium/internal/audit"
)

// HistoryOptions configures the history workflow.
type HistoryOptions struct {
	// Package filters entries by package name glob. Empty keeps everything.
	Package string

	// Limit keeps only the most recent entries. 0 means no limit.
	Limit int

	// Reverse orders entries from most recent to oldest when true.
	Reverse bool
}

// History reads and filters the install history.
func History(ctx context.Context, opts HistoryOptions) ([]audit.Entry, error) {
	if opts.Package != "" && !doublestar.ValidatePattern(opts.Package) {
		return nil, fmt.Errorf("invalid pattern %q", opts.Package)
	}

	entries, err := audit.ReadEntries()
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	var filtered []audit.Entry
	for _, e := range entries {
		if opts.Package != "" {
			if ok, _ := doublestar.Match(opts.Package, e.Package); !ok {
				continue
			}
		}
		filtered = append(filtered, e)
	}

	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[len(filtered)-opts.Limit:]
	}

	if opts.Reverse {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}
	return filtered, nil
}
