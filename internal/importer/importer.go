// Package importer brings items in from other tools: the zenflow
// web app's localStorage export and Todoist CSV exports.
package importer

import (
	"context"
	"io"

	"zenflow/internal/tracker"
)

// Result contains statistics about an import operation.
type Result struct {
	Imported int      // items written
	Skipped  int      // items already present or not importable
	Errors   []string // per-item failures
}

// Target receives imported items. *tracker.Service satisfies it.
type Target interface {
	Get(id string) (tracker.Item, error)
	Register(ctx context.Context, f tracker.Form) (tracker.Item, error)
	Restore(ctx context.Context, it tracker.Item) (tracker.Item, error)
	Today() tracker.Date
}

// Importer reads one external format.
type Importer interface {
	// Import reads items from r and writes them to dst.
	Import(ctx context.Context, r io.Reader, dst Target) (*Result, error)

	// Preview parses r without writing anything. today fills missing dates.
	Preview(r io.Reader, today tracker.Date) ([]tracker.Item, error)

	// Name returns the format name used on the command line.
	Name() string
}

// Get returns the importer for format, or nil.
func Get(format string) Importer {
	switch format {
	case "zenflow":
		return &LegacyImporter{}
	case "todoist":
		return &TodoistImporter{}
	default:
		return nil
	}
}

// SupportedFormats returns the list of supported import formats.
func SupportedFormats() []string {
	return []string{"zenflow", "todoist"}
}
