package store

import (
	"context"
	"fmt"

	"github.com/L1LLIAN/mastoyoink/internal/manifest"
)

// Writer persists emoji images.
type Writer interface {
	// Write stores data for e, replacing any previous copy, and returns
	// the location written.
	Write(ctx context.Context, e manifest.Emoji, data []byte) (string, error)

	// Exists reports whether e is present at its derived location.
	Exists(ctx context.Context, e manifest.Emoji) (bool, error)

	// Location returns where e is stored without touching storage.
	Location(e manifest.Emoji) (string, error)
}

// WriteError describes a failure to persist one emoji.
type WriteError struct {
	Shortcode string
	Path      string
	Op        string // "path", "mkdir", "write", "rename", "close", "stat"
	Err       error
}

func (e *WriteError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("store %s: %s: %v", e.Shortcode, e.Op, e.Err)
	}
	return fmt.Sprintf("store %s: %s %s: %v", e.Shortcode, e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
