package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/L1LLIAN/mastoyoink/internal/manifest"
)

// DirWriter writes emoji below a local directory.
type DirWriter struct {
	BaseDir string

	// DirMode and FileMode default to 0755 and 0644.
	DirMode  fs.FileMode
	FileMode fs.FileMode
}

// NewDirWriter returns a DirWriter rooted at baseDir.
func NewDirWriter(baseDir string) *DirWriter {
	return &DirWriter{BaseDir: baseDir, DirMode: 0o755, FileMode: 0o644}
}

// Location returns the absolute or base-relative file path for e.
func (w *DirWriter) Location(e manifest.Emoji) (string, error) {
	rel, err := RelativePath(e)
	if err != nil {
		return "", &WriteError{Shortcode: e.Shortcode, Op: "path", Err: err}
	}
	return filepath.Join(w.BaseDir, filepath.FromSlash(rel)), nil
}

// Write creates the category directory if needed and replaces the target
// file. Data is written to a temporary file in the same directory and
// renamed into place, so an interrupted run never leaves a torn image.
func (w *DirWriter) Write(ctx context.Context, e manifest.Emoji, data []byte) (string, error) {
	target, err := w.Location(e)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, w.dirMode()); err != nil {
		return "", &WriteError{Shortcode: e.Shortcode, Path: dir, Op: "mkdir", Err: err}
	}

	tmp := filepath.Join(dir, "."+e.Shortcode+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, w.fileMode()); err != nil {
		os.Remove(tmp)
		return "", &WriteError{Shortcode: e.Shortcode, Path: target, Op: "write", Err: err}
	}

	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return "", &WriteError{Shortcode: e.Shortcode, Path: target, Op: "rename", Err: err}
	}

	return target, nil
}

// Exists reports whether a regular file exists at e's location.
func (w *DirWriter) Exists(ctx context.Context, e manifest.Emoji) (bool, error) {
	target, err := w.Location(e)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &WriteError{Shortcode: e.Shortcode, Path: target, Op: "stat", Err: err}
	}
	return info.Mode().IsRegular(), nil
}

func (w *DirWriter) dirMode() fs.FileMode {
	if w.DirMode == 0 {
		return 0o755
	}
	return w.DirMode
}

func (w *DirWriter) fileMode() fs.FileMode {
	if w.FileMode == 0 {
		return 0o644
	}
	return w.FileMode
}
