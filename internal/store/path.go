package store

import (
	"errors"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/L1LLIAN/mastoyoink/internal/manifest"
)

// DefaultExtension is used when the image URL carries no extension.
const DefaultExtension = "png"

// ErrUnsafePath is returned for emoji whose derived path would leave the
// base location.
var ErrUnsafePath = errors.New("store: unsafe emoji path")

// Extension returns the file extension for an image URL. Query strings and
// fragments are ignored; the response Content-Type is never consulted.
func Extension(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}

	base := path.Base(p)
	i := strings.LastIndexByte(base, '.')
	if i < 0 || i == len(base)-1 {
		return DefaultExtension
	}
	return base[i+1:]
}

// RelativePath returns the slash-separated location of e below the base,
// {category}/{shortcode}.{ext}. An empty category places the file at the
// base itself.
func RelativePath(e manifest.Emoji) (string, error) {
	if e.Shortcode == "" || strings.ContainsAny(e.Shortcode, `/\`) {
		return "", ErrUnsafePath
	}

	name := e.Shortcode + "." + Extension(e.StaticURL)
	rel := path.Join(e.Category, name)
	if e.Category != "" && path.Clean(e.Category) != strings.TrimSuffix(e.Category, "/") {
		return "", ErrUnsafePath
	}
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", ErrUnsafePath
	}
	return rel, nil
}

// ContentType guesses the MIME type for an extension, falling back to
// application/octet-stream.
func ContentType(ext string) string {
	if ct := mime.TypeByExtension("." + ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
