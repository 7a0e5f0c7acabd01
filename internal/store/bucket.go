package store

import (
	"context"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/L1LLIAN/mastoyoink/internal/manifest"
)

// BucketWriter writes emoji as objects in a gocloud bucket. Keys are
// {Prefix}{category}/{shortcode}.{ext}.
type BucketWriter struct {
	Bucket *blob.Bucket
	Prefix string
}

// NewBucketWriter returns a BucketWriter. A non-empty prefix is treated as
// a directory and gets a trailing slash.
func NewBucketWriter(bucket *blob.Bucket, prefix string) *BucketWriter {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &BucketWriter{Bucket: bucket, Prefix: prefix}
}

// Location returns the object key for e.
func (w *BucketWriter) Location(e manifest.Emoji) (string, error) {
	rel, err := RelativePath(e)
	if err != nil {
		return "", &WriteError{Shortcode: e.Shortcode, Op: "path", Err: err}
	}
	return w.Prefix + rel, nil
}

// Write uploads data, replacing any existing object with the same key.
// The upload is committed only when the writer closes cleanly, so a
// cancelled write leaves the previous object untouched.
func (w *BucketWriter) Write(ctx context.Context, e manifest.Emoji, data []byte) (string, error) {
	key, err := w.Location(e)
	if err != nil {
		return "", err
	}

	bw, err := w.Bucket.NewWriter(ctx, key, &blob.WriterOptions{
		ContentType: ContentType(Extension(e.StaticURL)),
		Metadata: map[string]string{
			"shortcode":  e.Shortcode,
			"category":   e.Category,
			"source_url": e.StaticURL,
		},
	})
	if err != nil {
		return "", &WriteError{Shortcode: e.Shortcode, Path: key, Op: "write", Err: err}
	}

	if _, err := bw.Write(data); err != nil {
		bw.Close()
		return "", &WriteError{Shortcode: e.Shortcode, Path: key, Op: "write", Err: err}
	}
	if err := bw.Close(); err != nil {
		return "", &WriteError{Shortcode: e.Shortcode, Path: key, Op: "close", Err: err}
	}

	return key, nil
}

// Exists reports whether the object for e exists.
func (w *BucketWriter) Exists(ctx context.Context, e manifest.Emoji) (bool, error) {
	key, err := w.Location(e)
	if err != nil {
		return false, err
	}

	ok, err := w.Bucket.Exists(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return false, nil
		}
		return false, &WriteError{Shortcode: e.Shortcode, Path: key, Op: "stat", Err: err}
	}
	return ok, nil
}
