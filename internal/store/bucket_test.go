package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"

	"github.com/L1LLIAN/mastoyoink/internal/manifest"
)

func openMemBucket(t *testing.T) *blob.Bucket {
	t.Helper()
	bucket, err := blob.OpenBucket(context.Background(), "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	t.Cleanup(func() { bucket.Close() })
	return bucket
}

func TestBucketWriterWrite(t *testing.T) {
	ctx := context.Background()
	bucket := openMemBucket(t)
	w := NewBucketWriter(bucket, "emoji")
	e := manifest.Emoji{Shortcode: "wave", StaticURL: "https://cdn/e/wave.gif", Category: "other"}

	key, err := w.Write(ctx, e, []byte("GIF89a"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if key != "emoji/other/wave.gif" {
		t.Errorf("unexpected key %q", key)
	}

	data, err := bucket.ReadAll(ctx, key)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "GIF89a" {
		t.Errorf("unexpected content %q", data)
	}

	attrs, err := bucket.Attributes(ctx, key)
	if err != nil {
		t.Fatalf("Attributes: %v", err)
	}
	if attrs.ContentType != "image/gif" {
		t.Errorf("expected image/gif, got %q", attrs.ContentType)
	}
	if attrs.Metadata["shortcode"] != "wave" {
		t.Errorf("expected shortcode metadata, got %v", attrs.Metadata)
	}
}

func TestBucketWriterOverwrites(t *testing.T) {
	ctx := context.Background()
	bucket := openMemBucket(t)
	w := NewBucketWriter(bucket, "")
	e := manifest.Emoji{Shortcode: "blob", StaticURL: "https://cdn/e/blob", Category: "fun"}

	for _, v := range []string{"one", "two"} {
		if _, err := w.Write(ctx, e, []byte(v)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	data, err := bucket.ReadAll(ctx, "fun/blob.png")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "two" {
		t.Errorf("expected last write to win, got %q", data)
	}
}

func TestBucketWriterExists(t *testing.T) {
	ctx := context.Background()
	w := NewBucketWriter(openMemBucket(t), "p/")
	e := manifest.Emoji{Shortcode: "blob", StaticURL: "https://cdn/e/blob.png", Category: "fun"}

	if ok, err := w.Exists(ctx, e); err != nil || ok {
		t.Fatalf("Exists before write = %v, %v", ok, err)
	}
	if _, err := w.Write(ctx, e, []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if ok, err := w.Exists(ctx, e); err != nil || !ok {
		t.Fatalf("Exists after write = %v, %v", ok, err)
	}
}

func TestBucketWriterUnsafePath(t *testing.T) {
	w := NewBucketWriter(openMemBucket(t), "")
	e := manifest.Emoji{Shortcode: "x", StaticURL: "https://cdn/e/x.png", Category: "../up"}

	_, err := w.Write(context.Background(), e, []byte("x"))
	var we *WriteError
	if !errors.As(err, &we) || !errors.Is(err, ErrUnsafePath) {
		t.Fatalf("expected unsafe path WriteError, got %v", err)
	}
}

func TestBucketWriterFileBlob(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	bucket, err := fileblob.OpenBucket(dir, nil)
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()

	w := NewBucketWriter(bucket, "")
	e := manifest.Emoji{Shortcode: "blob", StaticURL: "https://cdn/e/blob.png", Category: "fun"}
	if _, err := w.Write(ctx, e, []byte("image")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "fun", "blob.png"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "image" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestWritersImplementInterface(t *testing.T) {
	var _ Writer = (*DirWriter)(nil)
	var _ Writer = (*BucketWriter)(nil)
}
