package downloader

import (
	"context"
	"errors"
	"net/http"
	"testing"

	mhttp "github.com/L1LLIAN/mastoyoink/internal/http"
	"github.com/L1LLIAN/mastoyoink/internal/manifest"
	"github.com/L1LLIAN/mastoyoink/internal/testutils"
)

func TestDownloadAsset(t *testing.T) {
	inst := testutils.StartInstance(t, []testutils.Asset{
		{Shortcode: "blob", Category: "fun", File: "blob.png", Data: []byte("blob-data")},
		{Shortcode: "gone", Category: "fun", File: "gone.png", Status: http.StatusNotFound},
	})
	client := testOptions(inst).withDefaults().Client

	ok := DownloadAsset(context.Background(), client, manifest.Emoji{
		Shortcode: "blob", StaticURL: inst.AssetURL("blob.png"), Category: "fun",
	})
	if ok.Err != nil {
		t.Fatalf("DownloadAsset: %v", ok.Err)
	}
	if string(ok.Data) != "blob-data" || ok.Emoji.Shortcode != "blob" {
		t.Errorf("unexpected result %+v", ok)
	}

	bad := DownloadAsset(context.Background(), client, manifest.Emoji{
		Shortcode: "gone", StaticURL: inst.AssetURL("gone.png"), Category: "fun",
	})
	var dlErr *DownloadError
	if !errors.As(bad.Err, &dlErr) {
		t.Fatalf("expected DownloadError, got %v", bad.Err)
	}
	if dlErr.Shortcode != "gone" || dlErr.URL != inst.AssetURL("gone.png") {
		t.Errorf("unexpected error fields %+v", dlErr)
	}
	if !errors.Is(bad.Err, mhttp.ErrNotFound) {
		t.Errorf("expected ErrNotFound cause, got %v", bad.Err)
	}
	if bad.Data != nil {
		t.Error("failed result must carry no data")
	}
}

func TestDownloadAssetUnreachable(t *testing.T) {
	client := mhttp.NewClient(mhttp.Options{RetryAttempts: 0})
	res := DownloadAsset(context.Background(), client, manifest.Emoji{
		Shortcode: "x", StaticURL: "https://127.0.0.1:1/x.png",
	})
	if res.Err == nil {
		t.Fatal("expected error for unreachable host")
	}
}
