package downloader

import (
	"context"
	"fmt"

	mhttp "github.com/L1LLIAN/mastoyoink/internal/http"
	"github.com/L1LLIAN/mastoyoink/internal/manifest"
)

// DownloadError describes a failure to fetch one emoji image.
type DownloadError struct {
	Shortcode string
	URL       string
	Err       error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.Shortcode, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// Result is the outcome of downloading one emoji. Err is nil on success.
type Result struct {
	Emoji manifest.Emoji
	Data  []byte
	Err   error
}

// DownloadAsset fetches the image for e. Transient failures are retried
// by client; the final failure is reported in Result.Err, never returned.
func DownloadAsset(ctx context.Context, client *mhttp.Client, e manifest.Emoji) Result {
	data, err := client.GetBytes(ctx, e.StaticURL)
	if err != nil {
		return Result{
			Emoji: e,
			Err:   &DownloadError{Shortcode: e.Shortcode, URL: e.StaticURL, Err: err},
		}
	}
	return Result{Emoji: e, Data: data}
}
