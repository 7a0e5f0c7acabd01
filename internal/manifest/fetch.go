package manifest

import (
	"context"
	"errors"
	"fmt"

	mhttp "github.com/L1LLIAN/mastoyoink/internal/http"
)

// ErrNotArray is returned when the manifest body decodes but is not a
// JSON array, e.g. a bare null.
var ErrNotArray = errors.New("manifest: response is not a JSON array")

// ManifestFetchError is returned when the manifest cannot be retrieved or
// decoded. It is fatal to a sync run.
type ManifestFetchError struct {
	Instance string
	URL      string
	Err      error
}

func (e *ManifestFetchError) Error() string {
	return fmt.Sprintf("fetch emoji manifest from %s: %v", e.Instance, e.Err)
}

func (e *ManifestFetchError) Unwrap() error {
	return e.Err
}

// ManifestURL returns the custom emoji endpoint for instance. The instance
// is a bare host without scheme or trailing slash.
func ManifestURL(instance string) string {
	return "https://" + instance + "/api/v1/custom_emojis"
}

// Fetch retrieves the emoji manifest of instance with a single request.
// The request is never retried; any failure aborts the whole manifest.
func Fetch(ctx context.Context, client *mhttp.Client, instance string) ([]Emoji, error) {
	url := ManifestURL(instance)

	var emojis []Emoji
	if err := client.WithRetries(0).GetJSON(ctx, url, &emojis); err != nil {
		return nil, &ManifestFetchError{Instance: instance, URL: url, Err: err}
	}
	if emojis == nil {
		return nil, &ManifestFetchError{Instance: instance, URL: url, Err: ErrNotArray}
	}

	return emojis, nil
}
