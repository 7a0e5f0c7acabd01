// Package http provides the HTTP client used to talk to a Mastodon instance
// and to the media hosts serving its emoji.
//
// This package handles:
//   - Connection pooling shared by all download workers
//   - Per-request timeouts
//   - Retry with exponential backoff and jitter for transport errors and 5xx
//   - Mapping of non-success status codes to sentinel errors
//
// # Usage
//
//	client := http.NewClient(http.Options{
//	    Timeout:       30 * time.Second,
//	    RetryAttempts: 2,
//	})
//
//	// Decode a JSON document
//	var emojis []manifest.Emoji
//	err := client.GetJSON(ctx, url, &emojis)
//
//	// Fetch a small binary body
//	data, err := client.GetBytes(ctx, url)
package http
