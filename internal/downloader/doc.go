// Package downloader synchronises the custom emoji of an instance to a
// store.
//
// # Usage
//
// The main entry point is the Sync function:
//
//	report, err := downloader.Sync(ctx, downloader.Request{
//	    Instance:   "mastodon.social",
//	    Categories: manifest.ParseCategories("Blobs,Cats"),
//	}, store.NewDirWriter(dir), downloader.Options{Workers: 8})
//
// A manifest that cannot be fetched or decoded is fatal and no report is
// returned. Every other failure is confined to one emoji and recorded in
// [Report.Failures].
//
// # Worker Pool
//
// A feeder hands the filtered emoji, in manifest order, to a fixed number
// of workers over a channel. Each worker downloads one image and writes it
// before taking the next. Outcomes flow over a second channel to a single
// aggregator, so the report needs no locking.
//
// # Cancellation
//
// When ctx is cancelled:
//   - No further emoji are handed out
//   - Downloads in flight are aborted and counted as skipped
//   - Writes in flight run to completion
//   - Sync returns the partial report together with the context error
package downloader
