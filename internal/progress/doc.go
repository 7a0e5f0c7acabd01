// Package progress provides progress reporting for sync runs.
//
// This package outputs human-readable progress information to stderr,
// including the share of matched emoji already processed, bytes written
// and transfer speed.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{
//	    Instance: "mastodon.social",
//	    Workers:  8,
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	reporter.SetTotal(len(matched))
//	reporter.AssetStarted()
//	reporter.AssetCompleted(int64(len(data)))
//
// # Output Format
//
//	[mastoyoink] Syncing emoji from: mastodon.social (workers: 8)
//	[mastoyoink] Progress: 45.2% | 113/250 emoji | 1.2 MiB | Speed: 310 KiB/s | Failed: 2
package progress
