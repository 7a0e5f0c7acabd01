// Package config defines configuration for the mastoyoink CLI.
//
// Configuration can be provided via, in increasing precedence:
//   - Defaults
//   - YAML configuration file
//   - Environment variables (MASTOYOINK_ prefix)
//   - Command-line flags
//
// # File Format
//
//	instance: mastodon.social
//	categories: [Blobs, Cats]   # or "Blobs,Cats"
//	output: ./emoji
//	workers: 8
//	timeout: 30s
//	max_asset_size: 16MiB
//	retry:
//	  attempts: 2
//	  backoff: 500ms
//	  max_backoff: 5s
//
// A nil Categories slice means the categories were never given. An empty
// string entry is a real category that matches uncategorised emoji.
package config
