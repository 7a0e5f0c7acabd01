// Package manifest fetches and filters the custom emoji list published by a
// Mastodon-compatible instance.
//
// The manifest is served at https://{instance}/api/v1/custom_emojis as a
// JSON array. Each element becomes an [Emoji]; unknown fields are ignored.
// [Filter] keeps the entries whose category is in a [CategorySet], in
// manifest order.
package manifest
