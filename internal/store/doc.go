// Package store persists downloaded emoji images.
//
// Every emoji is stored at {category}/{shortcode}.{ext} below a base
// location, where ext is taken from the last dot-separated part of the
// final segment of the image URL path ("png" when there is none). Writing
// the same emoji twice overwrites the earlier copy.
//
// Two writers are provided:
//   - [DirWriter] writes below a local directory.
//   - [BucketWriter] writes to any gocloud.dev/blob bucket (file://, s3://,
//     gs://, mem://), optionally under a key prefix.
package store
