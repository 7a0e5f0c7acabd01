package downloader

import (
	"context"

	"github.com/L1LLIAN/mastoyoink/internal/manifest"
	"github.com/L1LLIAN/mastoyoink/internal/store"
)

// ValidationReport lists which matched emoji are present in a store.
type ValidationReport struct {
	Instance string
	Matched  int
	Present  int
	Missing  []manifest.Emoji
	Errors   []Failure
}

// Valid reports whether every matched emoji was found.
func (r *ValidationReport) Valid() bool {
	return len(r.Missing) == 0 && len(r.Errors) == 0
}

// Validate fetches and filters the manifest like Sync, then checks that
// each matched emoji exists in w without downloading any image.
func Validate(ctx context.Context, req Request, w store.Writer, opts Options) (*ValidationReport, error) {
	opts = opts.withDefaults()

	emojis, err := manifest.Fetch(ctx, opts.Client, req.Instance)
	if err != nil {
		return nil, err
	}
	matched := manifest.Filter(emojis, req.Categories)

	report := &ValidationReport{Instance: req.Instance, Matched: len(matched)}
	for _, e := range matched {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		ok, err := w.Exists(ctx, e)
		switch {
		case err != nil:
			report.Errors = append(report.Errors, Failure{
				Shortcode: e.Shortcode,
				Category:  e.Category,
				Stage:     StageWrite,
				Err:       err,
			})
		case ok:
			report.Present++
		default:
			report.Missing = append(report.Missing, e)
		}
	}

	opts.Logger.Info("validated store",
		"instance", req.Instance,
		"matched", report.Matched,
		"present", report.Present,
		"missing", len(report.Missing),
	)
	return report, nil
}
