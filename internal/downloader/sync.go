package downloader

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	mhttp "github.com/L1LLIAN/mastoyoink/internal/http"
	"github.com/L1LLIAN/mastoyoink/internal/manifest"
	"github.com/L1LLIAN/mastoyoink/internal/progress"
	"github.com/L1LLIAN/mastoyoink/internal/store"
)

// DefaultWorkers is the worker pool size used when Options.Workers is unset.
const DefaultWorkers = 8

// Request selects what to synchronise.
type Request struct {
	// Instance is a bare host, without scheme or trailing slash.
	Instance   string
	Categories manifest.CategorySet
}

// Options configures a sync run.
type Options struct {
	// Workers is the number of parallel download workers.
	Workers int

	// HTTPOptions configures the HTTP client. Ignored when Client is set.
	HTTPOptions mhttp.Options

	// Client is a preconfigured HTTP client shared with the caller.
	Client *mhttp.Client

	// Progress is an optional progress reporter.
	Progress *progress.Reporter

	// Logger receives structured run events. Nil discards them.
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.Client == nil {
		if o.HTTPOptions == (mhttp.Options{}) {
			o.HTTPOptions = mhttp.DefaultOptions()
		}
		if o.HTTPOptions.Timeout == 0 {
			o.HTTPOptions.Timeout = mhttp.DefaultOptions().Timeout
		}
		if o.HTTPOptions.MaxIdleConnsPerHost == 0 {
			o.HTTPOptions.MaxIdleConnsPerHost = o.Workers * 2
		}
		o.Client = mhttp.NewClient(o.HTTPOptions)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// Stage names the step at which an emoji failed.
type Stage string

const (
	StageDownload Stage = "download"
	StageWrite    Stage = "write"
)

// Failure records one emoji that could not be synchronised.
type Failure struct {
	Shortcode string
	Category  string
	Stage     Stage
	Err       error
}

// Reason returns the failure detail.
func (f Failure) Reason() string {
	return f.Err.Error()
}

// SavedAsset records one emoji written to the store.
type SavedAsset struct {
	Shortcode string
	Category  string
	Location  string
	Size      int64
}

// Report summarises a sync run.
type Report struct {
	Instance string

	// Total is the number of emoji in the manifest.
	Total int

	// Matched is the number of emoji that passed the category filter.
	Matched int

	// Downloaded is the number of emoji successfully written.
	Downloaded int

	// Bytes is the total size of the written images.
	Bytes int64

	// Saved lists the written emoji, sorted by shortcode.
	Saved []SavedAsset

	// Failures lists the emoji that failed, sorted by shortcode.
	Failures []Failure

	// Skipped counts matched emoji that were not processed because the
	// run was cancelled.
	Skipped int

	Duration time.Duration
}

type outcome struct {
	emoji    manifest.Emoji
	location string
	size     int64
	failure  *Failure
	skipped  bool
}

// Sync fetches the manifest of req.Instance, keeps the emoji in
// req.Categories and writes each of them to w using a bounded worker pool.
//
// The returned error is non-nil only when the manifest fetch fails, in
// which case the report is nil, or when ctx is cancelled, in which case
// the partial report is returned alongside the context error.
func Sync(ctx context.Context, req Request, w store.Writer, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	log := opts.Logger.With("instance", req.Instance)
	start := time.Now()

	emojis, err := manifest.Fetch(ctx, opts.Client, req.Instance)
	if err != nil {
		return nil, err
	}

	matched := manifest.Filter(emojis, req.Categories)
	log.Info("fetched emoji manifest",
		"total", len(emojis),
		"matched", len(matched),
		"categories", req.Categories.Names(),
	)
	if opts.Progress != nil {
		opts.Progress.SetTotal(len(matched))
	}

	report := &Report{
		Instance: req.Instance,
		Total:    len(emojis),
		Matched:  len(matched),
	}

	jobs := make(chan manifest.Emoji)
	results := make(chan outcome)

	// The feeder stops with the cancellation cause, which g.Wait reports.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for _, e := range matched {
			select {
			case jobs <- e:
			case <-gctx.Done():
				return context.Cause(gctx)
			}
		}
		return nil
	})

	for i := 0; i < opts.Workers; i++ {
		g.Go(func() error {
			for e := range jobs {
				results <- process(ctx, e, w, opts)
			}
			return nil
		})
	}

	var waitErr error
	go func() {
		waitErr = g.Wait()
		close(results)
	}()

	processed := 0
	for o := range results {
		processed++
		switch {
		case o.skipped:
			report.Skipped++
		case o.failure != nil:
			log.Warn("emoji failed",
				"shortcode", o.failure.Shortcode,
				"category", o.failure.Category,
				"stage", o.failure.Stage,
				"error", o.failure.Err,
			)
			report.Failures = append(report.Failures, *o.failure)
		default:
			log.Debug("emoji saved",
				"shortcode", o.emoji.Shortcode,
				"category", o.emoji.Category,
				"location", o.location,
				"bytes", o.size,
			)
			report.Downloaded++
			report.Bytes += o.size
			report.Saved = append(report.Saved, SavedAsset{
				Shortcode: o.emoji.Shortcode,
				Category:  o.emoji.Category,
				Location:  o.location,
				Size:      o.size,
			})
		}
	}
	report.Skipped += len(matched) - processed
	report.Duration = time.Since(start)

	sortReport(report)

	log.Info("sync finished",
		"downloaded", report.Downloaded,
		"failed", len(report.Failures),
		"skipped", report.Skipped,
		"duration", report.Duration,
	)

	// Cancellation after the last job was queued leaves waitErr nil.
	if waitErr == nil {
		waitErr = ctx.Err()
	}
	if waitErr != nil {
		return report, fmt.Errorf("sync interrupted: %w", waitErr)
	}
	return report, nil
}

// process downloads and writes one emoji.
func process(ctx context.Context, e manifest.Emoji, w store.Writer, opts Options) outcome {
	if ctx.Err() != nil {
		return outcome{emoji: e, skipped: true}
	}

	reporter := opts.Progress
	if reporter != nil {
		reporter.AssetStarted()
	}

	res := DownloadAsset(ctx, opts.Client, e)
	if res.Err != nil {
		if ctx.Err() != nil {
			if reporter != nil {
				reporter.AssetSkipped()
			}
			return outcome{emoji: e, skipped: true}
		}
		if reporter != nil {
			reporter.AssetFailed()
		}
		return outcome{emoji: e, failure: &Failure{
			Shortcode: e.Shortcode,
			Category:  e.Category,
			Stage:     StageDownload,
			Err:       res.Err,
		}}
	}

	// A downloaded image is always written, even after cancellation.
	location, err := w.Write(context.WithoutCancel(ctx), e, res.Data)
	if err != nil {
		if reporter != nil {
			reporter.AssetFailed()
		}
		return outcome{emoji: e, failure: &Failure{
			Shortcode: e.Shortcode,
			Category:  e.Category,
			Stage:     StageWrite,
			Err:       err,
		}}
	}

	size := int64(len(res.Data))
	if reporter != nil {
		reporter.AssetCompleted(size)
	}
	return outcome{emoji: e, location: location, size: size}
}

func sortReport(r *Report) {
	slices.SortStableFunc(r.Failures, func(a, b Failure) int {
		return cmp.Or(
			cmp.Compare(a.Shortcode, b.Shortcode),
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(a.Stage, b.Stage),
			cmp.Compare(a.Reason(), b.Reason()),
		)
	})
	slices.SortStableFunc(r.Saved, func(a, b SavedAsset) int {
		return cmp.Or(
			cmp.Compare(a.Shortcode, b.Shortcode),
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(a.Location, b.Location),
		)
	})
}
