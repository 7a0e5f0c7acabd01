package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/L1LLIAN/mastoyoink/internal/downloader"
	"github.com/L1LLIAN/mastoyoink/internal/progress"
)

func (a *app) runSync(args []string) int {
	fs := pflag.NewFlagSet("sync", pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	flags := registerFlags(fs)

	fs.Usage = func() {
		fmt.Fprintln(a.stderr, `Usage: mastoyoink sync --instance HOST --categories LIST [options]

Download every custom emoji of HOST whose category is in LIST and save it
as {category}/{shortcode}.{ext} under the output directory or bucket.
An empty LIST selects the uncategorised emoji.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitSuccess
		}
		return ExitInvalidArgs
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(a.stderr, "Error: unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return ExitInvalidArgs
	}

	cfg, err := flags.resolve(fs)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		fs.Usage()
		return ExitInvalidArgs
	}

	ctx, cancel := a.signalContext()
	defer cancel()

	w, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return ExitStorageError
	}
	defer closeStore()

	opts := downloader.Options{
		Workers:     cfg.Workers,
		HTTPOptions: a.httpOptions(cfg),
		Logger:      newLogger(a.stderr, cfg.Verbose),
	}

	var reporter *progress.Reporter
	if cfg.Progress {
		reporter = progress.NewReporter(progress.Options{
			Instance: cfg.Instance,
			Workers:  cfg.Workers,
			Output:   a.stderr,
		})
		reporter.Start()
		opts.Progress = reporter
	}

	report, err := downloader.Sync(ctx, request(cfg), w, opts)
	if reporter != nil {
		reporter.Stop()
	}

	if report == nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		if ctx.Err() != nil {
			return ExitInterrupted
		}
		return ExitManifestError
	}

	a.printReport(report)

	if err != nil {
		fmt.Fprintf(a.stderr, "[mastoyoink] %v: %d emoji not attempted\n", err, report.Skipped)
		return ExitInterrupted
	}
	return ExitSuccess
}

func (a *app) printReport(report *downloader.Report) {
	for _, s := range report.Saved {
		fmt.Fprintf(a.stdout, "Downloaded emoji %s\n", s.Shortcode)
	}

	if len(report.Failures) > 0 {
		fmt.Fprintf(a.stderr, "[mastoyoink] %d emoji failed:\n", len(report.Failures))
		for _, f := range report.Failures {
			fmt.Fprintf(a.stderr, "  %s (%s, %s): %s\n", f.Shortcode, displayCategory(f.Category), f.Stage, f.Reason())
		}
	}

	fmt.Fprintf(a.stdout, "Downloaded a total of %d emojis\n", report.Downloaded)
	fmt.Fprintf(a.stderr, "[mastoyoink] %d of %d emoji matched, %s written in %s\n",
		report.Matched, report.Total, progress.FormatBytes(report.Bytes), report.Duration.Round(time.Millisecond))
}

func displayCategory(category string) string {
	if category == "" {
		return "uncategorised"
	}
	return category
}
