package main

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/L1LLIAN/mastoyoink/internal/downloader"
)

// runValidate checks that every emoji matching the categories exists in
// the destination. Reports validation status without downloading images.
func (a *app) runValidate(args []string) int {
	fs := pflag.NewFlagSet("validate", pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	flags := registerFlags(fs)

	fs.Usage = func() {
		fmt.Fprintln(a.stderr, `Usage: mastoyoink validate --instance HOST --categories LIST [options]

Fetch the emoji manifest of HOST and verify that every emoji in LIST is
present in the output directory or bucket. Does not download images.

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

	result, err := downloader.Validate(ctx, request(cfg), w, downloader.Options{
		Workers:     cfg.Workers,
		HTTPOptions: a.httpOptions(cfg),
		Logger:      newLogger(a.stderr, cfg.Verbose),
	})
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		if ctx.Err() != nil {
			return ExitInterrupted
		}
		return ExitManifestError
	}

	fmt.Fprintf(a.stdout, "Instance: %s\n", result.Instance)
	fmt.Fprintf(a.stdout, "Matched: %d\n", result.Matched)
	fmt.Fprintf(a.stdout, "Present: %d\n", result.Present)

	if result.Valid() {
		fmt.Fprintln(a.stdout, "Status: VALID")
		return ExitSuccess
	}

	fmt.Fprintln(a.stdout, "Status: INCOMPLETE")
	for _, e := range result.Missing {
		fmt.Fprintf(a.stdout, "  missing: %s (%s)\n", e.Shortcode, displayCategory(e.Category))
	}
	for _, f := range result.Errors {
		fmt.Fprintf(a.stdout, "  error: %s (%s): %s\n", f.Shortcode, displayCategory(f.Category), f.Reason())
	}
	return ExitValidationFailed
}
