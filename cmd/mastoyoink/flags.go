package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/L1LLIAN/mastoyoink/internal/config"
	"github.com/L1LLIAN/mastoyoink/internal/downloader"
	mhttp "github.com/L1LLIAN/mastoyoink/internal/http"
	"github.com/L1LLIAN/mastoyoink/internal/manifest"
	"github.com/L1LLIAN/mastoyoink/internal/progress"
	"github.com/L1LLIAN/mastoyoink/internal/store"
)

// commonFlags are shared by sync and validate.
type commonFlags struct {
	instance        string
	categories      string
	output          string
	bucket          string
	prefix          string
	workers         int
	timeout         time.Duration
	retryAttempts   int
	retryBackoff    time.Duration
	retryMaxBackoff time.Duration
	maxAssetSize    string
	progress        bool
	configPath      string
	verbose         bool
}

func registerFlags(fs *pflag.FlagSet) *commonFlags {
	def := config.Default()
	f := &commonFlags{}

	fs.StringVarP(&f.instance, "instance", "i", "", "Instance host name, e.g. mastodon.social (required)")
	fs.StringVarP(&f.categories, "categories", "c", "", "Comma-separated emoji categories (required, may be empty)")
	fs.StringVarP(&f.output, "output", "o", "", "Output directory (default: working directory)")
	fs.StringVar(&f.bucket, "bucket", "", "Destination bucket URL (file://, s3://, gs://, mem://); overrides --output")
	fs.StringVar(&f.prefix, "prefix", "", "Object key prefix inside --bucket")
	fs.IntVarP(&f.workers, "workers", "w", def.Workers, "Number of parallel download workers")
	fs.DurationVar(&f.timeout, "timeout", def.Timeout, "Per-request timeout")
	fs.IntVar(&f.retryAttempts, "retry-attempts", def.Retry.Attempts, "Retries per image on transport errors and 5xx")
	fs.DurationVar(&f.retryBackoff, "retry-backoff", def.Retry.Backoff, "Initial retry backoff")
	fs.DurationVar(&f.retryMaxBackoff, "retry-max-backoff", def.Retry.MaxBackoff, "Maximum retry backoff")
	fs.StringVar(&f.maxAssetSize, "max-asset-size", progress.FormatBytes(def.MaxAssetSize), "Largest image accepted (0 for no limit)")
	fs.BoolVar(&f.progress, "progress", false, "Show live progress on stderr")
	fs.StringVar(&f.configPath, "config", "", "YAML config file")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Log every saved emoji")

	return f
}

// resolve builds the effective configuration: defaults, then the config
// file, then MASTOYOINK_ environment variables, then explicitly set flags.
func (f *commonFlags) resolve(fs *pflag.FlagSet) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.LoadFromFile(f.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, err
	}

	var override config.Config
	if fs.Changed("instance") {
		override.Instance = f.instance
	}
	if fs.Changed("categories") {
		override.Categories = strings.Split(f.categories, ",")
	}
	if fs.Changed("output") {
		override.Output = f.output
	}
	if fs.Changed("bucket") {
		override.Bucket = f.bucket
	}
	if fs.Changed("prefix") {
		override.Prefix = f.prefix
	}
	if fs.Changed("workers") {
		override.Workers = f.workers
	}
	if fs.Changed("timeout") {
		override.Timeout = f.timeout
	}
	if fs.Changed("retry-backoff") {
		override.Retry.Backoff = f.retryBackoff
	}
	if fs.Changed("retry-max-backoff") {
		override.Retry.MaxBackoff = f.retryMaxBackoff
	}
	cfg = cfg.Merge(override)

	// Zero and false are meaningful for these, which Merge would ignore.
	if fs.Changed("progress") {
		cfg.Progress = f.progress
	}
	if fs.Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if fs.Changed("retry-attempts") {
		cfg.Retry.Attempts = f.retryAttempts
	}
	if fs.Changed("max-asset-size") {
		size, err := progress.ParseBytes(f.maxAssetSize)
		if err != nil {
			return config.Config{}, fmt.Errorf("parse --max-asset-size: %w", err)
		}
		cfg.MaxAssetSize = size
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (a *app) httpOptions(cfg config.Config) mhttp.Options {
	opts := mhttp.DefaultOptions()
	opts.MaxIdleConnsPerHost = cfg.Workers * 2
	opts.Timeout = cfg.Timeout
	opts.RetryAttempts = cfg.Retry.Attempts
	opts.RetryBackoff = cfg.Retry.Backoff
	opts.RetryMaxBackoff = cfg.Retry.MaxBackoff
	opts.MaxBodySize = cfg.MaxAssetSize
	opts.Transport = a.transport
	return opts
}

func request(cfg config.Config) downloader.Request {
	return downloader.Request{
		Instance:   cfg.Instance,
		Categories: manifest.NewCategorySet(cfg.Categories...),
	}
}

// openStore returns the destination writer and a function releasing it.
func openStore(ctx context.Context, cfg config.Config) (store.Writer, func() error, error) {
	if cfg.Bucket != "" {
		bkt, err := blob.OpenBucket(ctx, cfg.Bucket)
		if err != nil {
			return nil, nil, fmt.Errorf("open bucket: %w", err)
		}
		return store.NewBucketWriter(bkt, cfg.Prefix), bkt.Close, nil
	}

	dir := cfg.Output
	if dir == "" {
		dir = "."
	}
	return store.NewDirWriter(dir), func() error { return nil }, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func (a *app) signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(a.stderr, "\n[mastoyoink] Received interrupt, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}
