package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// Options configures the progress reporter.
type Options struct {
	// Instance is the host being synchronised (for display).
	Instance string

	// Workers is the number of parallel workers (for display).
	Workers int

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration
}

// Reporter outputs human-readable progress information.
type Reporter struct {
	opts Options

	total           atomic.Int64
	completedBytes  atomic.Int64
	completedAssets atomic.Int64
	failedAssets    atomic.Int64
	inProgress      atomic.Int64

	mu         sync.Mutex
	startTime  time.Time
	lastUpdate time.Time
	lastBytes  int64
	stopCh     chan struct{}
	doneCh     chan struct{}
	started    bool
	stopped    bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval <= 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}

	return &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start prints the header and begins periodic progress output.
func (r *Reporter) Start() {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.startTime = time.Now()
	r.lastUpdate = r.startTime
	r.mu.Unlock()

	fmt.Fprintf(r.opts.Output, "[mastoyoink] Syncing emoji from: %s (workers: %d)\n", r.opts.Instance, r.opts.Workers)

	go r.updateLoop()
}

// Stop prints the final status and stops periodic output. It waits for
// the output goroutine to finish and is safe to call more than once.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped || !r.started {
		r.stopped = true
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
	<-r.doneCh
}

// SetTotal records how many emoji matched the category filter.
func (r *Reporter) SetTotal(n int) {
	r.total.Store(int64(n))
}

// AssetStarted marks an emoji as in progress.
func (r *Reporter) AssetStarted() {
	r.inProgress.Add(1)
}

// AssetCompleted marks an emoji as written.
func (r *Reporter) AssetCompleted(size int64) {
	r.completedBytes.Add(size)
	r.completedAssets.Add(1)
	r.inProgress.Add(-1)
}

// AssetFailed marks an emoji as failed.
func (r *Reporter) AssetFailed() {
	r.failedAssets.Add(1)
	r.inProgress.Add(-1)
}

// AssetSkipped removes an emoji from in-progress without counting it, for
// work abandoned because the run was cancelled.
func (r *Reporter) AssetSkipped() {
	r.inProgress.Add(-1)
}

// updateLoop periodically updates the progress display.
func (r *Reporter) updateLoop() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printFinalStatus()
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

// printProgress outputs the current progress.
func (r *Reporter) printProgress() {
	now := time.Now()
	completed := r.completedBytes.Load()

	elapsed := now.Sub(r.lastUpdate).Seconds()
	if elapsed < 0.1 {
		elapsed = 0.1
	}
	speed := float64(completed-r.lastBytes) / elapsed

	r.lastUpdate = now
	r.lastBytes = completed

	fmt.Fprintf(r.opts.Output, "\r[mastoyoink] Progress: %s | %s | Speed: %s/s | Failed: %d    ",
		r.percent(),
		r.counts(),
		FormatBytes(int64(speed)),
		r.failedAssets.Load(),
	)
}

// printFinalStatus outputs the final status.
func (r *Reporter) printFinalStatus() {
	completed := r.completedBytes.Load()
	duration := time.Since(r.startTime)
	avgSpeed := float64(completed) / max(duration.Seconds(), 0.001)

	fmt.Fprintf(r.opts.Output, "\r[mastoyoink] Progress: %s | %s | Failed: %d    \n",
		r.percent(),
		r.counts(),
		r.failedAssets.Load(),
	)
	fmt.Fprintf(r.opts.Output, "[mastoyoink] Total time: %s | Average speed: %s/s\n",
		formatDuration(duration),
		FormatBytes(int64(avgSpeed)),
	)
}

func (r *Reporter) percent() string {
	total := r.total.Load()
	if total <= 0 {
		return "-"
	}
	done := r.completedAssets.Load() + r.failedAssets.Load()
	return fmt.Sprintf("%.1f%%", float64(done)/float64(total)*100)
}

func (r *Reporter) counts() string {
	return fmt.Sprintf("%d/%d emoji | %s",
		r.completedAssets.Load(),
		r.total.Load(),
		FormatBytes(r.completedBytes.Load()),
	)
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm %ds", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}

// FormatBytes formats a byte count with IEC units, e.g. "1.5 KiB".
func FormatBytes(b int64) string {
	if b < 0 {
		b = 0
	}
	return humanize.IBytes(uint64(b))
}

// ParseBytes parses a human-readable size. IEC suffixes ("KiB") are
// powers of 1024 and SI suffixes ("KB") powers of 1000.
func ParseBytes(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid byte string %q: %w", s, err)
	}
	return int64(n), nil
}
