// Package watch rebuilds the site when its inputs change or on a schedule.
package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// DefaultDebounce coalesces bursts of filesystem events into one rebuild.
const DefaultDebounce = 300 * time.Millisecond

// RebuildFunc performs one build.
type RebuildFunc func(ctx context.Context) error

// Rebuilder serializes rebuild requests. While a rebuild runs at most one
// follow-up is queued, no matter how many requests arrive.
type Rebuilder struct {
	fn       RebuildFunc
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
	req   chan struct{}
}

// NewRebuilder returns a Rebuilder calling fn.
func NewRebuilder(fn RebuildFunc, debounce time.Duration) *Rebuilder {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Rebuilder{fn: fn, debounce: debounce, req: make(chan struct{}, 1)}
}

// Trigger requests a rebuild after the debounce window; later calls restart the window.
func (r *Rebuilder) Trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, r.Request)
}

// Request enqueues a rebuild immediately unless one is already queued.
func (r *Rebuilder) Request() {
	select {
	case r.req <- struct{}{}:
	default:
	}
}

// Run processes requests until ctx is canceled.
func (r *Rebuilder) Run(ctx context.Context) {
	defer r.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.req:
			t0 := time.Now()
			if err := r.fn(ctx); err != nil {
				slog.Warn("Rebuild failed", logfields.Error(err), logfields.Duration(time.Since(t0)))
				continue
			}
			slog.Debug("Rebuild complete", logfields.Duration(time.Since(t0)))
		}
	}
}

func (r *Rebuilder) stopTimer() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
}
