// Package refresh re-runs a view load on a fixed interval.
package refresh

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// LoadFunc performs one Fetch → Filter → Aggregate → Render pass.
type LoadFunc func(ctx context.Context) error

// Refresher calls a LoadFunc once immediately and then every interval until
// its context is cancelled or Stop is called.  Loads never overlap: a tick
// that fires while a load is running is dropped.
//
// A failing load is logged and does not stop the refresher.
type Refresher struct {
	name     string
	interval time.Duration
	load     LoadFunc
	logger   zerolog.Logger

	runs   atomic.Int64
	cancel context.CancelFunc
	done   chan struct{}
}

func New(name string, interval time.Duration, load LoadFunc, logger zerolog.Logger) *Refresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Refresher{
		name:     name,
		interval: interval,
		load:     load,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start launches the refresh goroutine.  Call it once.
func (r *Refresher) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	go r.loop(ctx)

	r.logger.Debug().Str("view", r.name).Dur("interval", r.interval).Msg("refresher started")
}

// Stop cancels the refresher and waits for an in-flight load to return.
func (r *Refresher) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}

// Done is closed once the refresher has exited.
func (r *Refresher) Done() <-chan struct{} { return r.done }

// Runs reports how many loads have completed.
func (r *Refresher) Runs() int64 { return r.runs.Load() }

func (r *Refresher) loop(ctx context.Context) {
	defer close(r.done)

	r.run(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.run(ctx)
			// Drop the tick that may have queued up during the load.
			select {
			case <-ticker.C:
			default:
			}
		}
	}
}

func (r *Refresher) run(ctx context.Context) {
	start := time.Now()
	err := r.load(ctx)
	r.runs.Add(1)
	if err != nil && ctx.Err() == nil {
		r.logger.Warn().Err(err).Str("view", r.name).Msg("refresh failed")
		return
	}
	r.logger.Debug().Str("view", r.name).Dur("dur", time.Since(start)).Msg("refreshed")
}
