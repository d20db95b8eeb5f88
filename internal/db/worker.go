package db

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var ErrWorkerClosed = errors.New("db worker closed")

type TxFn func(ctx context.Context, tx *sql.Tx) error

type WorkerOption func(*Worker)

// WithQueueSize bounds how many writes may wait for the worker. Default 256.
func WithQueueSize(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.queue = n
		}
	}
}

// WithLogger reports failed commits and writes slower than slow.
func WithLogger(l zerolog.Logger, slow time.Duration) WorkerOption {
	return func(w *Worker) {
		w.logger = l
		w.slow = slow
	}
}

// WorkerStats counts finished write transactions.
type WorkerStats struct {
	Committed  int64
	RolledBack int64
}

type write struct {
	ctx    context.Context
	fn     TxFn
	result chan error
}

// Worker serialises every write transaction onto one goroutine so request
// handlers never contend for the SQLite write lock.
type Worker struct {
	db     *sql.DB
	queue  int
	logger zerolog.Logger
	slow   time.Duration

	writes  chan write
	stopped chan struct{}

	mu     sync.RWMutex
	closed bool

	committed  atomic.Int64
	rolledBack atomic.Int64
}

func NewWorker(db *sql.DB, opts ...WorkerOption) *Worker {
	w := &Worker{db: db, queue: 256, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(w)
	}
	w.writes = make(chan write, w.queue)
	w.stopped = make(chan struct{})
	go w.loop()
	return w
}

func (w *Worker) Stats() WorkerStats {
	return WorkerStats{Committed: w.committed.Load(), RolledBack: w.rolledBack.Load()}
}

// Close finishes queued writes and stops the worker. Safe to call twice.
func (w *Worker) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.writes)
	}
	w.mu.Unlock()
	<-w.stopped
}

// Do runs fn inside a transaction on the worker goroutine. A non-nil
// error from fn rolls back; nil commits.
func (w *Worker) Do(ctx context.Context, fn TxFn) error {
	req := write{ctx: ctx, fn: fn, result: make(chan error, 1)}

	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return ErrWorkerClosed
	}
	select {
	case w.writes <- req:
		w.mu.RUnlock()
	case <-ctx.Done():
		w.mu.RUnlock()
		return ctx.Err()
	}

	// A write whose caller gave up still runs; its result is dropped.
	select {
	case err := <-req.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer close(w.stopped)
	for req := range w.writes {
		req.result <- w.exec(req)
	}
}

func (w *Worker) exec(req write) error {
	if err := req.ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	tx, err := w.db.BeginTx(req.ctx, nil)
	if err != nil {
		return err
	}

	if err := req.fn(req.ctx, tx); err != nil {
		_ = tx.Rollback()
		w.rolledBack.Add(1)
		return err
	}
	if err := tx.Commit(); err != nil {
		w.rolledBack.Add(1)
		w.logger.Error().Err(err).Msg("commit failed")
		return err
	}
	w.committed.Add(1)

	if elapsed := time.Since(start); w.slow > 0 && elapsed > w.slow {
		w.logger.Warn().
			Dur("elapsed", elapsed).
			Int("queued", len(w.writes)).
			Int64("committed", w.committed.Load()).
			Msg("slow write")
	}
	return nil
}
