package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Batch is one full pass over all categories.
type Batch interface {
	Run(ctx context.Context) Summary
}

// Runner makes sure at most one batch runs at a time. Triggers that arrive
// while a batch is in flight are dropped.
type Runner struct {
	ctx     context.Context
	batch   Batch
	metrics *Metrics
	running atomic.Bool
	wg      sync.WaitGroup
}

// NewRunner binds background runs to ctx, normally the process lifetime.
func NewRunner(ctx context.Context, batch Batch, metrics *Metrics) *Runner {
	return &Runner{ctx: ctx, batch: batch, metrics: metrics}
}

// Trigger starts a batch in the background and returns immediately. It
// reports false when a batch was already running.
func (r *Runner) Trigger(source string) bool {
	if !r.running.CompareAndSwap(false, true) {
		slog.Warn("[Runner] Batch already running, trigger ignored", slog.String("source", source))
		return false
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(r.ctx, source)
	}()
	return true
}

// RunNow runs a batch on the calling goroutine. ok is false when another
// batch was already running.
func (r *Runner) RunNow(ctx context.Context, source string) (summary Summary, ok bool) {
	if !r.running.CompareAndSwap(false, true) {
		slog.Warn("[Runner] Batch already running, trigger ignored", slog.String("source", source))
		return Summary{}, false
	}
	return r.run(ctx, source), true
}

func (r *Runner) Running() bool {
	return r.running.Load()
}

// Wait blocks until background batches started by Trigger have returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, source string) Summary {
	defer r.running.Store(false)

	slog.Info("[Runner] Batch triggered", slog.String("source", source))
	r.metrics.batchStarted()
	start := time.Now()
	summary := r.batch.Run(ctx)
	r.metrics.batchFinished(time.Since(start))
	return summary
}
