package search

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounceDelay is the quiet window for debounced search calls.
const DefaultDebounceDelay = 300 * time.Millisecond

// Result carries the outcome of a debounced call.
type Result[R any] struct {
	Value R
	Err   error
}

// Debounced wraps a function so that rapid successive calls collapse into
// one: each call cancels the previous pending timer, and only the last call
// within the quiet window actually executes. Single-flight per window, not a
// queue.
type Debounced[A, R any] struct {
	fn    func(context.Context, A) (R, error)
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewDebounced wraps fn with the given quiet window. A non-positive delay
// falls back to DefaultDebounceDelay.
func NewDebounced[A, R any](fn func(context.Context, A) (R, error), delay time.Duration) *Debounced[A, R] {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	return &Debounced[A, R]{fn: fn, delay: delay}
}

// Call schedules fn(ctx, arg) after the quiet window and returns a channel
// that receives the result if this call survives. A later Call supersedes
// this one, and a superseded call's channel is never written to. Callers
// must select on ctx alongside the channel and treat a new call as
// invalidating any prior pending one. Cancelling ctx before the timer fires
// also abandons the call.
func (d *Debounced[A, R]) Call(ctx context.Context, arg A) <-chan Result[R] {
	ch := make(chan Result[R], 1)

	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		superseded := gen != d.gen
		d.mu.Unlock()
		if superseded || ctx.Err() != nil {
			return
		}

		v, err := d.fn(ctx, arg)
		ch <- Result[R]{Value: v, Err: err}
	})
	d.mu.Unlock()

	return ch
}

// Cancel abandons any pending call without executing it.
func (d *Debounced[A, R]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}
