package flow

import (
	"context"
	"log/slog"
)

// Runner defines the interface for submitting detached background tasks.
// The AI-conversation controller uses it to fetch completions after the
// webhook response has already been sent; tests substitute a synchronous
// implementation to assert the task ran to completion deterministically.
type Runner interface {
	// Submit schedules fn to run. The caller must not depend on when, or
	// whether, fn completes.
	Submit(name string, fn func(ctx context.Context))
}

// GoRunner runs tasks on detached goroutines with panic recovery.
// Task failures never affect the request that submitted them.
type GoRunner struct{}

// NewGoRunner creates a goroutine-backed Runner.
func NewGoRunner() GoRunner { return GoRunner{} }

// Submit launches fn on its own goroutine.
func (GoRunner) Submit(name string, fn func(ctx context.Context)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Runner background task panicked", "task", name, "panic", r)
			}
		}()
		// Detached from the request lifecycle: the submitting request's
		// context may already be cancelled by the time this runs.
		fn(context.Background())
	}()
}

// SyncRunner runs tasks inline. For tests only.
type SyncRunner struct{}

// Submit runs fn before returning.
func (SyncRunner) Submit(name string, fn func(ctx context.Context)) {
	fn(context.Background())
}
