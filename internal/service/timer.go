package service

import (
	"context"
	"sync"
	"time"
)

// CountdownTimer drives the per-question countdown. A session owns exactly
// one timer; Start cancels any previous run before ticking, so at most one
// countdown is ever live. This mirrors the cancel-before-restart rule for
// per-user test timers: a leaked timer that keeps firing after the question
// changed would mutate stale state.
type CountdownTimer struct {
	totalSeconds int
	interval     time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewCountdownTimer creates a timer counting down from total.
func NewCountdownTimer(total time.Duration) *CountdownTimer {
	return &CountdownTimer{
		totalSeconds: int(total / time.Second),
		interval:     time.Second,
	}
}

// Start begins a fresh countdown, invoking onTick with the remaining seconds
// after every tick and onTimeout exactly once when the countdown reaches
// zero. Any previous countdown is cancelled first.
func (t *CountdownTimer) Start(onTick func(remaining int), onTimeout func()) {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.mu.Unlock()

	go t.run(ctx, onTick, onTimeout)
}

// Stop cancels the running countdown, if any. Safe to call repeatedly.
func (t *CountdownTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

func (t *CountdownTimer) run(ctx context.Context, onTick func(remaining int), onTimeout func()) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	remaining := t.totalSeconds
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			remaining--
			onTick(remaining)
			if remaining <= 0 {
				onTimeout()
				return
			}
		}
	}
}
