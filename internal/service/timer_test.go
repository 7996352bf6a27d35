package service

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestCountdownTimerTicksDownAndFiresOnce(t *testing.T) {
	timer := NewCountdownTimer(3 * time.Second)
	timer.interval = time.Millisecond

	var ticks, timeouts int32
	var last int32
	done := make(chan struct{})

	timer.Start(
		func(remaining int) {
			atomic.AddInt32(&ticks, 1)
			atomic.StoreInt32(&last, int32(remaining))
		},
		func() {
			atomic.AddInt32(&timeouts, 1)
			close(done)
		},
	)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout never fired")
	}

	if got := atomic.LoadInt32(&ticks); got != 3 {
		t.Fatalf("expected 3 ticks, got %d", got)
	}
	if got := atomic.LoadInt32(&last); got != 0 {
		t.Fatalf("expected final tick at 0, got %d", got)
	}

	// The timer stops itself at zero: no further ticks or timeouts.
	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt32(&ticks); got != 3 {
		t.Fatalf("timer kept ticking after zero: %d ticks", got)
	}
	if got := atomic.LoadInt32(&timeouts); got != 1 {
		t.Fatalf("expected exactly one timeout, got %d", got)
	}
}

func TestCountdownTimerStopHaltsTicks(t *testing.T) {
	timer := NewCountdownTimer(time.Hour)
	timer.interval = time.Millisecond

	var ticks int32
	timer.Start(
		func(int) { atomic.AddInt32(&ticks, 1) },
		func() { t.Error("unexpected timeout") },
	)

	time.Sleep(10 * time.Millisecond)
	timer.Stop()
	time.Sleep(5 * time.Millisecond)

	before := atomic.LoadInt32(&ticks)
	time.Sleep(20 * time.Millisecond)
	if after := atomic.LoadInt32(&ticks); after != before {
		t.Fatalf("ticks continued after stop: %d -> %d", before, after)
	}

	// Stop is idempotent.
	timer.Stop()
}

func TestCountdownTimerRestartCancelsPreviousRun(t *testing.T) {
	timer := NewCountdownTimer(2 * time.Second)
	timer.interval = 5 * time.Millisecond

	var firstTicks int32
	timer.Start(
		func(int) { atomic.AddInt32(&firstTicks, 1) },
		func() {},
	)

	// Restart immediately: the first run must stop decrementing.
	done := make(chan struct{})
	timer.Start(
		func(int) {},
		func() { close(done) },
	)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("restarted timer never timed out")
	}

	// With the first run cancelled right away it saw at most one tick;
	// a leaked run would have reached the full count.
	if got := atomic.LoadInt32(&firstTicks); got > 1 {
		t.Fatalf("cancelled run kept ticking: %d ticks", got)
	}
	timer.Stop()
}
