package counter

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestFlushLoopInvokesFlushUntilStopped(t *testing.T) {
	var calls int64
	stop := startFlushLoop(5*time.Millisecond, func() error {
		atomic.AddInt64(&calls, 1)
		return nil
	})

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt64(&calls) < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	stop()

	flushed := atomic.LoadInt64(&calls)
	if flushed < 2 {
		t.Fatalf("expected at least two flushes before stop, got %d", flushed)
	}

	// No further ticks may fire after stop returns.
	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt64(&calls); got != flushed {
		t.Fatalf("flush fired after stop: %d -> %d", flushed, got)
	}
}

func TestFlushLoopSurvivesFlushErrors(t *testing.T) {
	var calls int64
	stop := startFlushLoop(5*time.Millisecond, func() error {
		atomic.AddInt64(&calls, 1)
		return errors.New("flush failed")
	})

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt64(&calls) < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	stop()

	if atomic.LoadInt64(&calls) < 2 {
		t.Fatalf("worker must keep ticking past flush errors")
	}
}
