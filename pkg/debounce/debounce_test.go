package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTriggerCollapsesRapidCalls(t *testing.T) {
	d := New(30 * time.Millisecond)
	var calls atomic.Int32
	var last atomic.Value

	for _, input := range []string{"r", "re", "ref"} {
		input := input
		d.Trigger(func() {
			calls.Add(1)
			last.Store(input)
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(80 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one callback, got %d", got)
	}
	if got := last.Load(); got != "ref" {
		t.Fatalf("expected the latest input to win, got %v", got)
	}
}

func TestStopCancelsPending(t *testing.T) {
	d := New(20 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Fatalf("expected no callback after Stop, got %d", got)
	}
}

func TestTriggerAfterStopStillFires(t *testing.T) {
	d := New(10 * time.Millisecond)
	var calls atomic.Int32
	d.Stop()
	d.Trigger(func() { calls.Add(1) })

	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one callback, got %d", got)
	}
}
