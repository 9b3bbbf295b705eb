package event

import (
	"testing"
	"time"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	q.Push(ShortPress1)
	q.Push(LongPress2)
	q.Push(FreezeOn)

	got := q.Drain(nil)
	want := []Event{ShortPress1, LongPress2, FreezeOn}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	if rest := q.Drain(nil); len(rest) != 0 {
		t.Errorf("expected empty queue after drain, got %d events", len(rest))
	}
}

func TestQueueEmptyDrain(t *testing.T) {
	q := NewQueue()
	if got := q.Drain(nil); got != nil {
		t.Errorf("expected nil from empty queue, got %v", got)
	}
}

func TestQueueOverflowKeepsNewest(t *testing.T) {
	q := NewQueue()
	const n = queueSize + 6
	for i := 0; i < n; i++ {
		q.Push(Event(i % 6))
	}

	got := q.Drain(nil)
	if len(got) != queueSize {
		t.Fatalf("expected %d events after overflow, got %d", queueSize, len(got))
	}
	for i := range got {
		want := Event((n - queueSize + i) % 6)
		if got[i] != want {
			t.Fatalf("position %d: expected %v, got %v", i, want, got[i])
		}
	}
}

func TestQueueReusesBuffer(t *testing.T) {
	q := NewQueue()
	buf := make([]Event, 0, 8)
	q.Push(FreezeOff)
	got := q.Drain(buf)
	if len(got) != 1 || got[0] != FreezeOff {
		t.Fatalf("unexpected drain result: %v", got)
	}
}

func TestButtonShortPress(t *testing.T) {
	q := NewQueue()
	b := NewButton(q, ShortPress1, LongPress1)

	t0 := time.Now()
	b.Press(t0)
	b.Release(t0.Add(100 * time.Millisecond))

	got := q.Drain(nil)
	if len(got) != 1 || got[0] != ShortPress1 {
		t.Errorf("expected short press, got %v", got)
	}
}

func TestButtonLongPress(t *testing.T) {
	q := NewQueue()
	b := NewButton(q, ShortPress2, LongPress2)

	t0 := time.Now()
	b.Press(t0)
	b.Release(t0.Add(LongPressCutoff))

	got := q.Drain(nil)
	if len(got) != 1 || got[0] != LongPress2 {
		t.Errorf("expected long press at the cutoff, got %v", got)
	}
}

func TestButtonReleaseWithoutPress(t *testing.T) {
	q := NewQueue()
	b := NewButton(q, ShortPress1, LongPress1)
	b.Release(time.Now())

	if got := q.Drain(nil); len(got) != 0 {
		t.Errorf("expected no events, got %v", got)
	}
}

func TestLevelEdges(t *testing.T) {
	q := NewQueue()
	l := NewLevel(q)

	l.Set(true)
	l.Set(true) // no repeat on a held level
	l.Set(false)
	l.Set(false)
	l.Set(true)

	got := q.Drain(nil)
	want := []Event{FreezeOn, FreezeOff, FreezeOn}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestEventString(t *testing.T) {
	if ShortPress1.String() != "short_press_1" {
		t.Errorf("unexpected name %q", ShortPress1.String())
	}
	if Event(99).String() != "unknown" {
		t.Errorf("unexpected name for out-of-range event")
	}
}
