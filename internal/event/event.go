// Package event decouples input edges from the control loop. Edge detectors
// classify raw presses and level changes into discrete events and push them
// onto a bounded queue; the engine drains the queue once per loop iteration.
package event

import "time"

type Event int

const (
	ShortPress1 Event = iota
	LongPress1
	ShortPress2
	LongPress2
	FreezeOn
	FreezeOff
)

func (e Event) String() string {
	switch e {
	case ShortPress1:
		return "short_press_1"
	case LongPress1:
		return "long_press_1"
	case ShortPress2:
		return "short_press_2"
	case LongPress2:
		return "long_press_2"
	case FreezeOn:
		return "freeze_on"
	case FreezeOff:
		return "freeze_off"
	}
	return "unknown"
}

// LongPressCutoff separates short from long button presses, measured from
// press to release.
const LongPressCutoff = 300 * time.Millisecond

// Button classifies press/release pairs into short- or long-press events.
// Press and Release are O(1) and non-blocking, safe to call from an edge
// callback.
type Button struct {
	q           *Queue
	short, long Event
	pressedAt   time.Time
	down        bool
}

func NewButton(q *Queue, short, long Event) *Button {
	return &Button{q: q, short: short, long: long}
}

func (b *Button) Press(now time.Time) {
	b.pressedAt = now
	b.down = true
}

// Release classifies the press by its duration and enqueues the event. A
// release without a preceding press is ignored.
func (b *Button) Release(now time.Time) {
	if !b.down {
		return
	}
	b.down = false
	if now.Sub(b.pressedAt) >= LongPressCutoff {
		b.q.Push(b.long)
		return
	}
	b.q.Push(b.short)
}

// Level turns a level-triggered digital input into freeze edge events:
// rising enqueues FreezeOn, falling enqueues FreezeOff.
type Level struct {
	q    *Queue
	high bool
}

func NewLevel(q *Queue) *Level {
	return &Level{q: q}
}

func (l *Level) Set(high bool) {
	if high == l.high {
		return
	}
	l.high = high
	if high {
		l.q.Push(FreezeOn)
		return
	}
	l.q.Push(FreezeOff)
}
