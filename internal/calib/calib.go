// Package calib estimates per-axis output bounds for an attractor and maps
// raw coordinates onto the nominal 0-100 scale used for CV generation.
package calib

import "github.com/san-kum/chaoscv/internal/dynamo"

const (
	// DefaultSteps is the length of the warm-up run used to estimate bounds.
	DefaultSteps = 100000

	// DefaultRange substitutes for an axis whose observed max equals its
	// min, so a degenerate trajectory never divides by zero.
	DefaultRange = 100.0
)

// Bounds holds the extremal values observed per axis during calibration.
// They are estimates: the live trajectory may later exceed them, and scaled
// values are deliberately not clamped when it does.
type Bounds struct {
	Min dynamo.State
	Max dynamo.State
}

func (b Bounds) Degenerate(axis int) bool {
	return b.Max[axis] == b.Min[axis]
}

// Range returns the calibrated span of an axis, falling back to DefaultRange
// when the axis is degenerate.
func (b Bounds) Range(axis int) float64 {
	r := b.Max[axis] - b.Min[axis]
	if r == 0 {
		return DefaultRange
	}
	return r
}

// Scaled maps v onto the nominal 0-100 scale for the given axis. Values
// outside the calibrated bounds map outside 0-100.
func (b Bounds) Scaled(axis int, v float64) float64 {
	return 100.0 * (v - b.Min[axis]) / b.Range(axis)
}

// Tracker observes a trajectory and keeps running per-axis extrema.
type Tracker struct {
	min, max dynamo.State
	primed   bool
}

func NewTracker() *Tracker { return &Tracker{} }

func (t *Tracker) OnStep(x dynamo.State, _ float64) {
	if !t.primed {
		t.min = x.Clone()
		t.max = x.Clone()
		t.primed = true
		return
	}
	for i, v := range x {
		if v < t.min[i] {
			t.min[i] = v
		}
		if v > t.max[i] {
			t.max[i] = v
		}
	}
}

func (t *Tracker) Bounds() Bounds {
	return Bounds{Min: t.min.Clone(), Max: t.max.Clone()}
}

func (t *Tracker) Reset() {
	t.min = nil
	t.max = nil
	t.primed = false
}

// Stepper is the slice of an attractor calibration needs.
type Stepper interface {
	Step()
	State() dynamo.State
	Reset()
}

// Calibrate runs steps iterations from the attractor's current point,
// tracking extrema starting at that point, then resets the trajectory to its
// initial state. Only the bounds survive the run. A trajectory that diverges
// to NaN or Inf mid-run yields the bounds gathered so far and a
// dynamo.StepError; combined with the Range fallback they are still usable.
func Calibrate(a Stepper, steps int) (Bounds, error) {
	tr := NewTracker()
	tr.OnStep(a.State(), 0)
	for i := 0; i < steps; i++ {
		a.Step()
		x := a.State()
		if !x.IsValid() {
			a.Reset()
			return tr.Bounds(), dynamo.StepError{Step: i + 1, Message: "trajectory diverged"}
		}
		tr.OnStep(x, 0)
	}
	a.Reset()
	return tr.Bounds(), nil
}
