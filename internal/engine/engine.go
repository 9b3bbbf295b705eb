// Package engine drives the control loop: it calibrates the attractor
// family, steps the active trajectory on a period, normalizes its state and
// turns it into three CV outputs and three gate booleans.
package engine

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/chaoscv/internal/calib"
	"github.com/san-kum/chaoscv/internal/event"
	"github.com/san-kum/chaoscv/internal/physics"
)

const (
	// MaxOutput caps the output voltage range. Cranking this up may cause
	// issues with some downstream modules.
	MaxOutput = 5

	// ThresholdSteps is the size of the discrete gate-threshold domain;
	// values run 0..ThresholdSteps-1.
	ThresholdSteps = 41

	DefaultPeriod    = 100 * time.Millisecond
	DefaultThreshold = 20
)

type Phase int

const (
	Calibrating Phase = iota
	Running
)

// Knobs supplies the two continuous control readings, each nominally in
// [0,100]. Out-of-domain readings are clamped by the engine.
type Knobs interface {
	Speed() float64
	Threshold() float64
}

// OutputSink receives the six derived signals. Voltage channels are 1..3,
// gate channels 4..6.
type OutputSink interface {
	SetVoltage(ch int, v float64)
	SetGate(ch int, on bool)
}

// Display renders engine status. May be nil on a Controller.
type Display interface {
	Calibrating(model string)
	Render(Snapshot)
}

// Snapshot is one consistent view of a tick's results.
type Snapshot struct {
	Model     string
	Scaled    [3]float64
	Voltages  [3]float64
	Gates     [3]bool
	Period    time.Duration
	Threshold int
	Range     int
	Frozen    bool
	Detail    bool
}

// Controller owns the active selection, timing, thresholds, output range and
// freeze state. All mutating methods must be called from a single goroutine;
// concurrent producers talk to it through the event queue only.
type Controller struct {
	attractors []*physics.Attractor
	bounds     []calib.Bounds
	phase      Phase

	selected   int
	period     time.Duration
	threshold  int
	vrange     int
	maxOutput  int
	frozen     bool
	detail     bool
	lastUpdate time.Time

	queue   *event.Queue
	sink    OutputSink
	display Display
	rng     *rand.Rand

	snap  Snapshot
	evbuf []event.Event
}

// Options overrides the fixed startup defaults. Zero values fall back to the
// defaults; everything here is runtime-only and resets on process start.
type Options struct {
	Period    time.Duration
	Threshold int
	Range     int
	MaxOutput int
	Detail    bool
	Seed      int64
}

func New(attractors []*physics.Attractor, queue *event.Queue, sink OutputSink, display Display, opts Options) *Controller {
	if opts.MaxOutput <= 0 {
		opts.MaxOutput = MaxOutput
	}
	if opts.Period <= 0 {
		opts.Period = DefaultPeriod
	}
	if opts.Range <= 0 || opts.Range > opts.MaxOutput {
		opts.Range = opts.MaxOutput
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	return &Controller{
		attractors: attractors,
		bounds:     make([]calib.Bounds, len(attractors)),
		phase:      Calibrating,
		period:     opts.Period,
		threshold:  opts.Threshold,
		vrange:     opts.Range,
		maxOutput:  opts.MaxOutput,
		detail:     opts.Detail,
		queue:      queue,
		sink:       sink,
		display:    display,
		rng:        rand.New(rand.NewSource(opts.Seed)),
		evbuf:      make([]event.Event, 0, 16),
	}
}

// CalibrateOne runs the warm-up pass for the attractor at index i and stores
// its bounds. Partial bounds are stored even when the pass errors out.
func (c *Controller) CalibrateOne(i, steps int) error {
	a := c.attractors[i]
	if c.display != nil {
		c.display.Calibrating(a.Name())
	}
	b, err := calib.Calibrate(a, steps)
	c.bounds[i] = b
	if err != nil {
		return fmt.Errorf("calibrating %s: %w", a.Name(), err)
	}
	return nil
}

// Calibrate runs the blocking startup pass over the whole family, then
// selects one attractor pseudo-randomly and enters the Running phase.
func (c *Controller) Calibrate(steps int) error {
	for i := range c.attractors {
		if err := c.CalibrateOne(i, steps); err != nil {
			return err
		}
	}
	c.Start()
	return nil
}

// Start enters the Running phase. Calibration of every attractor must have
// happened already; the phase never returns to Calibrating.
func (c *Controller) Start() {
	c.selected = c.rng.Intn(len(c.attractors))
	c.phase = Running
}

func (c *Controller) Phase() Phase  { return c.phase }
func (c *Controller) Selected() int { return c.selected }
func (c *Controller) Len() int      { return len(c.attractors) }

// ModelName returns the name of the attractor at index i.
func (c *Controller) ModelName(i int) string { return c.attractors[i].Name() }

// Active returns the attractor currently driving the outputs.
func (c *Controller) Active() *physics.Attractor {
	return c.attractors[c.selected]
}
func (c *Controller) Bounds(i int) calib.Bounds { return c.bounds[i] }
func (c *Controller) Snapshot() Snapshot        { return c.snap }
func (c *Controller) Period() time.Duration     { return c.period }
func (c *Controller) Threshold() int            { return c.threshold }
func (c *Controller) Range() int                { return c.vrange }
func (c *Controller) Frozen() bool              { return c.frozen }
func (c *Controller) Detail() bool              { return c.detail }

// Select makes the attractor at index i active. Used by the headless runner;
// the panel cycles with SelectNext.
func (c *Controller) Select(i int) {
	c.selected = ((i % len(c.attractors)) + len(c.attractors)) % len(c.attractors)
}

// SelectNext cycles the active attractor forward. No trajectory is reset, so
// the outputs jump to wherever the next attractor's coordinates last were.
func (c *Controller) SelectNext() {
	c.selected = (c.selected + 1) % len(c.attractors)
}

// AdjustRange adds delta to the output range, clamped to [1, MaxOutput].
func (c *Controller) AdjustRange(delta int) {
	c.vrange += delta
	if c.vrange < 1 {
		c.vrange = 1
	}
	if c.vrange > c.maxOutput {
		c.vrange = c.maxOutput
	}
}

// SetPeriodFromKnob maps a knob position in [0,100] onto the tick period.
// Piecewise linear: fully CCW is 1000ms, noon is 100ms, fully CW is 10ms.
func (c *Controller) SetPeriodFromKnob(v float64) {
	v = clampKnob(v)
	const (
		low  = 1000.0 // CCW
		mid  = 100.0  // noon
		high = 10.0   // CW
	)
	var ms float64
	switch {
	case v == 0:
		ms = low
	case v < 50:
		ms = low - (low-mid)*(v/50)
	default:
		ms = mid - (mid-high)*(v-50)/50
	}
	c.period = time.Duration(ms * float64(time.Millisecond))
}

// SetThresholdFromKnob maps a knob position in [0,100] onto the discrete
// 41-step gate threshold domain.
func (c *Controller) SetThresholdFromKnob(v float64) {
	v = clampKnob(v)
	step := int(v / 100 * ThresholdSteps)
	if step > ThresholdSteps-1 {
		step = ThresholdSteps - 1
	}
	c.threshold = step
}

func clampKnob(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func (c *Controller) Freeze()   { c.frozen = true }
func (c *Controller) Unfreeze() { c.frozen = false }

// ToggleDetail flips the display-detail flag.
func (c *Controller) ToggleDetail() { c.detail = !c.detail }

// HandleEvent applies one queued input event.
func (c *Controller) HandleEvent(ev event.Event) {
	switch ev {
	case event.ShortPress1:
		c.AdjustRange(-1)
	case event.LongPress1:
		// Jumps the outputs, as each attractor keeps its own coordinates.
		c.SelectNext()
	case event.ShortPress2:
		c.AdjustRange(1)
	case event.LongPress2:
		c.ToggleDetail()
	case event.FreezeOn:
		c.Freeze()
	case event.FreezeOff:
		c.Unfreeze()
	}
}

// DrainEvents applies everything pending on the queue.
func (c *Controller) DrainEvents() {
	c.evbuf = c.queue.Drain(c.evbuf[:0])
	for _, ev := range c.evbuf {
		c.HandleEvent(ev)
	}
}

// Tick runs one output update if the period has elapsed. The active
// trajectory is stepped unless frozen; frozen ticks recompute and re-emit
// from the unchanged state. All six outputs come from the same post-step
// snapshot. Reports whether an update ran.
func (c *Controller) Tick(now time.Time) bool {
	if c.phase != Running {
		return false
	}
	if now.Sub(c.lastUpdate) < c.period {
		return false
	}

	a := c.attractors[c.selected]
	if !c.frozen {
		a.Step()
	}
	x := a.State()
	b := c.bounds[c.selected]

	var snap Snapshot
	snap.Model = a.Name()
	snap.Period = c.period
	snap.Threshold = c.threshold
	snap.Range = c.vrange
	snap.Frozen = c.frozen
	snap.Detail = c.detail

	for i := 0; i < 3; i++ {
		snap.Scaled[i] = b.Scaled(i, x[i])
		snap.Voltages[i] = float64(c.vrange) * snap.Scaled[i] / 100.0
	}

	sx, sy, sz := snap.Scaled[0], snap.Scaled[1], snap.Scaled[2]
	th := float64(c.threshold)
	snap.Gates[0] = int(math.Floor(sx))%2 == 0
	snap.Gates[1] = math.Abs(sy+sz-2*sx) > th
	snap.Gates[2] = math.Abs(sz+sx-2*sy) > th

	if c.sink != nil {
		for i := 0; i < 3; i++ {
			c.sink.SetVoltage(i+1, snap.Voltages[i])
		}
		for i := 0; i < 3; i++ {
			c.sink.SetGate(i+4, snap.Gates[i])
		}
	}
	if c.display != nil {
		c.display.Render(snap)
	}

	c.snap = snap
	c.lastUpdate = now
	return true
}

// Poll is one loop iteration: sample both knobs, drain queued input events,
// then attempt a tick. Knob sampling is not throttled by the period; only
// the tick computation is.
func (c *Controller) Poll(knobs Knobs, now time.Time) bool {
	if knobs != nil {
		c.SetPeriodFromKnob(knobs.Speed())
		c.SetThresholdFromKnob(knobs.Threshold())
	}
	c.DrainEvents()
	return c.Tick(now)
}

// Run calibrates the family and then polls until the context is cancelled.
// Best-effort periodic, not hard real-time: the loop sleeps briefly between
// iterations instead of spinning.
func (c *Controller) Run(ctx context.Context, knobs Knobs, calibSteps int) error {
	if err := c.Calibrate(calibSteps); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		c.Poll(knobs, time.Now())
		time.Sleep(time.Millisecond)
	}
}
