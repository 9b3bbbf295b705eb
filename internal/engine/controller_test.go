package engine_test

import (
	"context"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaoscv/internal/engine"
	"github.com/san-kum/chaoscv/internal/event"
	"github.com/san-kum/chaoscv/internal/physics"
)

const calibSteps = 2000

type captureSink struct {
	voltages map[int]float64
	gates    map[int]bool
	emits    int
}

func newCaptureSink() *captureSink {
	return &captureSink{
		voltages: make(map[int]float64),
		gates:    make(map[int]bool),
	}
}

func (s *captureSink) SetVoltage(ch int, v float64) {
	s.voltages[ch] = v
	s.emits++
}

func (s *captureSink) SetGate(ch int, on bool) {
	s.gates[ch] = on
}

type fixedKnobs struct{ speed, threshold float64 }

func (k fixedKnobs) Speed() float64     { return k.speed }
func (k fixedKnobs) Threshold() float64 { return k.threshold }

var _ = Describe("Controller", func() {
	var (
		queue *event.Queue
		sink  *captureSink
		ctrl  *engine.Controller
	)

	newController := func(seed int64) *engine.Controller {
		queue = event.NewQueue()
		sink = newCaptureSink()
		return engine.New(physics.All(0.01), queue, sink, nil, engine.Options{Seed: seed})
	}

	BeforeEach(func() {
		ctrl = newController(1)
	})

	Describe("speed knob mapping", func() {
		It("hits the documented breakpoints", func() {
			ctrl.SetPeriodFromKnob(0)
			Expect(ctrl.Period()).To(Equal(time.Second))
			ctrl.SetPeriodFromKnob(50)
			Expect(ctrl.Period()).To(Equal(100 * time.Millisecond))
			ctrl.SetPeriodFromKnob(100)
			Expect(ctrl.Period()).To(Equal(10 * time.Millisecond))
		})

		It("decreases monotonically across the knob travel", func() {
			prev := time.Duration(math.MaxInt64)
			for v := 0.0; v <= 100; v += 2.5 {
				ctrl.SetPeriodFromKnob(v)
				Expect(ctrl.Period()).To(BeNumerically("<", prev))
				prev = ctrl.Period()
			}
		})

		It("clamps out-of-domain readings", func() {
			ctrl.SetPeriodFromKnob(-10)
			Expect(ctrl.Period()).To(Equal(time.Second))
			ctrl.SetPeriodFromKnob(140)
			Expect(ctrl.Period()).To(Equal(10 * time.Millisecond))
		})
	})

	Describe("threshold knob mapping", func() {
		It("covers the 41-step domain", func() {
			ctrl.SetThresholdFromKnob(0)
			Expect(ctrl.Threshold()).To(Equal(0))
			ctrl.SetThresholdFromKnob(50)
			Expect(ctrl.Threshold()).To(Equal(20))
			ctrl.SetThresholdFromKnob(100)
			Expect(ctrl.Threshold()).To(Equal(engine.ThresholdSteps - 1))
		})

		It("never leaves the discrete domain", func() {
			for v := -20.0; v <= 120; v += 0.7 {
				ctrl.SetThresholdFromKnob(v)
				Expect(ctrl.Threshold()).To(BeNumerically(">=", 0))
				Expect(ctrl.Threshold()).To(BeNumerically("<=", engine.ThresholdSteps-1))
			}
		})
	})

	Describe("output range", func() {
		It("clamps to [1, MaxOutput] under repeated adjustment", func() {
			for i := 0; i < 20; i++ {
				ctrl.AdjustRange(-1)
			}
			Expect(ctrl.Range()).To(Equal(1))

			ctrl.AdjustRange(-5)
			Expect(ctrl.Range()).To(Equal(1))

			for i := 0; i < 20; i++ {
				ctrl.AdjustRange(1)
			}
			Expect(ctrl.Range()).To(Equal(engine.MaxOutput))

			ctrl.AdjustRange(7)
			Expect(ctrl.Range()).To(Equal(engine.MaxOutput))
		})
	})

	Describe("phases", func() {
		It("starts in Calibrating and refuses to tick", func() {
			Expect(ctrl.Phase()).To(Equal(engine.Calibrating))
			Expect(ctrl.Tick(time.Now())).To(BeFalse())
			Expect(sink.emits).To(BeZero())
		})

		It("enters Running after calibration and stays there", func() {
			Expect(ctrl.Calibrate(calibSteps)).To(Succeed())
			Expect(ctrl.Phase()).To(Equal(engine.Running))
			Expect(ctrl.Selected()).To(BeNumerically(">=", 0))
			Expect(ctrl.Selected()).To(BeNumerically("<", ctrl.Len()))
		})

		It("selects the initial attractor from the seed", func() {
			a := newController(7)
			b := newController(7)
			Expect(a.Calibrate(500)).To(Succeed())
			Expect(b.Calibrate(500)).To(Succeed())
			Expect(a.Selected()).To(Equal(b.Selected()))
		})
	})

	Describe("selection", func() {
		BeforeEach(func() {
			Expect(ctrl.Calibrate(calibSteps)).To(Succeed())
			ctrl.Select(0)
		})

		It("cycles forward with wrap-around", func() {
			for i := 1; i <= ctrl.Len(); i++ {
				ctrl.SelectNext()
				Expect(ctrl.Selected()).To(Equal(i % ctrl.Len()))
			}
		})

		It("does not reset any trajectory on switch", func() {
			t0 := time.Unix(0, 0)
			ctrl.Tick(t0.Add(ctrl.Period()))
			moved := ctrl.Active().State().Clone()

			ctrl.SelectNext()
			ctrl.SelectNext()
			ctrl.SelectNext()
			ctrl.SelectNext()
			Expect(ctrl.Selected()).To(Equal(0))
			Expect([]float64(ctrl.Active().State())).To(Equal([]float64(moved)))
		})
	})

	Describe("tick", func() {
		var t0 time.Time

		BeforeEach(func() {
			Expect(ctrl.Calibrate(calibSteps)).To(Succeed())
			ctrl.Select(0)
			t0 = time.Unix(0, 0)
		})

		It("throttles by the period", func() {
			Expect(ctrl.Tick(t0.Add(ctrl.Period()))).To(BeTrue())
			emitted := sink.emits

			Expect(ctrl.Tick(t0.Add(ctrl.Period() + ctrl.Period()/2))).To(BeFalse())
			Expect(sink.emits).To(Equal(emitted))

			Expect(ctrl.Tick(t0.Add(2 * ctrl.Period()))).To(BeTrue())
		})

		It("derives voltages from the scaled axes and the range", func() {
			ctrl.Tick(t0.Add(ctrl.Period()))
			snap := ctrl.Snapshot()
			for i := 0; i < 3; i++ {
				want := float64(snap.Range) * snap.Scaled[i] / 100.0
				Expect(snap.Voltages[i]).To(Equal(want))
				Expect(sink.voltages[i+1]).To(Equal(want))
			}
		})

		It("derives the gates from one consistent snapshot", func() {
			ctrl.Tick(t0.Add(ctrl.Period()))
			snap := ctrl.Snapshot()
			sx, sy, sz := snap.Scaled[0], snap.Scaled[1], snap.Scaled[2]
			th := float64(snap.Threshold)

			Expect(snap.Gates[0]).To(Equal(int(math.Floor(sx))%2 == 0))
			Expect(snap.Gates[1]).To(Equal(math.Abs(sy+sz-2*sx) > th))
			Expect(snap.Gates[2]).To(Equal(math.Abs(sz+sx-2*sy) > th))
			for i := 0; i < 3; i++ {
				Expect(sink.gates[i+4]).To(Equal(snap.Gates[i]))
			}
		})

		It("fires gate 5 whenever the spread beats a zero threshold", func() {
			ctrl.SetThresholdFromKnob(0)
			ctrl.Tick(t0.Add(ctrl.Period()))
			snap := ctrl.Snapshot()
			if math.Abs(snap.Scaled[1]+snap.Scaled[2]-2*snap.Scaled[0]) > 0 {
				Expect(snap.Gates[1]).To(BeTrue())
			}
		})
	})

	Describe("freeze", func() {
		var t0 time.Time

		BeforeEach(func() {
			Expect(ctrl.Calibrate(calibSteps)).To(Succeed())
			ctrl.Select(0)
			t0 = time.Unix(0, 0)
		})

		It("suspends stepping but keeps emitting", func() {
			ctrl.Tick(t0.Add(ctrl.Period()))
			ctrl.Freeze()

			frozen := ctrl.Active().State().Clone()
			firstSnap := ctrl.Snapshot()

			ctrl.Tick(t0.Add(2 * ctrl.Period()))
			ctrl.Tick(t0.Add(3 * ctrl.Period()))

			Expect([]float64(ctrl.Active().State())).To(Equal([]float64(frozen)))
			snap := ctrl.Snapshot()
			Expect(snap.Scaled).To(Equal(firstSnap.Scaled))
			Expect(snap.Voltages).To(Equal(firstSnap.Voltages))
			Expect(snap.Gates).To(Equal(firstSnap.Gates))
			Expect(snap.Frozen).To(BeTrue())
		})

		It("resumes from the exact frozen point", func() {
			ctrl.Tick(t0.Add(ctrl.Period())) // step 1
			ctrl.Freeze()
			ctrl.Tick(t0.Add(2 * ctrl.Period()))
			ctrl.Tick(t0.Add(3 * ctrl.Period()))
			ctrl.Unfreeze()
			ctrl.Tick(t0.Add(4 * ctrl.Period())) // step 2

			control := physics.NewAttractor(physics.NewLorenz(), 0.01)
			control.Step()
			control.Step()
			Expect([]float64(ctrl.Active().State())).To(Equal([]float64(control.State())))
		})
	})

	Describe("input events", func() {
		BeforeEach(func() {
			Expect(ctrl.Calibrate(calibSteps)).To(Succeed())
			ctrl.Select(0)
		})

		It("maps button events onto operations", func() {
			queue.Push(event.ShortPress1)
			ctrl.DrainEvents()
			Expect(ctrl.Range()).To(Equal(engine.MaxOutput - 1))

			queue.Push(event.ShortPress2)
			ctrl.DrainEvents()
			Expect(ctrl.Range()).To(Equal(engine.MaxOutput))

			queue.Push(event.LongPress1)
			ctrl.DrainEvents()
			Expect(ctrl.Selected()).To(Equal(1))

			detail := ctrl.Detail()
			queue.Push(event.LongPress2)
			ctrl.DrainEvents()
			Expect(ctrl.Detail()).To(Equal(!detail))
		})

		It("engages and releases freeze on level edges", func() {
			queue.Push(event.FreezeOn)
			ctrl.DrainEvents()
			Expect(ctrl.Frozen()).To(BeTrue())

			queue.Push(event.FreezeOff)
			ctrl.DrainEvents()
			Expect(ctrl.Frozen()).To(BeFalse())
		})

		It("drains everything queued in one poll", func() {
			queue.Push(event.ShortPress1)
			queue.Push(event.ShortPress1)
			queue.Push(event.ShortPress1)
			ctrl.Poll(nil, time.Unix(0, 0))
			Expect(ctrl.Range()).To(Equal(engine.MaxOutput - 3))
		})
	})

	Describe("polling", func() {
		It("samples knobs every iteration regardless of the tick boundary", func() {
			Expect(ctrl.Calibrate(calibSteps)).To(Succeed())
			t0 := time.Unix(0, 0)

			ctrl.Poll(fixedKnobs{speed: 0, threshold: 100}, t0.Add(time.Millisecond))
			Expect(ctrl.Period()).To(Equal(time.Second))
			Expect(ctrl.Threshold()).To(Equal(engine.ThresholdSteps - 1))

			// Knob moves land even when no tick fires.
			ctrl.Poll(fixedKnobs{speed: 100, threshold: 0}, t0.Add(2*time.Millisecond))
			Expect(ctrl.Period()).To(Equal(10 * time.Millisecond))
			Expect(ctrl.Threshold()).To(Equal(0))
		})
	})

	Describe("run loop", func() {
		It("calibrates, ticks on wall time and stops on cancel", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() {
				done <- ctrl.Run(ctx, fixedKnobs{speed: 100, threshold: 50}, calibSteps)
			}()

			// 100 on the speed knob is a 10ms period, so this window is
			// enough for calibration plus several ticks.
			time.Sleep(100 * time.Millisecond)
			cancel()
			Eventually(done).Should(Receive(MatchError(context.Canceled)))

			// The goroutine has exited; reads below are ordered after it.
			Expect(ctrl.Phase()).To(Equal(engine.Running))
			Expect(sink.emits).To(BeNumerically(">", 0))
		})
	})
})
