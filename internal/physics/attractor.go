package physics

import (
	"fmt"
	"strings"

	"github.com/san-kum/chaoscv/internal/dynamo"
	"github.com/san-kum/chaoscv/internal/integrators"
)

const DefaultDt = 0.01

// Model is one member of the closed attractor family: an equation system with
// a name and a fixed starting point.
type Model interface {
	dynamo.System
	Name() string
	InitialState() dynamo.State
}

// Attractor owns the live trajectory of one Model. Each Attractor keeps its
// own coordinates; nothing synchronizes state across the family, so switching
// the active one mid-run jumps to wherever that trajectory last was.
type Attractor struct {
	model Model
	integ dynamo.Integrator
	state dynamo.State
	t     float64
	dt    float64
}

func NewAttractor(m Model, dt float64) *Attractor {
	return &Attractor{
		model: m,
		integ: integrators.NewEuler(),
		state: m.InitialState().Clone(),
		dt:    dt,
	}
}

// Step advances the trajectory by one forward-Euler timestep.
func (a *Attractor) Step() {
	a.state = a.integ.Step(a.model, a.state, a.t, a.dt)
	a.t += a.dt
}

// State returns the current point. Callers must not mutate it.
func (a *Attractor) State() dynamo.State { return a.state }

func (a *Attractor) Name() string { return a.model.Name() }
func (a *Attractor) Dt() float64  { return a.dt }
func (a *Attractor) Model() Model { return a.model }

// Reset puts the trajectory back at the model's initial point.
func (a *Attractor) Reset() {
	a.state = a.model.InitialState().Clone()
	a.t = 0
}

// All returns the full family in its fixed order.
func All(dt float64) []*Attractor {
	return []*Attractor{
		NewAttractor(NewLorenz(), dt),
		NewAttractor(NewPanXuZhou(), dt),
		NewAttractor(NewRikitake(), dt),
		NewAttractor(NewRossler(), dt),
	}
}

// Lookup builds a single attractor by name (case-insensitive, punctuation
// ignored, so "pan-xu-zhou" and "panxuzhou" both match).
func Lookup(name string, dt float64) (*Attractor, error) {
	key := strings.ToLower(strings.ReplaceAll(name, "-", ""))
	var m Model
	switch key {
	case "lorenz":
		m = NewLorenz()
	case "panxuzhou":
		m = NewPanXuZhou()
	case "rikitake":
		m = NewRikitake()
	case "rossler":
		m = NewRossler()
	default:
		return nil, fmt.Errorf("unknown attractor %q", name)
	}
	return NewAttractor(m, dt), nil
}

// Names lists the family in selection order.
func Names() []string {
	return []string{"lorenz", "panxuzhou", "rikitake", "rossler"}
}
