package physics

import (
	"fmt"

	"github.com/san-kum/chaoscv/internal/dynamo"
)

type Rikitake struct{ a, mu float64 }

func NewRikitake() *Rikitake      { return &Rikitake{5.0, 2.0} }
func (r *Rikitake) Name() string  { return "Rikitake" }
func (r *Rikitake) StateDim() int { return 3 }

// Derive calculates the Rikitake two-disc dynamo derivatives.
func (r *Rikitake) Derive(s dynamo.State, _ float64) dynamo.State {
	return dynamo.State{-r.mu*s[0] + s[2]*s[1], -r.mu*s[1] + s[0]*(s[2]-r.a), 1 - s[0]*s[1]}
}

func (r *Rikitake) InitialState() dynamo.State { return dynamo.State{0.1, 0.0, -0.1} }

func (r *Rikitake) GetParams() map[string]float64 {
	return map[string]float64{"a": r.a, "mu": r.mu}
}

func (r *Rikitake) SetParam(n string, v float64) error {
	switch n {
	case "a":
		r.a = v
	case "mu":
		r.mu = v
	default:
		return fmt.Errorf("rikitake: unknown parameter %q", n)
	}
	return nil
}
