package physics

import (
	"fmt"

	"github.com/san-kum/chaoscv/internal/dynamo"
)

// Rossler's z coordinate sits near zero for long stretches, which dulls the
// gates derived from it. Known characteristic of the system, kept as is.
type Rossler struct{ a, b, c float64 }

func NewRossler() *Rossler       { return &Rossler{0.13, 0.2, 6.5} }
func (r *Rossler) Name() string  { return "Rossler" }
func (r *Rossler) StateDim() int { return 3 }

// Derive calculates the Rossler attractor derivatives.
func (r *Rossler) Derive(s dynamo.State, _ float64) dynamo.State {
	return dynamo.State{-s[1] - s[2], s[0] + r.a*s[1], r.b + s[2]*(s[0]-r.c)}
}

func (r *Rossler) InitialState() dynamo.State { return dynamo.State{0.1, 0.0, -0.1} }

func (r *Rossler) GetParams() map[string]float64 {
	return map[string]float64{"a": r.a, "b": r.b, "c": r.c}
}

func (r *Rossler) SetParam(n string, v float64) error {
	switch n {
	case "a":
		r.a = v
	case "b":
		r.b = v
	case "c":
		r.c = v
	default:
		return fmt.Errorf("rossler: unknown parameter %q", n)
	}
	return nil
}
