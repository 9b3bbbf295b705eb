package physics

import (
	"fmt"

	"github.com/san-kum/chaoscv/internal/dynamo"
)

type Lorenz struct{ s, r, b float64 }

func NewLorenz() *Lorenz        { return &Lorenz{10.0, 28.0, 2.667} }
func (l *Lorenz) Name() string  { return "Lorenz" }
func (l *Lorenz) StateDim() int { return 3 }

// Derive calculates the Lorenz attractor derivatives.
func (l *Lorenz) Derive(s dynamo.State, _ float64) dynamo.State {
	return dynamo.State{l.s * (s[1] - s[0]), l.r*s[0] - s[1] - s[0]*s[2], s[0]*s[1] - l.b*s[2]}
}

func (l *Lorenz) InitialState() dynamo.State { return dynamo.State{0.0, 1.0, 1.05} }

func (l *Lorenz) GetParams() map[string]float64 {
	return map[string]float64{"s": l.s, "r": l.r, "b": l.b}
}

func (l *Lorenz) SetParam(n string, v float64) error {
	switch n {
	case "s":
		l.s = v
	case "r":
		l.r = v
	case "b":
		l.b = v
	default:
		return fmt.Errorf("lorenz: unknown parameter %q", n)
	}
	return nil
}
