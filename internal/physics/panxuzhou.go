package physics

import (
	"fmt"

	"github.com/san-kum/chaoscv/internal/dynamo"
)

type PanXuZhou struct{ a, b, c float64 }

func NewPanXuZhou() *PanXuZhou     { return &PanXuZhou{10.0, 2.667, 16.0} }
func (p *PanXuZhou) Name() string  { return "Pan-Xu-Zhou" }
func (p *PanXuZhou) StateDim() int { return 3 }

// Derive calculates the Pan-Xu-Zhou attractor derivatives.
func (p *PanXuZhou) Derive(s dynamo.State, _ float64) dynamo.State {
	return dynamo.State{p.a * (s[1] - s[0]), p.c*s[0] - s[0]*s[2], s[0]*s[1] - p.b*s[2]}
}

func (p *PanXuZhou) InitialState() dynamo.State { return dynamo.State{1.0, 1.0, 1.0} }

func (p *PanXuZhou) GetParams() map[string]float64 {
	return map[string]float64{"a": p.a, "b": p.b, "c": p.c}
}

func (p *PanXuZhou) SetParam(n string, v float64) error {
	switch n {
	case "a":
		p.a = v
	case "b":
		p.b = v
	case "c":
		p.c = v
	default:
		return fmt.Errorf("panxuzhou: unknown parameter %q", n)
	}
	return nil
}
