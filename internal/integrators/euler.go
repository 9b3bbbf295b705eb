package integrators

import "github.com/san-kum/chaoscv/internal/dynamo"

// Euler is the production stepper. The derivative for every axis is taken
// from the pre-step snapshot x before any component is advanced.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t float64, dt float64) dynamo.State {
	dx := dyn.Derive(x, t)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
