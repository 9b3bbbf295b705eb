// Package dynamo provides the core primitives for stepping the attractor
// family numerically.
//
// The package defines the fundamental interfaces and types shared by the
// equation systems and integrators:
//
//   - [State]: vector holding the (x, y, z) point of a trajectory
//   - [System]: interface for the ODE right-hand side (dX/dt = f(X, t))
//   - [Integrator]: numerical stepping interface
//   - [Observer]: per-step trajectory observation (used by calibration)
//
// # Thread safety
//
// Nothing here is safe for concurrent use. The control loop owns all
// trajectory state and steps it from a single goroutine.
package dynamo
