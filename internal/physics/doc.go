// Package physics provides the fixed family of strange attractors used as
// chaotic modulation sources.
//
// Each equation system implements the [dynamo.System] interface; the family is
// closed and enumerated by [All]:
//
//   - [Lorenz]: the classic butterfly attractor
//   - [PanXuZhou]: a Lorenz-like system with stronger cross-coupling
//   - [Rikitake]: two-disc dynamo model of geomagnetic reversal
//   - [Rossler]: spiral attractor; see the caution on its z coordinate
//
// An [Attractor] wraps a system together with its trajectory state and steps
// it with forward Euler at a fixed timestep. Systems also implement
// [dynamo.Configurable] for runtime parameter adjustment.
package physics
