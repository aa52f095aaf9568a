// Package dynamo provides core primitives for discrete dynamical maps.
//
// The package defines the value types and interfaces shared by the
// generation and rendering pipeline:
//
//   - [Point]: a position in the phase plane
//   - [Params]: alpha, sigma and mu of one Gumowski–Mira recurrence
//   - [Variant]: simple or standard form of the recurrence
//   - [Map]: one step of a discrete system
//   - [Config]: initial point, iteration count and skip prefix
//
// # Example
//
//	m := maps.New(dynamo.Standard, dynamo.Params{Alpha: 0.009, Sigma: 0.05, Mu: -0.801})
//	points, _ := sim.Generate(m, dynamo.Point{X: 1, Y: 1}, 20000, 0)
//
// # Errors
//
// Invalid inputs are reported with the sentinel errors in this package,
// wrapped with context; test them with errors.Is.
package dynamo
