// Package maps implements discrete planar maps for attractor exploration.
//
// The Gumowski–Mira recurrence is defined through the nonlinear term
//
//	g(x) = mu*x + 2*(1-mu)*x² / (1+x²)
//
// and comes in two forms:
//
//	simple:   x' = y + g(x)                      y' = -x + g(x')
//	standard: x' = y + alpha*y*(1 - sigma*y²) + g(x)   y' = -x + g(x')
//
// [NextPoint] is pure; [GumowskiMira] binds a parameter set so it can be
// driven by the sim package and tuned through [dynamo.Configurable].
package maps
