// Package analysis characterises orbits of planar maps.
//
//   - [LyapunovExponent]: largest Lyapunov exponent via orbit separation
//   - [Classify]: divergent, fixed, periodic, quasi-periodic or chaotic
//   - [BifurcationDiagram]: parameter sweep recording the attractor's values
//   - [PowerSpectrum], [DominantPeriod]: spectral view of one coordinate
//   - [PortraitToASCII]: terminal scatter of an orbit
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda, err := analysis.LyapunovExponent(m, x0, 10000, 1000, 1e-9)
//	if err == nil && lambda > 0 {
//	    // orbit is chaotic
//	}
package analysis
