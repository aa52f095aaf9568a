// Package viz turns a point sequence into drawing calls.
//
// The pipeline has three steps:
//
//   - [ComputeBounds]: axis-aligned min/max of the sequence
//   - [Scale]: affine [Transform] from data space into a padded [Viewport]
//   - [Render]: clear the surface and fill one disc per point
//
// [Visualize] runs all three and draws nothing if any step fails, so a
// rejected request leaves the previous frame visible.
//
// Rendering targets the [Surface] capability interface. [Canvas] is a
// braille terminal implementation; raster and vector surfaces live in the
// export package.
package viz
