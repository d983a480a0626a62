// Package raster turns iteration grids into images.
//
// [Render] colours every lattice pixel of a [fractal.GridView] and
// replicates the colour over the pixel's stride×stride block, so chunked
// passes render as blocky previews without any averaging. Escaped pixels
// are coloured from a three-colour [Scheme]: a linear blend from the outer
// colour towards the edge colour, or a hue rotation starting at the outer
// colour. Inside pixels use the inner colour. Histogram scaling spreads the
// colours by rank instead of raw iteration count.
//
// Overlays are drawn with gg: [DrawOrbit] traces a tracked orbit and
// [DrawBoxes] shows the boxes counted by a dimension pass. [Scale] resizes
// finished images and [EncodePNG] writes them out.
//
// [Mask] is the inside/outside bitmap consumed by the dimension estimator.
package raster
