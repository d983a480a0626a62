// Package fractal implements the escape-time engine for Mandelbrot and Julia
// sets over a pixel grid.
//
// # Overview
//
// A [Set] owns one iteration grid. For every pixel on the current sampling
// lattice it stores the escape count, the terminal orbit value, and a
// refined flag. Three kinds of pass update the grid:
//
//   - [Set.Iterate] with progressive false recomputes every lattice pixel.
//   - [Set.Iterate] with progressive true (and [Set.RefinePass]) computes
//     only pixels not yet refined in the current schedule.
//   - [Set.ExtendTo] raises the iteration cap by resuming each orbit from
//     its stored terminal value instead of restarting it.
//
// The per-pixel primitive is [IteratePoint]; [Resume] continues an orbit
// and [Track] returns it step by step. [Mapper] converts between pixels and
// plane points.
//
// # Chunking
//
// ChunkSize is a sampling stride, not a blur. Only pixels whose coordinates
// are multiples of the stride are computed; a rasterizer replicates each of
// them over its stride×stride block. [GridView.Count] performs that lookup.
//
// # Successive Refinement
//
// A [Refiner] runs progressive passes from a coarse power-of-two stride down
// to the chunk size on a background goroutine, delivering each [Pass] to a
// callback. Starting a new schedule cancels and waits for the old one.
//
// # Explorer
//
// [Explorer] pairs a Mandelbrot set with its Julia companion, whose c is
// bound to the Mandelbrot centre. Every navigation change is recorded as a
// [Snapshot] for undo and redo:
//
//	e, _ := fractal.NewExplorer(800, 600, fractal.DefaultParams())
//	_ = e.Iterate(ctx)
//	_ = e.ZoomBy(ctx, fractal.Mandelbrot, 2)
//	_, _ = e.Undo(ctx)
package fractal
