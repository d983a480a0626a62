package fractal

// GridView is a read-only copy of a set's iteration grid taken after a
// pass. Only pixels on the Stride lattice hold computed counts; every other
// pixel is represented by the lattice pixel at the top-left of its block.
type GridView struct {
	Width, Height int
	Stride        int // stride of the last completed pass, 0 before any pass
	MaxIterations int
	Counts        []int // row-major, len Width*Height
}

// Bounds returns the grid dimensions.
func (g GridView) Bounds() (width, height int) {
	return g.Width, g.Height
}

// Count returns the iteration count representing pixel (x, y).
func (g GridView) Count(x, y int) int {
	if g.Stride > 1 {
		x -= x % g.Stride
		y -= y % g.Stride
	}
	return g.Counts[y*g.Width+x]
}

// Inside reports whether pixel (x, y) reached the iteration cap.
func (g GridView) Inside(x, y int) bool {
	return g.Count(x, y) >= g.MaxIterations
}

// Samples returns the number of lattice pixels at the grid's stride.
func (g GridView) Samples() int {
	return samples(g.Width, g.Height, max(g.Stride, 1))
}

func samples(width, height, stride int) int {
	return ((width + stride - 1) / stride) * ((height + stride - 1) / stride)
}
