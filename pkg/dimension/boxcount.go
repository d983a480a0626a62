package dimension

import (
	"context"
	"image"
	"io"
	"math"
	"math/bits"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/fractalview/pkg/errors"
	"github.com/matzehuels/fractalview/pkg/observability"
)

// DefaultInitialSize is the starting box size; the first pass uses half of it.
const DefaultInitialSize = 512

// MinSize is the smallest box size counted.
const MinSize = 2

// Mask classifies pixels as inside or outside the set. fractal.GridView
// and raster.Mask both satisfy it.
type Mask interface {
	Bounds() (width, height int)
	Inside(x, y int) bool
}

// Pass is the result of counting boxes of one size.
type Pass struct {
	Size  int
	Count int
	Boxes []image.Point // top-left corners of the intersecting boxes
}

// Result is a finished estimate.
type Result struct {
	Dimension      float64
	Passes         []Pass
	LogInverseSize []float64 // ln(1/s) for every pass with a non-zero count
	LogCount       []float64 // ln(count), parallel to LogInverseSize
}

// Estimator counts boxes for a halving sequence of sizes.
type Estimator struct {
	// InitialSize must be a power of two of at least 8. Passes run at
	// InitialSize/2, InitialSize/4, … down to MinSize.
	InitialSize int
	Logger      *log.Logger
}

// Sizes returns the box sizes counted for the given initial size.
func Sizes(initial int) ([]int, error) {
	if err := errors.ValidatePowerOfTwo("initial box size", initial, 8); err != nil {
		return nil, err
	}
	sizes := make([]int, 0, bits.Len(uint(initial))-2)
	for s := initial / 2; s >= MinSize; s /= 2 {
		sizes = append(sizes, s)
	}
	return sizes, nil
}

// Estimate runs every pass over m and fits the series. Passes that find no
// boundary boxes are kept in Passes but left out of the fitted series.
func (e Estimator) Estimate(ctx context.Context, m Mask) (res Result, err error) {
	initial := e.InitialSize
	if initial == 0 {
		initial = DefaultInitialSize
	}
	logger := e.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	sizes, err := Sizes(initial)
	if err != nil {
		return Result{}, err
	}

	hooks := observability.Pipeline()
	hooks.OnDimensionStart(ctx, initial)
	defer func(start time.Time) {
		hooks.OnDimensionComplete(ctx, len(res.Passes), res.Dimension, time.Since(start), err)
	}(time.Now())

	width, height := m.Bounds()
	boundary := Boundary(m)

	passes := make([]Pass, len(sizes))
	g, gctx := errgroup.WithContext(ctx)
	for i, size := range sizes {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			boxes := CountBoxes(boundary, width, height, size)
			passes[i] = Pass{Size: size, Count: len(boxes), Boxes: boxes}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, errors.Cancelled(ctx, "box counting")
	}

	res.Passes = passes
	for _, p := range passes {
		logger.Debug("box pass", "size", p.Size, "boxes", p.Count)
		if p.Count == 0 {
			continue
		}
		res.LogInverseSize = append(res.LogInverseSize, math.Log(1/float64(p.Size)))
		res.LogCount = append(res.LogCount, math.Log(float64(p.Count)))
	}

	res.Dimension, err = Fit(res.LogInverseSize, res.LogCount)
	if err != nil {
		return res, err
	}
	logger.Info("dimension estimated", "passes", len(res.LogCount), "dimension", res.Dimension)
	return res, nil
}

// Boundary returns a row-major map of the boundary pixels of m: inside
// pixels with at least one 4-connected neighbour outside. Neighbours beyond
// the image edge are ignored.
func Boundary(m Mask) []bool {
	width, height := m.Bounds()
	inside := make([]bool, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			inside[y*width+x] = m.Inside(x, y)
		}
	}

	edge := make([]bool, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if !inside[i] {
				continue
			}
			edge[i] = (x > 0 && !inside[i-1]) ||
				(x < width-1 && !inside[i+1]) ||
				(y > 0 && !inside[i-width]) ||
				(y < height-1 && !inside[i+width])
		}
	}
	return edge
}

// CountBoxes tiles the image with size×size boxes from the top-left corner
// and returns the corners of the boxes holding at least one boundary pixel.
// Partial boxes at the right and bottom edges are included.
func CountBoxes(boundary []bool, width, height, size int) []image.Point {
	var boxes []image.Point
	for by := 0; by < height; by += size {
		for bx := 0; bx < width; bx += size {
			if boxHit(boundary, width, height, bx, by, size) {
				boxes = append(boxes, image.Pt(bx, by))
			}
		}
	}
	return boxes
}

func boxHit(boundary []bool, width, height, bx, by, size int) bool {
	for y := by; y < by+size && y < height; y++ {
		row := boundary[y*width:]
		for x := bx; x < bx+size && x < width; x++ {
			if row[x] {
				return true
			}
		}
	}
	return false
}
