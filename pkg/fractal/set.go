package fractal

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/fractalview/pkg/cplx"
	"github.com/matzehuels/fractalview/pkg/errors"
	"github.com/matzehuels/fractalview/pkg/observability"
)

// Set owns the iteration grid of one fractal view and runs passes over it.
//
// Every pass holds the set's lock for its whole duration, so passes on one
// Set never overlap. Rows inside a pass are spread across GOMAXPROCS
// goroutines; each pixel is written by exactly one of them.
type Set struct {
	mu sync.Mutex

	params        Params
	width, height int
	stride        int

	counts  []int
	last    []cplx.Number
	hasLast []bool
	refined []bool

	pixelArea int
}

// NewSet allocates a width×height grid for p. No pass is run.
func NewSet(width, height int, p Params) (*Set, error) {
	if err := errors.ValidateDimensions(width, height); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := &Set{params: p}
	s.alloc(width, height)
	return s, nil
}

func (s *Set) alloc(width, height int) {
	n := width * height
	s.width, s.height = width, height
	s.stride = 0
	s.counts = make([]int, n)
	s.last = make([]cplx.Number, n)
	s.hasLast = make([]bool, n)
	s.refined = make([]bool, n)
	s.pixelArea = 0
}

// Params returns the current parameters.
func (s *Set) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// Size returns the grid dimensions.
func (s *Set) Size() (width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Mapper returns the coordinate mapper for the current view.
func (s *Set) Mapper() Mapper {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapper()
}

func (s *Set) mapper() Mapper {
	return Mapper{Width: s.width, Height: s.height, Centre: s.params.Centre, Zoom: s.params.Zoom}
}

// Update replaces the parameters. Stored terminal values are discarded, so
// the next ExtendTo recomputes from scratch. Invalid parameters leave the
// set untouched.
func (s *Set) Update(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == s.params {
		return nil
	}
	s.params = p
	clear(s.hasLast)
	return nil
}

// Resize reallocates the grid at the new dimensions, discarding all
// results.
func (s *Set) Resize(width, height int) error {
	if err := errors.ValidateDimensions(width, height); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alloc(width, height)
	return nil
}

// Iterate runs one pass at the configured chunk size.
//
// A full pass (progressive false) recomputes every lattice pixel and resets
// the pixel area to the number of inside pixels. A progressive pass only
// computes pixels not yet marked refined, marks them, and adds the newly
// found inside pixels to the pixel area.
func (s *Set) Iterate(ctx context.Context, progressive bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if progressive {
		return s.progressive(ctx, s.params.ChunkSize)
	}
	return s.full(ctx, s.params.ChunkSize)
}

// RefinePass runs a progressive pass at an explicit stride. It is the unit
// of work of the successive-refinement schedule.
func (s *Set) RefinePass(ctx context.Context, stride int) error {
	if err := errors.ValidateAtLeast("stride", stride, 1); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressive(ctx, stride)
}

// BeginRefinement clears the refined flags and the pixel area ahead of a
// new progressive schedule.
func (s *Set) BeginRefinement() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.refined)
	s.pixelArea = 0
}

// ResetRefined clears the refined flags. The pixel area is kept so that the
// finished image still reports its inside fraction.
func (s *Set) ResetRefined() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.refined)
}

func (s *Set) full(ctx context.Context, stride int) error {
	inside, err := s.forEach(ctx, "full", stride, s.compute())
	if err != nil {
		return err
	}
	s.pixelArea = inside
	s.stride = stride
	return nil
}

func (s *Set) progressive(ctx context.Context, stride int) error {
	compute := s.compute()
	inside, err := s.forEach(ctx, "progressive", stride, func(x, y, i int) int {
		if s.refined[i] {
			return 0
		}
		s.refined[i] = true
		return compute(x, y, i)
	})
	if err != nil {
		return err
	}
	s.pixelArea += inside
	s.stride = stride
	return nil
}

// compute returns the per-pixel visitor for a fresh computation. It writes
// the grid cell and reports 1 when the pixel is inside.
func (s *Set) compute() func(x, y, i int) int {
	p := s.params
	m := s.mapper()
	short := p.shortCircuit()

	return func(x, y, i int) int {
		var (
			count int
			last  cplx.Number
		)
		switch p.Variant {
		case Mandelbrot:
			c := m.PixelToComplex(x, y)
			switch {
			case c.SqrMagnitude() > BailoutSqr:
				count, last = 1, c
			case short && (c.InMainCardioid() || c.InPeriod2Bulb()):
				count, last = p.MaxIterations, c
			default:
				count, last = IteratePoint(p.ZStart, c, p.Power, p.MaxIterations)
			}
		case Julia:
			count, last = IteratePoint(m.PixelToComplex(x, y), p.C, p.Power, p.MaxIterations)
		}
		s.counts[i] = count
		s.last[i] = last
		s.hasLast[i] = true
		if count == p.MaxIterations {
			return 1
		}
		return 0
	}
}

// ExtendTo changes the iteration cap to newMax. Lattice pixels with a
// stored terminal value and a count not above newMax resume from that value
// for newMax − count steps instead of restarting; all others are recomputed
// at the new cap. The pixel area is recounted.
func (s *Set) ExtendTo(ctx context.Context, newMax int) error {
	if err := errors.ValidateAtLeast("max iterations", newMax, 1); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.params.MaxIterations = newMax
	p := s.params
	m := s.mapper()
	compute := s.compute()

	stride := p.ChunkSize
	inside, err := s.forEach(ctx, "extend", stride, func(x, y, i int) int {
		if !s.hasLast[i] || s.counts[i] > newMax {
			return compute(x, y, i)
		}
		c := p.C
		if p.Variant == Mandelbrot {
			c = m.PixelToComplex(x, y)
		}
		taken, last := Resume(s.last[i], c, p.Power, newMax-s.counts[i])
		s.counts[i] += taken
		s.last[i] = last
		if s.counts[i] == newMax {
			return 1
		}
		return 0
	})
	if err != nil {
		return err
	}
	s.pixelArea = inside
	s.stride = stride
	return nil
}

// forEach visits every pixel on the stride lattice and sums the visitor's
// results. The context is checked between rows.
func (s *Set) forEach(ctx context.Context, kind string, stride int, visit func(x, y, i int) int) (inside int, err error) {
	hooks := observability.Fractal()
	variant := s.params.Variant.String()
	hooks.OnPassStart(ctx, variant, kind, stride)
	defer func(start time.Time) {
		hooks.OnPassComplete(ctx, variant, kind, stride, inside, time.Since(start), err)
	}(time.Now())

	rows := (s.height + stride - 1) / stride
	workers := min(runtime.GOMAXPROCS(0), rows)

	var total atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			n := 0
			for r := w; r < rows; r += workers {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				y := r * stride
				row := y * s.width
				for x := 0; x < s.width; x += stride {
					n += visit(x, y, row+x)
				}
			}
			total.Add(int64(n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, errors.Cancelled(ctx, "pass")
	}
	return int(total.Load()), nil
}

// Grid returns a copy of the iteration counts.
func (s *Set) Grid() GridView {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make([]int, len(s.counts))
	copy(counts, s.counts)
	return GridView{
		Width:         s.width,
		Height:        s.height,
		Stride:        s.stride,
		MaxIterations: s.params.MaxIterations,
		Counts:        counts,
	}
}

// PixelArea returns the number of lattice pixels classified inside.
func (s *Set) PixelArea() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pixelArea
}

// InsideFraction returns PixelArea / (width·height / chunk²), the share of
// the view classified inside.
func (s *Set) InsideFraction() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	chunk := float64(s.params.ChunkSize)
	return float64(s.pixelArea) / (float64(s.width*s.height) / (chunk * chunk))
}

// Track returns the orbit of the point z. For a Mandelbrot set z is the c
// value and the orbit starts after the first step; for a Julia set z is the
// start and is included.
func (s *Set) Track(z cplx.Number) []cplx.Number {
	p := s.Params()
	if p.Variant == Julia {
		return Track(z, p.C, p.Power, p.MaxIterations, true)
	}
	return Track(p.ZStart, z, p.Power, p.MaxIterations, false)
}

// TrackPixel returns the orbit of the point under pixel (x, y).
func (s *Set) TrackPixel(x, y int) []cplx.Number {
	return s.Track(s.Mapper().PixelToComplex(x, y))
}
