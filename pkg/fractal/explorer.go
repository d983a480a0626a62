package fractal

import (
	"context"
	"image"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/fractalview/pkg/cplx"
	"github.com/matzehuels/fractalview/pkg/errors"
	"github.com/matzehuels/fractalview/pkg/history"
)

// Snapshot is the complete navigation state of an Explorer. Snapshots hold
// parameters only, never grids.
type Snapshot struct {
	Mandelbrot Params
	Julia      Params
}

// Explorer pairs a Mandelbrot set with its Julia companion and records every
// user-initiated change for undo and redo.
//
// Every mutator stops the refinement worker before touching parameters, so
// no pass runs against stale parameters and no abandoned schedule reports a
// result after the change.
type Explorer struct {
	Logger *log.Logger

	mu      sync.Mutex
	mandel  *Set
	julia   *Set
	history *history.History[Snapshot]
	refiner *Refiner
}

// NewExplorer creates both sets at width×height. p describes the Mandelbrot
// view; the Julia companion is derived with JuliaParams. No pass is run.
func NewExplorer(width, height int, p Params) (*Explorer, error) {
	if p.Variant != Mandelbrot {
		return nil, errors.New(errors.ErrCodeInvalidParams, "explorer needs mandelbrot parameters, got %s", p.Variant)
	}
	mandel, err := NewSet(width, height, p)
	if err != nil {
		return nil, err
	}
	julia, err := NewSet(width, height, JuliaParams(p))
	if err != nil {
		return nil, err
	}
	return &Explorer{
		Logger:  log.New(io.Discard),
		mandel:  mandel,
		julia:   julia,
		history: history.New[Snapshot](history.DefaultLimit),
		refiner: NewRefiner(mandel, julia),
	}, nil
}

// Mandelbrot returns the Mandelbrot set.
func (e *Explorer) Mandelbrot() *Set { return e.mandel }

// Julia returns the Julia companion set.
func (e *Explorer) Julia() *Set { return e.julia }

// Set returns the set for v.
func (e *Explorer) Set(v Variant) *Set {
	if v == Julia {
		return e.julia
	}
	return e.mandel
}

// Refiner returns the explorer's refinement worker.
func (e *Explorer) Refiner() *Refiner { return e.refiner }

// Snapshot returns the current parameters of both sets.
func (e *Explorer) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

func (e *Explorer) snapshot() Snapshot {
	return Snapshot{Mandelbrot: e.mandel.Params(), Julia: e.julia.Params()}
}

// Iterate runs a full pass on both sets concurrently.
func (e *Explorer) Iterate(ctx context.Context) error {
	e.refiner.Stop()
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.iterate(ctx)
}

func (e *Explorer) iterate(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.mandel.Iterate(ctx, false) })
	g.Go(func() error { return e.julia.Iterate(ctx, false) })
	return g.Wait()
}

// Refine starts a successive-refinement schedule on both sets in the
// background. See Refiner.Start for the callback contract.
func (e *Explorer) Refine(ctx context.Context, start int, onPass func(Pass)) error {
	return e.refiner.Start(ctx, start, onPass)
}

// Apply records the current state and switches to s. Both sets are
// validated before either changes. A full pass follows.
func (e *Explorer) Apply(ctx context.Context, s Snapshot) error {
	return e.change(ctx, func(Snapshot) (Snapshot, error) { return s, nil })
}

// SetCentre moves the Mandelbrot centre to z and binds the Julia c to it.
func (e *Explorer) SetCentre(ctx context.Context, z cplx.Number) error {
	return e.change(ctx, func(s Snapshot) (Snapshot, error) {
		s.Mandelbrot.Centre = z
		s.Julia.C = z
		return s, nil
	})
}

// Pan applies a pointer drag from one pixel to another on the v set. A
// Mandelbrot drag carries the Julia c along with the centre.
func (e *Explorer) Pan(ctx context.Context, v Variant, from, to image.Point) error {
	return e.change(ctx, func(s Snapshot) (Snapshot, error) {
		m := e.Set(v).Mapper()
		if v == Julia {
			m.Centre, m.Zoom = s.Julia.Centre, s.Julia.Zoom
		} else {
			m.Centre, m.Zoom = s.Mandelbrot.Centre, s.Mandelbrot.Zoom
		}
		centre := m.Drag(from, to)
		if v == Julia {
			s.Julia.Centre = centre
			return s, nil
		}
		s.Mandelbrot.Centre = centre
		s.Julia.C = centre
		return s, nil
	})
}

// ZoomBy multiplies the zoom of the v set by factor, keeping the centre.
func (e *Explorer) ZoomBy(ctx context.Context, v Variant, factor float64) error {
	if err := errors.ValidatePositive("zoom factor", factor); err != nil {
		return err
	}
	return e.change(ctx, func(s Snapshot) (Snapshot, error) {
		if v == Julia {
			s.Julia.Zoom *= factor
		} else {
			s.Mandelbrot.Zoom *= factor
		}
		return s, nil
	})
}

// SetPower changes the exponent of both sets.
func (e *Explorer) SetPower(ctx context.Context, power float64) error {
	return e.change(ctx, func(s Snapshot) (Snapshot, error) {
		s.Mandelbrot.Power = power
		s.Julia.Power = power
		return s, nil
	})
}

// SetChunkSize changes the sampling stride of both sets.
func (e *Explorer) SetChunkSize(ctx context.Context, chunk int) error {
	return e.change(ctx, func(s Snapshot) (Snapshot, error) {
		s.Mandelbrot.ChunkSize = chunk
		s.Julia.ChunkSize = chunk
		return s, nil
	})
}

// SetMaxIterations changes the iteration cap of both sets. Instead of a
// full pass, existing results are extended with ExtendTo.
func (e *Explorer) SetMaxIterations(ctx context.Context, n int) error {
	if err := errors.ValidateAtLeast("max iterations", n, 1); err != nil {
		return err
	}
	e.refiner.Stop()
	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.snapshot()
	if before.Mandelbrot.MaxIterations == n && before.Julia.MaxIterations == n {
		return nil
	}
	e.history.Record(before)
	e.Logger.Debug("extend iterations", "from", before.Mandelbrot.MaxIterations, "to", n)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.mandel.ExtendTo(gctx, n) })
	g.Go(func() error { return e.julia.ExtendTo(gctx, n) })
	return g.Wait()
}

// Undo restores the previous snapshot and runs a full pass. It reports
// false when there is nothing to undo.
func (e *Explorer) Undo(ctx context.Context) (bool, error) {
	return e.travel(ctx, e.history.Undo)
}

// Redo reapplies the most recently undone snapshot and runs a full pass.
func (e *Explorer) Redo(ctx context.Context) (bool, error) {
	return e.travel(ctx, e.history.Redo)
}

// CanUndo reports whether Undo would change the state.
func (e *Explorer) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanUndo()
}

// CanRedo reports whether Redo would change the state.
func (e *Explorer) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanRedo()
}

func (e *Explorer) travel(ctx context.Context, step func(Snapshot) (Snapshot, bool)) (bool, error) {
	e.refiner.Stop()
	e.mu.Lock()
	defer e.mu.Unlock()

	target, ok := step(e.snapshot())
	if !ok {
		return false, nil
	}
	if err := e.apply(target); err != nil {
		return true, err
	}
	return true, e.iterate(ctx)
}

// Export returns the parameters of both sets, Mandelbrot first.
func (e *Explorer) Export() []Params {
	s := e.Snapshot()
	return []Params{s.Mandelbrot, s.Julia}
}

// Import restores both sets from records produced by Export, in that order,
// and runs a full pass.
func (e *Explorer) Import(ctx context.Context, records []Params) error {
	if len(records) != 2 {
		return errors.New(errors.ErrCodeInvalidInput, "expected 2 records (mandelbrot, julia), got %d", len(records))
	}
	if records[0].Variant != Mandelbrot || records[1].Variant != Julia {
		return errors.New(errors.ErrCodeInvalidInput, "records must be ordered mandelbrot, julia; got %s, %s",
			records[0].Variant, records[1].Variant)
	}
	s := Snapshot{Mandelbrot: records[0], Julia: records[1]}
	if err := s.validate(); err != nil {
		return err
	}

	e.refiner.Stop()
	e.mu.Lock()
	defer e.mu.Unlock()
	if before := e.snapshot(); s != before {
		e.history.Record(before)
		if err := e.apply(s); err != nil {
			return err
		}
	}
	// an unchanged import still leaves fresh grids behind
	return e.iterate(ctx)
}

// Resize reallocates both grids and runs a full pass. Dimension changes are
// not recorded in the history.
func (e *Explorer) Resize(ctx context.Context, width, height int) error {
	if err := errors.ValidateDimensions(width, height); err != nil {
		return err
	}
	e.refiner.Stop()
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.mandel.Resize(width, height); err != nil {
		return err
	}
	if err := e.julia.Resize(width, height); err != nil {
		return err
	}
	return e.iterate(ctx)
}

// Close stops the refinement worker.
func (e *Explorer) Close() {
	e.refiner.Stop()
}

func (e *Explorer) change(ctx context.Context, edit func(Snapshot) (Snapshot, error)) error {
	e.refiner.Stop()
	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.snapshot()
	after, err := edit(before)
	if err != nil {
		return err
	}
	if after == before {
		return nil
	}
	if err := after.validate(); err != nil {
		return err
	}
	e.history.Record(before)
	if err := e.apply(after); err != nil {
		return err
	}
	e.Logger.Debug("view changed", "centre", after.Mandelbrot.Centre, "zoom", after.Mandelbrot.Zoom, "c", after.Julia.C)
	return e.iterate(ctx)
}

func (e *Explorer) apply(s Snapshot) error {
	if err := s.validate(); err != nil {
		return err
	}
	if err := e.mandel.Update(s.Mandelbrot); err != nil {
		return err
	}
	return e.julia.Update(s.Julia)
}

func (s Snapshot) validate() error {
	if s.Mandelbrot.Variant != Mandelbrot || s.Julia.Variant != Julia {
		return errors.New(errors.ErrCodeInvalidParams, "snapshot variants must be mandelbrot and julia")
	}
	if err := s.Mandelbrot.Validate(); err != nil {
		return err
	}
	return s.Julia.Validate()
}
