package fractal

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fractalview/pkg/errors"
	"github.com/matzehuels/fractalview/pkg/observability"
)

// DefaultStartStride is the coarsest stride of a refinement schedule.
const DefaultStartStride = 16

// Pass describes one completed progressive pass of a refinement schedule.
type Pass struct {
	Variant Variant
	Stride  int
	Final   bool     // last pass of this set's schedule
	Grid    GridView // taken right after the pass
}

// Schedule returns the strides of a successive-refinement schedule: start,
// start/2, … down to final. When halving steps over final, final is
// appended as the last stride.
func Schedule(start, final int) ([]int, error) {
	if err := errors.ValidatePowerOfTwo("start stride", start, 1); err != nil {
		return nil, err
	}
	if err := errors.ValidateAtLeast("final stride", final, 1); err != nil {
		return nil, err
	}
	if start < final {
		return nil, errors.New(errors.ErrCodeInvalidParams, "start stride %d is finer than chunk size %d", start, final)
	}
	var strides []int
	for s := start; s >= final; s /= 2 {
		strides = append(strides, s)
	}
	if strides[len(strides)-1] != final {
		strides = append(strides, final)
	}
	return strides, nil
}

// Refiner drives successive refinement over a group of sets on a single
// background worker. Starting a new schedule cancels and waits for the
// previous one, so at most one worker is alive.
type Refiner struct {
	// Delay is slept between rounds so that a display can show each
	// intermediate resolution. Zero disables it.
	Delay  time.Duration
	Logger *log.Logger

	sets []*Set

	ctl    sync.Mutex // serialises Start and Stop
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// NewRefiner returns a Refiner for the given sets.
func NewRefiner(sets ...*Set) *Refiner {
	return &Refiner{sets: sets, Logger: log.New(io.Discard)}
}

// Run executes one schedule synchronously. Each set follows its own
// schedule from start down to its chunk size; rounds interleave the sets.
// The refined flags are cleared before the first and after the last pass.
// onPass, if non-nil, is called after every pass.
func (r *Refiner) Run(ctx context.Context, start int, onPass func(Pass)) (err error) {
	delay := r.Delay
	schedules := make([][]int, len(r.sets))
	rounds := 0
	for i, s := range r.sets {
		if schedules[i], err = Schedule(start, s.Params().ChunkSize); err != nil {
			return err
		}
		rounds = max(rounds, len(schedules[i]))
	}

	hooks := observability.Fractal()
	final := 0
	if len(schedules) > 0 {
		final = schedules[0][len(schedules[0])-1]
	}
	hooks.OnRefineStart(ctx, start, final)
	passes := 0
	defer func(begin time.Time) {
		hooks.OnRefineComplete(ctx, passes, time.Since(begin), err)
	}(time.Now())

	for _, s := range r.sets {
		s.BeginRefinement()
	}
	defer func() {
		for _, s := range r.sets {
			s.ResetRefined()
		}
	}()

	for round := 0; round < rounds; round++ {
		for i, s := range r.sets {
			if round >= len(schedules[i]) {
				continue
			}
			stride := schedules[i][round]
			if err := s.RefinePass(ctx, stride); err != nil {
				return err
			}
			passes++
			last := round == len(schedules[i])-1
			r.Logger.Debug("refine pass", "variant", s.Params().Variant, "stride", stride, "final", last)
			if onPass != nil {
				onPass(Pass{Variant: s.Params().Variant, Stride: stride, Final: last, Grid: s.Grid()})
			}
		}
		if delay > 0 && round < rounds-1 {
			select {
			case <-ctx.Done():
				return errors.Cancelled(ctx, "refinement")
			case <-time.After(delay):
			}
		}
	}
	return nil
}

// Start validates the schedule, stops any running worker and runs a new
// schedule in the background. onPass is called from the worker goroutine
// and must not call Start or Stop.
func (r *Refiner) Start(ctx context.Context, start int, onPass func(Pass)) error {
	for _, s := range r.sets {
		if _, err := Schedule(start, s.Params().ChunkSize); err != nil {
			return err
		}
	}

	r.ctl.Lock()
	defer r.ctl.Unlock()
	r.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel, r.done = cancel, done
	r.setErr(nil)

	go func() {
		defer close(done)
		r.setErr(r.Run(ctx, start, onPass))
	}()
	return nil
}

// Stop cancels the running worker, if any, and waits for it to exit.
func (r *Refiner) Stop() {
	r.ctl.Lock()
	defer r.ctl.Unlock()
	r.stopLocked()
}

func (r *Refiner) stopLocked() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
	r.cancel = nil
}

// Wait blocks until the current worker exits and returns its error.
func (r *Refiner) Wait() error {
	r.ctl.Lock()
	done := r.done
	r.ctl.Unlock()
	if done != nil {
		<-done
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Running reports whether a worker is still executing a schedule.
func (r *Refiner) Running() bool {
	r.ctl.Lock()
	done := r.done
	r.ctl.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

func (r *Refiner) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}
