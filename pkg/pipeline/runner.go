package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fractalview/pkg/cache"
	"github.com/matzehuels/fractalview/pkg/dimension"
	"github.com/matzehuels/fractalview/pkg/fractal"
	"github.com/matzehuels/fractalview/pkg/observability"
	"github.com/matzehuels/fractalview/pkg/raster"
)

// Runner executes renders and dimension estimates with caching. It keeps
// no per-request state, so one Runner may serve concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching; a nil keyer
// uses the default keyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute renders opts to PNG, serving from the cache when possible.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts.Logger)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	paramsHash, err := cache.HashJSON(opts.Params)
	if err != nil {
		return nil, err
	}
	key := r.Keyer.RenderKey(paramsHash, opts.RenderKeyOpts())

	if data, ok := r.lookup(ctx, key, "render", opts.Refresh); ok {
		opts.Logger.Debug("render cache hit", "key", key)
		return &Result{PNG: data, CacheInfo: CacheInfo{RenderHit: true}}, nil
	}

	e, err := fractal.NewExplorer(opts.Width, opts.Height, opts.Params)
	if err != nil {
		return nil, err
	}
	defer e.Close()
	e.Logger = opts.Logger

	result := &Result{InsideFraction: make(map[fractal.Variant]float64)}
	iterStart := time.Now()
	if opts.Progressive {
		e.Refiner().Logger = opts.Logger
		err = e.Refiner().Run(ctx, opts.StartStride, func(p fractal.Pass) {
			result.Stats.Passes++
			opts.Logger.Debug("pass complete", "variant", p.Variant, "stride", p.Stride, "final", p.Final)
			if opts.OnPass != nil {
				opts.OnPass(p)
			}
		})
	} else {
		err = e.Iterate(ctx)
		result.Stats.Passes = 2
	}
	if err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	result.Stats.IterateTime = time.Since(iterStart)
	for _, v := range []fractal.Variant{fractal.Mandelbrot, fractal.Julia} {
		result.InsideFraction[v] = e.Set(v).InsideFraction()
	}
	opts.Logger.Info("iterated",
		"passes", result.Stats.Passes,
		"inside", result.InsideFraction[fractal.Mandelbrot],
		"duration", result.Stats.IterateTime)

	renderStart := time.Now()
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Output, opts.Width, opts.Height)
	img, data, err := Compose(e, opts)
	hooks.OnRenderComplete(ctx, opts.Output, len(data), time.Since(renderStart), err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Image, result.PNG = img, data
	result.Stats.RenderTime = time.Since(renderStart)
	opts.Logger.Info("rendered", "output", opts.Output, "bytes", len(data), "duration", result.Stats.RenderTime)

	r.store(ctx, key, "render", data)
	return result, nil
}

// Dimension estimates the box-counting dimension of the Mandelbrot set
// described by opts, serving from the cache when possible.
func (r *Runner) Dimension(ctx context.Context, opts DimensionOptions) (*DimensionResult, error) {
	r.applyLogger(&opts.Logger)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	paramsHash, err := cache.HashJSON(opts.Params)
	if err != nil {
		return nil, err
	}
	outer, edge, inner := opts.Scheme.Hex()
	key := r.Keyer.DimensionKey(paramsHash, cache.DimensionKeyOpts{
		Width:       opts.Width,
		Height:      opts.Height,
		InitialSize: opts.InitialSize,
		Overlay:     opts.Overlay,
		OverlaySize: opts.OverlaySize,
		Colours:     [3]string{outer, edge, inner},
	})

	if data, ok := r.lookup(ctx, key, "dimension", opts.Refresh); ok {
		var cached DimensionResult
		if err := json.Unmarshal(data, &cached); err == nil {
			cached.CacheHit = true
			return &cached, nil
		}
	}

	set, err := fractal.NewSet(opts.Width, opts.Height, opts.Params)
	if err != nil {
		return nil, err
	}
	if err := set.Iterate(ctx, false); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	grid := set.Grid()

	est := dimension.Estimator{InitialSize: opts.InitialSize, Logger: opts.Logger}
	res, err := est.Estimate(ctx, raster.MaskFromGrid(grid))
	if err != nil {
		return nil, err
	}

	out := &DimensionResult{
		Dimension:      res.Dimension,
		LogInverseSize: res.LogInverseSize,
		LogCount:       res.LogCount,
	}
	for _, p := range res.Passes {
		out.Passes = append(out.Passes, DimensionPass{Size: p.Size, Count: p.Count})
	}

	if opts.Overlay {
		out.Overlay, err = boxOverlay(grid, res, opts)
		if err != nil {
			return nil, err
		}
	}

	if data, err := json.Marshal(out); err == nil {
		r.store(ctx, key, "dimension", data)
	}
	return out, nil
}

func boxOverlay(grid fractal.GridView, res dimension.Result, opts DimensionOptions) ([]byte, error) {
	pass := res.Passes[0]
	for _, p := range res.Passes {
		if p.Size == opts.OverlaySize {
			pass = p
		}
	}
	img := raster.Render(grid, raster.Options{Scheme: opts.Scheme})
	raster.DrawBoxes(img, pass.Boxes, pass.Size, opts.Scheme.Overlay(), color.Black, pass.Size >= 4)

	var buf bytes.Buffer
	if err := raster.EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Compose renders the current grids of e as selected by opts, draws the
// orbit overlay, scales, and encodes PNG. opts must already be validated.
func Compose(e *fractal.Explorer, opts Options) (*image.RGBA, []byte, error) {
	ropts := raster.Options{Scheme: opts.Scheme, Mode: opts.Mode, Histogram: opts.Histogram}

	draw := func(v fractal.Variant) *image.RGBA {
		set := e.Set(v)
		img := raster.Render(set.Grid(), ropts)
		if opts.Orbit != nil {
			raster.DrawOrbit(img, set.Mapper(), set.Track(*opts.Orbit), opts.Scheme.Overlay())
		}
		return img
	}

	var img *image.RGBA
	switch opts.Output {
	case OutputMandelbrot:
		img = draw(fractal.Mandelbrot)
	case OutputJulia:
		img = draw(fractal.Julia)
	default:
		img = raster.SideBySide(draw(fractal.Mandelbrot), draw(fractal.Julia))
	}

	if opts.Scale != 1 {
		scaled, err := raster.Scale(img, opts.Scale)
		if err != nil {
			return nil, nil, err
		}
		img = scaled
	}

	var buf bytes.Buffer
	if err := raster.EncodePNG(&buf, img); err != nil {
		return nil, nil, err
	}
	return img, buf.Bytes(), nil
}

func (r *Runner) lookup(ctx context.Context, key, keyType string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "error", err)
		return nil, false
	}
	if !hit {
		hooks.OnCacheMiss(ctx, keyType)
		return nil, false
	}
	hooks.OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, key, keyType string, data []byte) {
	if err := r.Cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(l **log.Logger) {
	if *l == nil {
		*l = r.Logger
	}
}
