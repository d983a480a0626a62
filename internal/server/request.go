package server

import (
	"github.com/matzehuels/fractalview/pkg/config"
	"github.com/matzehuels/fractalview/pkg/cplx"
	"github.com/matzehuels/fractalview/pkg/fractal"
	"github.com/matzehuels/fractalview/pkg/pipeline"
	"github.com/matzehuels/fractalview/pkg/raster"
)

// viewRequest is the part of a request body that describes the Mandelbrot
// view. Complex numbers are strings such as "-0.75+0.1i".
type viewRequest struct {
	Width         int         `json:"width"`
	Height        int         `json:"height"`
	MaxIterations int         `json:"max_iterations"`
	Power         float64     `json:"power"`
	ChunkSize     int         `json:"chunk_size"`
	Zoom          float64     `json:"zoom"`
	Centre        cplx.Number `json:"centre"`
	ZStart        cplx.Number `json:"z_start"`
}

// styleRequest selects colours. Empty colours keep the configured ones.
type styleRequest struct {
	Outer     string `json:"outer"`
	Edge      string `json:"edge"`
	Inner     string `json:"inner"`
	Mode      string `json:"mode"`
	Histogram bool   `json:"histogram"`
}

// renderRequest is the body of POST /api/render and of every message on
// /ws/refine.
type renderRequest struct {
	viewRequest
	styleRequest
	Output      string       `json:"output"`
	Progressive bool         `json:"progressive"`
	StartStride int          `json:"start_stride"`
	Orbit       *cplx.Number `json:"orbit,omitempty"`
	Scale       float64      `json:"scale"`
	Refresh     bool         `json:"refresh"`
}

// dimensionRequest is the body of POST /api/dimension.
type dimensionRequest struct {
	viewRequest
	styleRequest
	InitialSize int  `json:"initial_size"`
	Overlay     bool `json:"overlay"`
	OverlaySize int  `json:"overlay_size"`
	Refresh     bool `json:"refresh"`
}

// Request bodies are decoded over these defaults, so omitted fields keep
// the configured values.

func defaultView(cfg config.Config) viewRequest {
	r := cfg.Render
	return viewRequest{
		Width:         r.Width,
		Height:        r.Height,
		MaxIterations: r.MaxIterations,
		Power:         r.Power,
		ChunkSize:     r.ChunkSize,
		Zoom:          r.Zoom,
		Centre:        r.Centre,
	}
}

func defaultStyle(cfg config.Config) styleRequest {
	return styleRequest{
		Outer:     cfg.Colours.Outer,
		Edge:      cfg.Colours.Edge,
		Inner:     cfg.Colours.Inner,
		Mode:      cfg.Render.Mode,
		Histogram: cfg.Render.Histogram,
	}
}

func defaultRender(cfg config.Config) renderRequest {
	return renderRequest{
		viewRequest:  defaultView(cfg),
		styleRequest: defaultStyle(cfg),
		Output:       pipeline.OutputBoth,
		StartStride:  cfg.Refine.StartStride,
		Scale:        1,
	}
}

func defaultDimension(cfg config.Config) dimensionRequest {
	return dimensionRequest{
		viewRequest:  defaultView(cfg),
		styleRequest: defaultStyle(cfg),
		InitialSize:  cfg.Dimension.InitialSize,
	}
}

func (r viewRequest) params() fractal.Params {
	return fractal.Params{
		Variant:       fractal.Mandelbrot,
		MaxIterations: r.MaxIterations,
		Power:         r.Power,
		ChunkSize:     r.ChunkSize,
		Zoom:          r.Zoom,
		Centre:        r.Centre,
		ZStart:        r.ZStart,
	}
}

func (r styleRequest) options() (raster.Options, error) {
	scheme, err := raster.ParseScheme(r.Outer, r.Edge, r.Inner)
	if err != nil {
		return raster.Options{}, err
	}
	mode, err := raster.ParseMode(r.Mode)
	if err != nil {
		return raster.Options{}, err
	}
	return raster.Options{Scheme: scheme, Mode: mode, Histogram: r.Histogram}, nil
}

func (r renderRequest) options() (pipeline.Options, error) {
	style, err := r.styleRequest.options()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		Params:      r.params(),
		Output:      r.Output,
		Width:       r.Width,
		Height:      r.Height,
		Progressive: r.Progressive,
		StartStride: r.StartStride,
		Mode:        style.Mode,
		Histogram:   style.Histogram,
		Scheme:      style.Scheme,
		Orbit:       r.Orbit,
		Scale:       r.Scale,
		Refresh:     r.Refresh,
	}
	return opts, opts.ValidateAndSetDefaults()
}

func (r dimensionRequest) options() (pipeline.DimensionOptions, error) {
	style, err := r.styleRequest.options()
	if err != nil {
		return pipeline.DimensionOptions{}, err
	}
	opts := pipeline.DimensionOptions{
		Params:      r.params(),
		Width:       r.Width,
		Height:      r.Height,
		InitialSize: r.InitialSize,
		Overlay:     r.Overlay,
		OverlaySize: r.OverlaySize,
		Scheme:      style.Scheme,
		Refresh:     r.Refresh,
	}
	return opts, opts.ValidateAndSetDefaults()
}
