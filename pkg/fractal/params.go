package fractal

import (
	"math"

	"github.com/matzehuels/fractalview/pkg/cplx"
	"github.com/matzehuels/fractalview/pkg/errors"
)

// Defaults for a fresh view.
const (
	DefaultMaxIterations = 100
	DefaultPower         = 2.0
	DefaultChunkSize     = 1
	DefaultZoom          = 150.0
)

// Params fully describes one fractal view. It is a comparable value, so two
// Params are bit-identical exactly when == holds.
type Params struct {
	Variant       Variant
	MaxIterations int
	Power         float64
	ChunkSize     int
	Zoom          float64 // pixels per unit of the complex plane
	Centre        cplx.Number
	ZStart        cplx.Number // Mandelbrot only; Julia derives it per pixel
	C             cplx.Number // Julia only; Mandelbrot derives it per pixel
}

// DefaultParams returns the standard Mandelbrot view centred on the origin.
func DefaultParams() Params {
	return Params{
		Variant:       Mandelbrot,
		MaxIterations: DefaultMaxIterations,
		Power:         DefaultPower,
		ChunkSize:     DefaultChunkSize,
		Zoom:          DefaultZoom,
	}
}

// JuliaParams returns the Julia companion of a Mandelbrot view: same
// iteration settings, centred on the origin, with c bound to the
// Mandelbrot centre.
func JuliaParams(m Params) Params {
	return Params{
		Variant:       Julia,
		MaxIterations: m.MaxIterations,
		Power:         m.Power,
		ChunkSize:     m.ChunkSize,
		Zoom:          m.Zoom,
		C:             m.Centre,
	}
}

// Validate checks every field and returns an INVALID_PARAMS error for the
// first violation.
func (p Params) Validate() error {
	if p.Variant != Mandelbrot && p.Variant != Julia {
		return errors.New(errors.ErrCodeInvalidParams, "unknown fractal variant %d", int(p.Variant))
	}
	if err := errors.ValidateAtLeast("max iterations", p.MaxIterations, 1); err != nil {
		return err
	}
	if err := errors.ValidateAtLeast("chunk size", p.ChunkSize, 1); err != nil {
		return err
	}
	if err := errors.ValidatePositive("zoom", p.Zoom); err != nil {
		return err
	}
	if err := errors.ValidateFinite("power", p.Power); err != nil {
		return err
	}
	points := []struct {
		name string
		z    cplx.Number
	}{{"centre", p.Centre}, {"z start", p.ZStart}, {"c", p.C}}
	for _, pt := range points {
		if !pt.z.IsFinite() {
			return errors.New(errors.ErrCodeInvalidParams, "%s must be finite, got %v", pt.name, pt.z)
		}
	}
	return nil
}

// shortCircuit reports whether the cardioid and period-2 bulb tests are
// valid for these parameters.
func (p Params) shortCircuit() bool {
	return p.Variant == Mandelbrot && p.Power == 2 && p.ZStart.Equal(cplx.Origin)
}

// integerPower returns the power as an int when it has no fractional part.
func integerPower(power float64) (int, bool) {
	if math.Mod(power, 1) != 0 || power < 1 || power > math.MaxInt32 {
		return 0, false
	}
	return int(power), true
}
