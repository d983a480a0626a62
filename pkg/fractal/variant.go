package fractal

import (
	"strings"

	"github.com/matzehuels/fractalview/pkg/errors"
)

// Variant selects which parameter is derived from the pixel position.
type Variant int

const (
	// Mandelbrot derives c from the pixel and iterates from a fixed start.
	Mandelbrot Variant = iota
	// Julia derives the start from the pixel and keeps c fixed.
	Julia
)

// String returns "mandelbrot" or "julia".
func (v Variant) String() string {
	switch v {
	case Mandelbrot:
		return "mandelbrot"
	case Julia:
		return "julia"
	default:
		return "unknown"
	}
}

// ParseVariant parses a variant name, ignoring case.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mandelbrot", "m":
		return Mandelbrot, nil
	case "julia", "j":
		return Julia, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown fractal variant %q (want mandelbrot or julia)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) {
	if v != Mandelbrot && v != Julia {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown fractal variant %d", int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
