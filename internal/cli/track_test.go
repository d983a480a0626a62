package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/fractalview/pkg/cplx"
	"github.com/matzehuels/fractalview/pkg/errors"
	"github.com/matzehuels/fractalview/pkg/fractal"
)

func TestRunTrack(t *testing.T) {
	tests := []struct {
		name    string
		variant fractal.Variant
		point   cplx.Number
		c       cplx.Number
		want    string
	}{
		{"mandelbrot inside", fractal.Mandelbrot, cplx.New(-1, 0), cplx.Number{}, "bounded after 20 iterations"},
		{"mandelbrot escapes", fractal.Mandelbrot, cplx.New(1, 0), cplx.Number{}, "escaped after 3 iterations"},
		{"julia inside", fractal.Julia, cplx.Number{}, cplx.New(-1, 0), "bounded after 20 iterations"},
		{"julia start outside", fractal.Julia, cplx.New(3, 0), cplx.Number{}, "escaped after 1 iterations"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := trackOpts{c: complexValue(tt.c), power: 2, maxIter: 20, decimals: 3}
			var buf bytes.Buffer
			if err := runTrack(&buf, tt.variant, tt.point, &opts); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, buf.String())
			}
		})
	}
}

func TestRunTrackIncludeStart(t *testing.T) {
	opts := trackOpts{power: 2, maxIter: 20, includeStart: true, decimals: 2}
	var buf bytes.Buffer
	if err := runTrack(&buf, fractal.Mandelbrot, cplx.New(1, 0), &opts); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"0.00+0.00i", "5.00+0.00i"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunTrackInvalid(t *testing.T) {
	opts := trackOpts{power: 2, maxIter: 0}
	err := runTrack(&bytes.Buffer{}, fractal.Mandelbrot, cplx.Number{}, &opts)
	if !errors.Is(err, errors.ErrCodeInvalidParams) {
		t.Errorf("err = %v, want INVALID_PARAMS", err)
	}
}
