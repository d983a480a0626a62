package cplx

import (
	"math"
	"math/cmplx"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestArithmetic(t *testing.T) {
	a := Number{3, -2}
	b := Number{-1.5, 4}

	tests := []struct {
		name string
		got  Number
		want Number
	}{
		{"add", a.Add(b), Number{1.5, 2}},
		{"sub", a.Sub(b), Number{4.5, -6}},
		{"mul", a.Mul(b), Number{3*-1.5 - (-2 * 4), 3*4 + (-1.5 * -2)}},
		{"square", a.Square(), a.Mul(a)},
		{"abs", a.Abs(), Number{3, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Equal(tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if a != (Number{3, -2}) || b != (Number{-1.5, 4}) {
		t.Errorf("operands modified: a=%v b=%v", a, b)
	}
}

func TestPowInt(t *testing.T) {
	z := Number{0.3, -0.7}
	want := complex(0.3, -0.7)

	for n := 1; n <= 6; n++ {
		got := z.PowInt(n)
		w := cmplx.Pow(want, complex(float64(n), 0))
		if !approxEqual(got.Re, real(w), 1e-12) || !approxEqual(got.Im, imag(w), 1e-12) {
			t.Errorf("PowInt(%d) = %v, want %v", n, got, w)
		}
	}

	if got := z.PowInt(0); !got.Equal(z) {
		t.Errorf("PowInt(0) = %v, want operand %v", got, z)
	}
}

func TestPow(t *testing.T) {
	tests := []struct {
		z Number
		p float64
	}{
		{Number{0.5, 0.5}, 2.5},
		{Number{-1, 0.2}, 3.3},
		{Number{2, -1}, 0.5},
		{Number{0.1, 0}, 1.5},
	}

	for _, tt := range tests {
		got := tt.z.Pow(tt.p)
		w := cmplx.Pow(complex(tt.z.Re, tt.z.Im), complex(tt.p, 0))
		if !approxEqual(got.Re, real(w), 1e-12) || !approxEqual(got.Im, imag(w), 1e-12) {
			t.Errorf("%v.Pow(%v) = %v, want %v", tt.z, tt.p, got, w)
		}
	}

	if got := Origin.Pow(2.5); !got.Equal(Origin) {
		t.Errorf("Origin.Pow(2.5) = %v, want 0", got)
	}
	if got := (Number{0.4, 0.3}).Pow(2); !approxEqual(got.Re, 0.07, 1e-12) || !approxEqual(got.Im, 0.24, 1e-12) {
		t.Errorf("Pow(2) = %v, want 0.07+0.24i", got)
	}
}

func TestMagnitudes(t *testing.T) {
	z := Number{3, 4}
	if got := z.SqrMagnitude(); got != 25 {
		t.Errorf("SqrMagnitude() = %v, want 25", got)
	}
	if got := z.Magnitude(); got != 5 {
		t.Errorf("Magnitude() = %v, want 5", got)
	}
	if got := z.Distance(Number{0, 0}); got != 5 {
		t.Errorf("Distance() = %v, want 5", got)
	}
	if got := (Number{1, 1}).Distance(Number{4, 5}); got != 5 {
		t.Errorf("Distance() = %v, want 5", got)
	}
}

func TestMembership(t *testing.T) {
	tests := []struct {
		name     string
		z        Number
		cardioid bool
		bulb     bool
	}{
		{"origin", Number{0, 0}, true, false},
		{"cardioid interior", Number{-0.5, 0.3}, true, false},
		{"cusp outside", Number{0.3, 0}, false, false},
		{"bulb centre", Number{-1, 0}, false, true},
		{"bulb edge inside", Number{-1.2, 0.1}, false, true},
		{"bulb edge outside", Number{-1.26, 0}, false, false},
		{"far away", Number{2, 2}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.z.InMainCardioid(); got != tt.cardioid {
				t.Errorf("InMainCardioid(%v) = %v, want %v", tt.z, got, tt.cardioid)
			}
			if got := tt.z.InPeriod2Bulb(); got != tt.bulb {
				t.Errorf("InPeriod2Bulb(%v) = %v, want %v", tt.z, got, tt.bulb)
			}
		})
	}
}

func TestEqualIsExact(t *testing.T) {
	x, y := 0.1, 0.2
	a := Number{x + y, 0}
	b := Number{0.3, 0}
	if a.Equal(b) {
		t.Errorf("Equal(%v, %v) = true, want false", a, b)
	}
	if !a.Equal(a) {
		t.Error("Equal(a, a) = false, want true")
	}
}

func TestIsFinite(t *testing.T) {
	if !(Number{1, -1}).IsFinite() {
		t.Error("IsFinite(1-1i) = false, want true")
	}
	if (Number{math.NaN(), 0}).IsFinite() {
		t.Error("IsFinite(NaN) = true, want false")
	}
	if (Number{0, math.Inf(-1)}).IsFinite() {
		t.Error("IsFinite(-Inf i) = true, want false")
	}
}
