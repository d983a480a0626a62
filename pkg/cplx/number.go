package cplx

import "math"

// Number is a complex value with float64 components.
type Number struct {
	Re float64 `bson:"re"`
	Im float64 `bson:"im"`
}

// Origin is 0+0i.
var Origin = Number{}

// New returns re+im·i.
func New(re, im float64) Number {
	return Number{Re: re, Im: im}
}

// Add returns z + w.
func (z Number) Add(w Number) Number {
	return Number{z.Re + w.Re, z.Im + w.Im}
}

// Sub returns z − w.
func (z Number) Sub(w Number) Number {
	return Number{z.Re - w.Re, z.Im - w.Im}
}

// Mul returns z·w.
func (z Number) Mul(w Number) Number {
	return Number{
		Re: z.Re*w.Re - z.Im*w.Im,
		Im: z.Re*w.Im + w.Re*z.Im,
	}
}

// Square returns z².
func (z Number) Square() Number {
	return Number{
		Re: z.Re*z.Re - z.Im*z.Im,
		Im: 2 * z.Re * z.Im,
	}
}

// PowInt returns z raised to n by repeated multiplication.
// For n <= 1 it returns z unchanged.
func (z Number) PowInt(n int) Number {
	if n == 2 {
		return z.Square()
	}
	result := z
	for i := 1; i < n; i++ {
		result = result.Mul(z)
	}
	return result
}

// Pow returns z raised to a real exponent using the polar form:
// the magnitude is raised to p and the argument multiplied by p.
func (z Number) Pow(p float64) Number {
	r := math.Hypot(z.Re, z.Im)
	if r == 0 {
		if p > 0 {
			return Origin
		}
		return Number{math.Inf(1), 0}
	}
	theta := math.Atan2(z.Im, z.Re) * p
	mag := math.Pow(r, p)
	sin, cos := math.Sincos(theta)
	return Number{mag * cos, mag * sin}
}

// SqrMagnitude returns Re² + Im².
func (z Number) SqrMagnitude() float64 {
	return z.Re*z.Re + z.Im*z.Im
}

// Magnitude returns |z|.
func (z Number) Magnitude() float64 {
	return math.Hypot(z.Re, z.Im)
}

// Distance returns the Euclidean distance between z and w.
func (z Number) Distance(w Number) float64 {
	return math.Hypot(z.Re-w.Re, z.Im-w.Im)
}

// InMainCardioid reports whether z lies inside the main cardioid of the
// Mandelbrot set.
func (z Number) InMainCardioid() bool {
	x := z.Re - 0.25
	p := math.Sqrt(x*x + z.Im*z.Im)
	return z.Re < p-2*p*p+0.25
}

// InPeriod2Bulb reports whether z lies inside the disc of radius 1/4
// centred on −1.
func (z Number) InPeriod2Bulb() bool {
	x := z.Re + 1
	return x*x+z.Im*z.Im < 1.0/16
}

// Equal reports exact component-wise equality.
func (z Number) Equal(w Number) bool {
	return z.Re == w.Re && z.Im == w.Im
}

// Abs returns the number with both components made non-negative.
func (z Number) Abs() Number {
	return Number{math.Abs(z.Re), math.Abs(z.Im)}
}

// IsFinite reports whether neither component is NaN or infinite.
func (z Number) IsFinite() bool {
	return !math.IsNaN(z.Re) && !math.IsInf(z.Re, 0) &&
		!math.IsNaN(z.Im) && !math.IsInf(z.Im, 0)
}
