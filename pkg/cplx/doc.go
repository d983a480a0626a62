// Package cplx implements the complex value type used by the fractal engine.
//
// [Number] is a plain (Re, Im) pair of float64s. It is a value type: every
// operation returns a new Number and never modifies its operands, so values
// can be shared freely between goroutines and stored in iteration grids.
//
// The arithmetic is deliberately minimal and allocation free, since
// [Number.Square], [Number.PowInt] and [Number.Add] sit on the per-pixel hot
// path of the escape-time loop:
//
//	z := cplx.Number{}
//	c := cplx.Number{Re: -0.5, Im: 0.5}
//	for i := 0; i < 5 && z.SqrMagnitude() <= 4; i++ {
//	    z = z.Square().Add(c)
//	}
//
// Non-integer exponents go through [Number.Pow], which works in polar form.
//
// # Membership Tests
//
// [Number.InMainCardioid] and [Number.InPeriod2Bulb] are closed-form tests
// for the two largest regions of the Mandelbrot set. A point passing either
// test is known to be inside for the quadratic map, so the engine can skip
// iterating it.
//
// # Text Form
//
// Numbers format as "re+imi" (for example "-0.75+0.1i") and [Parse] accepts
// the forms "x", "yi", "x+yi" and "x-yi". Number implements
// [encoding.TextMarshaler], so values appear in that form in TOML and JSON
// documents and in command-line flags.
package cplx
