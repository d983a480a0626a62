package fractal

import "github.com/matzehuels/fractalview/pkg/cplx"

// BailoutSqr is the squared escape radius. A point whose squared magnitude
// exceeds it is known to diverge.
const BailoutSqr = 4.0

// IteratePoint applies z ← z^power + c starting from zStart until |z|²
// exceeds BailoutSqr or maxIterations steps have run. It returns the number
// of steps and the final z, which Resume can continue from.
//
// A start already outside the bailout radius reports one step and returns
// zStart unchanged. A count equal to maxIterations classifies the point as
// inside.
func IteratePoint(zStart, c cplx.Number, power float64, maxIterations int) (int, cplx.Number) {
	if zStart.SqrMagnitude() > BailoutSqr {
		return 1, zStart
	}
	return Resume(zStart, c, power, maxIterations)
}

// Resume continues an orbit from z for at most steps iterations and returns
// how many ran before bailout together with the new terminal value.
func Resume(z, c cplx.Number, power float64, steps int) (int, cplx.Number) {
	n, integral := integerPower(power)
	i := 0
	if integral {
		for ; i < steps && z.SqrMagnitude() <= BailoutSqr; i++ {
			z = z.PowInt(n).Add(c)
		}
		return i, z
	}
	for ; i < steps && z.SqrMagnitude() <= BailoutSqr; i++ {
		z = z.Pow(power).Add(c)
	}
	return i, z
}

// Track returns the orbit of zStart under z ← z^power + c: the value after
// each step, up to maxIterations values, ending with the first value outside
// the bailout radius if the orbit escapes. With includeStart the slice
// begins with zStart itself.
func Track(zStart, c cplx.Number, power float64, maxIterations int, includeStart bool) []cplx.Number {
	orbit := make([]cplx.Number, 0, min(maxIterations, 1024)+1)
	if includeStart {
		orbit = append(orbit, zStart)
	}
	n, integral := integerPower(power)
	z := zStart
	for i := 0; i < maxIterations && z.SqrMagnitude() <= BailoutSqr; i++ {
		if integral {
			z = z.PowInt(n)
		} else {
			z = z.Pow(power)
		}
		z = z.Add(c)
		orbit = append(orbit, z)
	}
	return orbit
}
