package dimension

import (
	"github.com/montanaflynn/stats"

	"github.com/matzehuels/fractalview/pkg/errors"
)

// Fit returns the slope of the least-squares line through (xs, ys),
// computed as r·(sy/sx) with r the Pearson correlation and s the sample
// standard deviations. Fewer than two points or constant xs is a
// DEGENERATE_FIT error; constant ys give a slope of 0.
func Fit(xs, ys []float64) (float64, error) {
	if len(xs) != len(ys) {
		return 0, errors.New(errors.ErrCodeInvalidInput, "series lengths differ: %d and %d", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return 0, errors.New(errors.ErrCodeDegenerateFit, "need at least 2 points to fit, got %d", len(xs))
	}

	sx, err := stats.StandardDeviationSample(xs)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeDegenerateFit, err, "x deviation")
	}
	if sx == 0 {
		return 0, errors.New(errors.ErrCodeDegenerateFit, "x values have zero variance")
	}
	sy, err := stats.StandardDeviationSample(ys)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeDegenerateFit, err, "y deviation")
	}
	if sy == 0 {
		return 0, nil
	}

	r, err := stats.Correlation(xs, ys)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeDegenerateFit, err, "correlation")
	}
	return r * (sy / sx), nil
}
