package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"bangreport/pkg/contracts/domain"
)

// Pearson correlates x and y over the pairs where both are present. The
// p-value tests r against zero with n-2 degrees of freedom.
func Pearson(x, y []float64) (CorrelationResult, error) {
	if len(x) != len(y) {
		return CorrelationResult{}, fmt.Errorf("pearson: length mismatch %d != %d", len(x), len(y))
	}

	var xs, ys []float64
	for i := range x {
		if isMissing(x[i]) || isMissing(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}

	res := CorrelationResult{N: len(xs), R: domain.MissingRate(), PValue: domain.MissingRate()}
	if len(xs) < 3 {
		return res, fmt.Errorf("%w: correlation needs three pairs, got %d", ErrInsufficientData, len(xs))
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return res, fmt.Errorf("%w: a variable is constant", ErrInsufficientData)
	}

	r := stat.Correlation(xs, ys, nil)
	res.R = domain.Rate(r)

	df := float64(len(xs) - 2)
	if math.Abs(r) >= 1 {
		res.PValue = 0
		return res, nil
	}
	t := r * math.Sqrt(df/(1-r*r))
	res.PValue = domain.Rate(twoSidedP(t, df))
	return res, nil
}

func isMissing(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}
