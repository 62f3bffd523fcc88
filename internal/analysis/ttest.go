package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"bangreport/pkg/contracts/domain"
)

// dropMissing returns the finite values of xs
func dropMissing(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}

// twoSidedP is the two-sided p-value of t under Student's t with df degrees
// of freedom.
func twoSidedP(t, df float64) float64 {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.Survival(math.Abs(t))
}

// TTest compares the means of a and b. With equalVar the pooled-variance
// Student test is used, otherwise Welch's test with Welch-Satterthwaite
// degrees of freedom.
func TTest(a, b []float64, equalVar bool) (TTestResult, error) {
	a, b = dropMissing(a), dropMissing(b)
	res := TTestResult{
		NA:            len(a),
		NB:            len(b),
		EqualVariance: equalVar,
		T:             domain.MissingRate(),
		PValue:        domain.MissingRate(),
	}

	if len(a) < 2 || len(b) < 2 {
		return res, fmt.Errorf("%w: t-test needs two observations per group, got %d and %d",
			ErrInsufficientData, len(a), len(b))
	}

	res.MeanA, res.VarA = stat.MeanVariance(a, nil)
	res.MeanB, res.VarB = stat.MeanVariance(b, nil)
	na, nb := float64(len(a)), float64(len(b))

	var se2 float64
	if equalVar {
		res.DF = na + nb - 2
		pooled := ((na-1)*res.VarA + (nb-1)*res.VarB) / res.DF
		se2 = pooled * (1/na + 1/nb)
	} else {
		va, vb := res.VarA/na, res.VarB/nb
		se2 = va + vb
		if se2 > 0 {
			res.DF = se2 * se2 / (va*va/(na-1) + vb*vb/(nb-1))
		}
	}
	if se2 <= 0 {
		return res, fmt.Errorf("%w: both groups have zero variance", ErrInsufficientData)
	}

	t := (res.MeanA - res.MeanB) / math.Sqrt(se2)
	res.T = domain.Rate(t)
	res.PValue = domain.Rate(twoSidedP(t, res.DF))
	return res, nil
}
