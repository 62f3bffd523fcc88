package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"bangreport/pkg/contracts/domain"
)

// InterceptName labels the constant term of a regression
const InterceptName = "(intercept)"

// maxCondition bounds the design matrix condition number
const maxCondition = 1e10

// OLS fits y on an intercept plus the predictor columns of x (x[i] is the
// i-th observation). Observations with any missing value are dropped.
func OLS(response string, y []float64, predictors []string, x [][]float64) (RegressionResult, error) {
	res := RegressionResult{
		Response:    response,
		Predictors:  predictors,
		RSquared:    domain.MissingRate(),
		AdjRSquared: domain.MissingRate(),
		RSE:         domain.MissingRate(),
	}
	if len(x) != len(y) {
		return res, fmt.Errorf("ols: %d responses for %d observations", len(y), len(x))
	}

	p := len(predictors) + 1
	var rows [][]float64
	var ys []float64
	for i := range y {
		if len(x[i]) != len(predictors) {
			return res, fmt.Errorf("ols: observation %d has %d predictors, want %d", i, len(x[i]), len(predictors))
		}
		if isMissing(y[i]) || anyMissing(x[i]) {
			continue
		}
		rows = append(rows, x[i])
		ys = append(ys, y[i])
	}

	n := len(ys)
	res.N = n
	if n <= p {
		return res, fmt.Errorf("%w: %d observations for %d coefficients", ErrInsufficientData, n, p)
	}
	res.DF = n - p

	design := mat.NewDense(n, p, nil)
	for i, row := range rows {
		design.Set(i, 0, 1)
		for j, v := range row {
			design.Set(i, j+1, v)
		}
	}
	yv := mat.NewVecDense(n, ys)

	var qr mat.QR
	qr.Factorize(design)
	if cond := qr.Cond(); math.IsInf(cond, 0) || math.IsNaN(cond) || cond > maxCondition {
		return res, fmt.Errorf("%w: condition number %g", ErrSingularDesign, cond)
	}
	beta := mat.NewVecDense(p, nil)
	if err := qr.SolveVecTo(beta, false, yv); err != nil {
		return res, fmt.Errorf("%w: %v", ErrSingularDesign, err)
	}

	var fitted, resid mat.VecDense
	fitted.MulVec(design, beta)
	resid.SubVec(yv, &fitted)
	rss := mat.Dot(&resid, &resid)

	mean := 0.0
	for _, v := range ys {
		mean += v
	}
	mean /= float64(n)
	tss := 0.0
	for _, v := range ys {
		tss += (v - mean) * (v - mean)
	}

	sigma2 := rss / float64(res.DF)
	res.RSE = domain.Rate(math.Sqrt(sigma2))
	if tss > 0 {
		r2 := 1 - rss/tss
		res.RSquared = domain.Rate(r2)
		res.AdjRSquared = domain.Rate(1 - (1-r2)*float64(n-1)/float64(res.DF))
	} else {
		res.RSquared = domain.MissingRate()
		res.AdjRSquared = domain.MissingRate()
	}

	var xtx, cov mat.Dense
	xtx.Mul(design.T(), design)
	if err := cov.Inverse(&xtx); err != nil {
		return res, fmt.Errorf("%w: %v", ErrSingularDesign, err)
	}

	names := append([]string{InterceptName}, predictors...)
	for j, name := range names {
		c := Coefficient{Name: name, Estimate: beta.AtVec(j)}
		se := math.Sqrt(sigma2 * cov.At(j, j))
		c.StdErr = domain.Rate(se)
		if se > 0 {
			t := c.Estimate / se
			c.T = domain.Rate(t)
			c.PValue = domain.Rate(twoSidedP(t, float64(res.DF)))
		} else {
			c.T = domain.MissingRate()
			c.PValue = domain.MissingRate()
		}
		res.Coefficients = append(res.Coefficients, c)
	}
	return res, nil
}

func anyMissing(xs []float64) bool {
	for _, x := range xs {
		if isMissing(x) {
			return true
		}
	}
	return false
}
