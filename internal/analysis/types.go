package analysis

import (
	"errors"

	"bangreport/pkg/contracts/domain"
)

var (
	// ErrInsufficientData means too few usable observations, or no variance
	ErrInsufficientData = errors.New("insufficient data")
	// ErrSingularDesign means the regression design matrix is rank deficient
	ErrSingularDesign = errors.New("singular design matrix")
)

// TTestResult is a two-sample t-test of group A against group B
type TTestResult struct {
	Metric        string      `json:"metric"`
	GroupA        string      `json:"group_a"`
	GroupB        string      `json:"group_b"`
	NA            int         `json:"n_a"`
	NB            int         `json:"n_b"`
	MeanA         float64     `json:"mean_a"`
	MeanB         float64     `json:"mean_b"`
	VarA          float64     `json:"var_a"`
	VarB          float64     `json:"var_b"`
	T             domain.Rate `json:"t"`
	DF            float64     `json:"df"`
	PValue        domain.Rate `json:"p_value"`
	EqualVariance bool        `json:"equal_variance"`
	Significant   bool        `json:"significant"`
	Err           string      `json:"error,omitempty"`
}

// Coefficient is one fitted regression term
type Coefficient struct {
	Name     string      `json:"name"`
	Estimate float64     `json:"estimate"`
	StdErr   domain.Rate `json:"std_err"`
	T        domain.Rate `json:"t"`
	PValue   domain.Rate `json:"p_value"`
}

// RegressionResult is an ordinary least squares fit with an intercept
type RegressionResult struct {
	Response     string        `json:"response"`
	Predictors   []string      `json:"predictors"`
	N            int           `json:"n"`
	DF           int           `json:"df"`
	Coefficients []Coefficient `json:"coefficients"`
	RSquared     domain.Rate   `json:"r_squared"`
	AdjRSquared  domain.Rate   `json:"adj_r_squared"`
	RSE          domain.Rate   `json:"residual_std_error"`
	Err          string        `json:"error,omitempty"`
}

// Coefficient returns the named term
func (r RegressionResult) Coefficient(name string) (Coefficient, bool) {
	for _, c := range r.Coefficients {
		if c.Name == name {
			return c, true
		}
	}
	return Coefficient{}, false
}

// CorrelationResult is a Pearson correlation with its t-based p-value
type CorrelationResult struct {
	Name        string      `json:"name"`
	X           string      `json:"x"`
	Y           string      `json:"y"`
	N           int         `json:"n"`
	R           domain.Rate `json:"r"`
	PValue      domain.Rate `json:"p_value"`
	Significant bool        `json:"significant"`
	Err         string      `json:"error,omitempty"`
}

// Results bundles every test of a run
type Results struct {
	Alpha        float64             `json:"alpha"`
	TTest        TTestResult         `json:"t_test"`
	Regression   RegressionResult    `json:"regression"`
	Correlations []CorrelationResult `json:"correlations"`
}

// Failed lists the names of tests that could not be computed
func (r *Results) Failed() []string {
	var failed []string
	if r.TTest.Err != "" {
		failed = append(failed, "t_test")
	}
	if r.Regression.Err != "" {
		failed = append(failed, "regression")
	}
	for _, c := range r.Correlations {
		if c.Err != "" {
			failed = append(failed, c.Name)
		}
	}
	return failed
}
