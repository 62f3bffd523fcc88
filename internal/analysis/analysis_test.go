package analysis

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTestWelch(t *testing.T) {
	a := []float64{1.25, 0.733333333, 0.75}
	b := []float64{0.25, 1.4, 0.8, 1.75, 0.25}

	res, err := TTest(a, b, false)
	require.NoError(t, err)

	assert.Equal(t, 3, res.NA)
	assert.Equal(t, 5, res.NB)
	assert.InDelta(t, 0.911111, res.MeanA, 1e-6)
	assert.InDelta(t, 0.89, res.MeanB, 1e-9)
	assert.InDelta(t, 0.086204, res.VarA, 1e-5)
	assert.InDelta(t, 0.45675, res.VarB, 1e-9)
	assert.InDelta(t, 0.0609, float64(res.T), 1e-3)
	assert.InDelta(t, 5.77, res.DF, 0.01)
	assert.InDelta(t, 0.9535, float64(res.PValue), 1e-3)
}

func TestTTestPooled(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{3, 4, 5, 6}

	res, err := TTest(a, b, true)
	require.NoError(t, err)

	// pooled variance 5/3, se = sqrt(5/3 * 1/2)
	assert.Equal(t, 6.0, res.DF)
	assert.InDelta(t, -2/math.Sqrt(5.0/6), float64(res.T), 1e-9)
	assert.InDelta(t, 0.0710, float64(res.PValue), 1e-3)
}

func TestTTestDropsMissing(t *testing.T) {
	res, err := TTest([]float64{1, math.NaN(), 2}, []float64{3, 4, math.Inf(1)}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.NA)
	assert.Equal(t, 2, res.NB)
}

func TestTTestInsufficientData(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
	}{
		{"single observation", []float64{1}, []float64{1, 2}},
		{"all missing", []float64{math.NaN(), math.NaN()}, []float64{1, 2}},
		{"zero variance", []float64{1, 1}, []float64{2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := TTest(tt.a, tt.b, false)
			assert.True(t, errors.Is(err, ErrInsufficientData))

			fields := marshalFields(t, res)
			assert.Nil(t, fields["t"])
			assert.Nil(t, fields["p_value"])
		})
	}
}

func TestOLS(t *testing.T) {
	y := []float64{3, 1, 7, 2}
	x := [][]float64{{3, 1}, {2, 1}, {0, 0}, {0, 0}}

	res, err := OLS("runs_scored", y, []string{"bangs", "home"}, x)
	require.NoError(t, err)

	assert.Equal(t, 4, res.N)
	assert.Equal(t, 1, res.DF)
	require.Len(t, res.Coefficients, 3)

	intercept, ok := res.Coefficient(InterceptName)
	require.True(t, ok)
	assert.InDelta(t, 4.5, intercept.Estimate, 1e-9)

	bangs, _ := res.Coefficient("bangs")
	assert.InDelta(t, 2.0, bangs.Estimate, 1e-9)
	home, _ := res.Coefficient("home")
	assert.InDelta(t, -7.5, home.Estimate, 1e-9)

	assert.InDelta(t, math.Sqrt(12.5), float64(res.RSE), 1e-9)
	assert.InDelta(t, 1-12.5/20.75, float64(res.RSquared), 1e-9)
	assert.InDelta(t, 1-(12.5/20.75)*3, float64(res.AdjRSquared), 1e-9)

	// intercept se = RSE * sqrt(1/2) since the two away rows pin it
	assert.InDelta(t, math.Sqrt(12.5)/math.Sqrt(2), float64(intercept.StdErr), 1e-9)
}

func TestOLSSimpleLine(t *testing.T) {
	y := []float64{1, 3, 5, 7, 9.5}
	x := [][]float64{{0}, {1}, {2}, {3}, {math.NaN()}}

	res, err := OLS("y", y, []string{"x"}, x)
	require.NoError(t, err)
	assert.Equal(t, 4, res.N)

	slope, _ := res.Coefficient("x")
	assert.InDelta(t, 2.0, slope.Estimate, 1e-9)
	assert.InDelta(t, 1.0, float64(res.RSquared), 1e-9)
}

// marshalFields renders v as JSON and decodes it into a generic map
func marshalFields(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	return fields
}

func TestOLSErrors(t *testing.T) {
	res, err := OLS("y", []float64{1, 2}, []string{"x"}, [][]float64{{1}, {2}})
	assert.True(t, errors.Is(err, ErrInsufficientData))

	fields := marshalFields(t, res)
	for _, key := range []string{"r_squared", "adj_r_squared", "residual_std_error"} {
		v, ok := fields[key]
		assert.True(t, ok, key)
		assert.Nil(t, v, key)
	}

	_, err = OLS("y", []float64{1, 2, 4, 3}, []string{"a", "b"},
		[][]float64{{1, 2}, {2, 4}, {3, 6}, {4, 8}})
	assert.True(t, errors.Is(err, ErrSingularDesign))

	_, err = OLS("y", []float64{1}, []string{"x"}, [][]float64{{1}, {2}})
	assert.Error(t, err)
}

func TestPearson(t *testing.T) {
	res, err := Pearson([]float64{3, 2, 0, 0}, []float64{3, 1, 7, 2})
	require.NoError(t, err)
	assert.Equal(t, 4, res.N)
	assert.InDelta(t, -5.25/math.Sqrt(6.75*20.75), float64(res.R), 1e-9)
	assert.InDelta(t, 0.5564, float64(res.PValue), 1e-3)

	perfect, err := Pearson([]float64{1, 2, 3}, []float64{2, 4, 6})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, float64(perfect.R), 1e-12)
	assert.Equal(t, 0.0, float64(perfect.PValue))
}

func TestPearsonInsufficientData(t *testing.T) {
	res, err := Pearson([]float64{1, 2}, []float64{1, 2})
	assert.True(t, errors.Is(err, ErrInsufficientData))
	fields := marshalFields(t, res)
	assert.Nil(t, fields["r"])
	assert.Nil(t, fields["p_value"])

	res, err = Pearson([]float64{1, 1, 1}, []float64{1, 2, 3})
	assert.True(t, errors.Is(err, ErrInsufficientData))
	assert.Nil(t, marshalFields(t, res)["r"])

	res, err = Pearson([]float64{1, math.NaN(), 3, 4}, []float64{1, 2, math.NaN(), 5})
	assert.True(t, errors.Is(err, ErrInsufficientData))
	assert.Equal(t, 2, res.N)
}
