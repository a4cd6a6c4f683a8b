package regression

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statforge/go-regression/dataset"
)

func countTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.New(
		[]string{"count", "x"},
		[][]float64{{1, 2, 4, 8}, {0, 1, 2, 3}},
	)
	require.NoError(t, err)
	return tbl
}

// overdispersedTable has counts whose variance is far above the mean.
func overdispersedTable(t *testing.T) *dataset.Table {
	t.Helper()
	y := []float64{2, 25, 4, 18, 1, 30, 6, 14, 3, 22, 5, 16, 2, 28, 8, 11}
	x := make([]float64, len(y))
	for i := range x {
		x[i] = float64(i % 4)
	}
	tbl, err := dataset.New([]string{"count", "x"}, [][]float64{y, x})
	require.NoError(t, err)
	return tbl
}

func TestFitGaussian(t *testing.T) {
	// y = 2 + 3a + 4b exactly.
	a := []float64{0, 1, 2, 3, 4, 1}
	b := []float64{1, 0, 2, 1, 3, 2}
	y := make([]float64, len(a))
	for i := range y {
		y[i] = 2 + 3*a[i] + 4*b[i]
	}
	tbl, err := dataset.New([]string{"y", "a", "b"}, [][]float64{y, a, b})
	require.NoError(t, err)

	m, err := Fit(tbl, "y", []string{"a", "b"}, Gaussian, nil)
	require.NoError(t, err)

	coefs, err := m.Coefficients()
	require.NoError(t, err)
	require.Len(t, coefs, 3)
	assert.Equal(t, InterceptName, coefs[0].Name)
	assert.Equal(t, "a", coefs[1].Name)
	assert.Equal(t, "b", coefs[2].Name)
	assert.InDelta(t, 2.0, coefs[0].Estimate, 1e-8)
	assert.InDelta(t, 3.0, coefs[1].Estimate, 1e-8)
	assert.InDelta(t, 4.0, coefs[2].Estimate, 1e-8)

	// Identity link, so both scales agree.
	lin, err := m.Predict(tbl, ScaleLinear)
	require.NoError(t, err)
	resp, err := m.Predict(tbl, ScaleResponse)
	require.NoError(t, err)
	assert.Equal(t, lin, resp)
	for i := range y {
		assert.InDelta(t, y[i], resp[i], 1e-8)
	}
}

func TestFitGaussianOffsetConsistency(t *testing.T) {
	// A zero offset routes the fit through the IRLS solver instead of
	// direct least squares; both paths must report the same model.
	x := []float64{0, 1, 2, 3, 4, 5}
	y := []float64{1.1, 2.9, 5.2, 6.8, 9.1, 10.9}
	zeros := make([]float64, len(x))
	tbl, err := dataset.New([]string{"y", "x", "off"}, [][]float64{y, x, zeros})
	require.NoError(t, err)

	direct, err := Fit(tbl, "y", []string{"x"}, Gaussian, nil)
	require.NoError(t, err)

	opt := NewDefaultFitOptions()
	opt.Offset = "off"
	viaGLM, err := Fit(tbl, "y", []string{"x"}, Gaussian, opt)
	require.NoError(t, err)

	assert.InDelta(t, direct.Intercept(), viaGLM.Intercept(), 1e-8)
	assert.InDelta(t, direct.Coef()[0], viaGLM.Coef()[0], 1e-8)
	assert.InDelta(t, direct.Scale(), viaGLM.Scale(), 1e-8)
	assert.InDelta(t, direct.Deviance(), viaGLM.Deviance(), 1e-8)
	assert.InDelta(t, direct.LogLike(), viaGLM.LogLike(), 1e-8)
}

func TestFitPoisson(t *testing.T) {
	tbl := countTable(t)

	m, err := Fit(tbl, "count", []string{"x"}, Poisson, nil)
	require.NoError(t, err)

	coefs, err := m.Coefficients()
	require.NoError(t, err)
	require.Len(t, coefs, 2)
	assert.InDelta(t, 0.0, coefs[0].Estimate, 1e-4)
	assert.InDelta(t, math.Log(2), coefs[1].Estimate, 1e-4)

	// Round trip: predicting on the training table on the response
	// scale reproduces the stored fitted values.
	resp, err := m.Predict(tbl, ScaleResponse)
	require.NoError(t, err)
	fitted := m.FittedValues()
	require.Len(t, resp, len(fitted))
	for i := range resp {
		assert.InDelta(t, fitted[i], resp[i], 1e-8)
	}

	// Response scale is the exponential of the linear scale.
	lin, err := m.Predict(tbl, ScaleLinear)
	require.NoError(t, err)
	for i := range lin {
		assert.InDelta(t, math.Exp(lin[i]), resp[i], 1e-8)
	}
}

func TestFitPoissonGradient(t *testing.T) {
	tbl := countTable(t)

	opt := NewDefaultFitOptions()
	opt.FitMethod = FitMethodGradient
	m, err := Fit(tbl, "count", []string{"x"}, Poisson, opt)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, m.Intercept(), 1e-3)
	assert.InDelta(t, math.Log(2), m.Coef()[0], 1e-3)
}

func TestFitPoissonOffset(t *testing.T) {
	// Counts tripled by a known exposure carried as a log offset.
	y := []float64{3, 6, 12, 24}
	x := []float64{0, 1, 2, 3}
	off := []float64{math.Log(3), math.Log(3), math.Log(3), math.Log(3)}
	tbl, err := dataset.New([]string{"count", "x", "logexp"}, [][]float64{y, x, off})
	require.NoError(t, err)

	opt := NewDefaultFitOptions()
	opt.Offset = "logexp"
	m, err := Fit(tbl, "count", []string{"x"}, Poisson, opt)
	require.NoError(t, err)

	// The offset never shows up as a coefficient.
	coefs, err := m.Coefficients()
	require.NoError(t, err)
	require.Len(t, coefs, 2)
	assert.InDelta(t, 0.0, coefs[0].Estimate, 1e-4)
	assert.InDelta(t, math.Log(2), coefs[1].Estimate, 1e-4)

	// The offset still enters every prediction.
	resp, err := m.Predict(tbl, ScaleResponse)
	require.NoError(t, err)
	for i := range y {
		assert.InDelta(t, y[i], resp[i], 1e-2)
	}
}

func TestFitNegBinomialFixedDispersion(t *testing.T) {
	tbl := countTable(t)

	opt := NewDefaultFitOptions()
	opt.Dispersion = 0.5
	m, err := Fit(tbl, "count", []string{"x"}, NegBinomial, opt)
	require.NoError(t, err)

	assert.Equal(t, 0.5, m.Dispersion())
	assert.InDelta(t, 0.0, m.Intercept(), 1e-3)
	assert.InDelta(t, math.Log(2), m.Coef()[0], 1e-3)
}

func TestFitNegBinomialProfiled(t *testing.T) {
	tbl := overdispersedTable(t)

	m, err := Fit(tbl, "count", []string{"x"}, NegBinomial, nil)
	require.NoError(t, err)

	assert.Greater(t, m.Dispersion(), 0.0)

	// The negative binomial likelihood should beat poisson on data this
	// overdispersed.
	pm, err := Fit(tbl, "count", []string{"x"}, Poisson, nil)
	require.NoError(t, err)
	assert.Greater(t, m.LogLike(), pm.LogLike())
}

func TestFitErrors(t *testing.T) {
	tbl := countTable(t)

	t.Run("negative counts rejected before solver", func(t *testing.T) {
		bad, err := dataset.New([]string{"count", "x"}, [][]float64{{1, -2, 3}, {0, 1, 2}})
		require.NoError(t, err)
		_, err = Fit(bad, "count", []string{"x"}, Poisson, nil)
		require.ErrorIs(t, err, ErrInvalidData)
		require.ErrorIs(t, err, dataset.ErrNotCountData)
	})

	t.Run("fractional counts rejected", func(t *testing.T) {
		bad, err := dataset.New([]string{"count", "x"}, [][]float64{{1, 2.5}, {0, 1}})
		require.NoError(t, err)
		_, err = Fit(bad, "count", []string{"x"}, NegBinomial, nil)
		require.ErrorIs(t, err, ErrInvalidData)
	})

	t.Run("gaussian accepts negative responses", func(t *testing.T) {
		neg, err := dataset.New([]string{"y", "x"}, [][]float64{{-1, -2, 3}, {0, 1, 2}})
		require.NoError(t, err)
		_, err = Fit(neg, "y", []string{"x"}, Gaussian, nil)
		require.NoError(t, err)
	})

	t.Run("unknown response", func(t *testing.T) {
		_, err := Fit(tbl, "nope", []string{"x"}, Poisson, nil)
		require.ErrorIs(t, err, ErrInvalidData)
	})

	t.Run("unknown predictor", func(t *testing.T) {
		_, err := Fit(tbl, "count", []string{"nope"}, Poisson, nil)
		require.ErrorIs(t, err, ErrInvalidData)
	})

	t.Run("no predictors", func(t *testing.T) {
		_, err := Fit(tbl, "count", nil, Poisson, nil)
		require.ErrorIs(t, err, ErrNoPredictors)
		require.ErrorIs(t, err, ErrInvalidData)
	})

	t.Run("duplicate predictor", func(t *testing.T) {
		_, err := Fit(tbl, "count", []string{"x", "x"}, Poisson, nil)
		require.ErrorIs(t, err, ErrInvalidData)
	})

	t.Run("offset reuses predictor", func(t *testing.T) {
		opt := NewDefaultFitOptions()
		opt.Offset = "x"
		_, err := Fit(tbl, "count", []string{"x"}, Poisson, opt)
		require.ErrorIs(t, err, ErrInvalidData)
	})

	t.Run("unknown family", func(t *testing.T) {
		_, err := Fit(tbl, "count", []string{"x"}, FamilySpec(99), nil)
		require.ErrorIs(t, err, ErrUnknownFamily)
	})

	t.Run("nil table", func(t *testing.T) {
		_, err := Fit(nil, "count", []string{"x"}, Poisson, nil)
		require.ErrorIs(t, err, ErrInvalidData)
	})
}

func TestFitSpeciesCSV(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "species.csv"))
	require.NoError(t, err)
	defer f.Close()

	opt := dataset.NewDefaultCSVOptions()
	opt.LabelColumn = "region"
	tbl, err := dataset.ReadCSV(f, opt)
	require.NoError(t, err)
	require.Equal(t, []string{"count", "elevation", "log_area"}, tbl.Names())
	require.Greater(t, tbl.NumRows(), 20)

	fitOpt := NewDefaultFitOptions()
	fitOpt.Offset = "log_area"

	pm, err := Fit(tbl, "count", []string{"elevation"}, Poisson, fitOpt)
	require.NoError(t, err)

	nm, err := Fit(tbl, "count", []string{"elevation"}, NegBinomial, fitOpt)
	require.NoError(t, err)

	test, err := TestOverdispersion(pm, nm)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, test.Statistic, 0.0)
	assert.Greater(t, test.PValue, 0.0)
	assert.LessOrEqual(t, test.PValue, 1.0)
}
