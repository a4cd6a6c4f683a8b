package regression

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statforge/go-regression/dataset"
)

func TestModelRoundTrip(t *testing.T) {
	tbl := countTable(t)

	m, err := Fit(tbl, "count", []string{"x"}, Poisson, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.WriteJSON(&buf))

	restored, err := ReadModelJSON(&buf)
	require.NoError(t, err)

	assert.Equal(t, m.Family(), restored.Family())
	assert.Equal(t, m.Response(), restored.Response())
	assert.Equal(t, m.Predictors(), restored.Predictors())

	want, err := m.Predict(tbl, ScaleResponse)
	require.NoError(t, err)
	got, err := restored.Predict(tbl, ScaleResponse)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12)
	}
}

func TestNewFromModelErrors(t *testing.T) {
	t.Run("unknown family", func(t *testing.T) {
		_, err := NewFromModel(Model{Family: "beta"})
		require.ErrorIs(t, err, ErrUnknownFamily)
	})

	t.Run("coefficient count mismatch", func(t *testing.T) {
		_, err := NewFromModel(Model{
			Family:     Gaussian.String(),
			Predictors: []string{"a", "b"},
			Coefficients: []Coefficient{
				{Name: InterceptName, Estimate: 1},
			},
		})
		require.Error(t, err)
	})
}

func TestTidy(t *testing.T) {
	tbl := countTable(t)

	m, err := Fit(tbl, "count", []string{"x"}, Poisson, nil)
	require.NoError(t, err)

	rows, err := m.Tidy()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, InterceptName, rows[0].Term)
	assert.Equal(t, "x", rows[1].Term)
	for _, r := range rows {
		assert.Greater(t, r.StdErr, 0.0)
		assert.GreaterOrEqual(t, r.PValue, 0.0)
		assert.LessOrEqual(t, r.PValue, 1.0)
	}
	assert.InDelta(t, rows[1].Estimate/rows[1].StdErr, rows[1].Statistic, 1e-12)

	_, err = (&FittedModel{}).Tidy()
	require.ErrorIs(t, err, ErrUnfitModel)
}

func TestModelEq(t *testing.T) {
	tbl := countTable(t)

	m, err := Fit(tbl, "count", []string{"x"}, Poisson, nil)
	require.NoError(t, err)

	eq := m.ModelEq()
	assert.Contains(t, eq, "log(count) ~ ")
	assert.Contains(t, eq, "*x")

	assert.Equal(t, "", (&FittedModel{}).ModelEq())
}

func TestSummary(t *testing.T) {
	tbl := countTable(t)

	m, err := Fit(tbl, "count", []string{"x"}, Poisson, nil)
	require.NoError(t, err)

	s, err := m.Summary()
	require.NoError(t, err)
	assert.Contains(t, s, "poisson")
	assert.Contains(t, s, "log")
	assert.Contains(t, s, InterceptName)
	assert.Contains(t, s, "x")

	_, err = (&FittedModel{}).Summary()
	require.ErrorIs(t, err, ErrUnfitModel)
}

func TestAccessorsCopy(t *testing.T) {
	tbl := countTable(t)

	m, err := Fit(tbl, "count", []string{"x"}, Poisson, nil)
	require.NoError(t, err)

	coef := m.Coef()
	coef[0] = math.Inf(1)
	assert.InDelta(t, math.Log(2), m.Coef()[0], 1e-4)

	fitted := m.FittedValues()
	fitted[0] = -1
	assert.InDelta(t, 1.0, m.FittedValues()[0], 1e-3)

	preds := m.Predictors()
	preds[0] = "mutated"
	assert.Equal(t, "x", m.Predictors()[0])
}

func TestPlotFit(t *testing.T) {
	tbl := countTable(t)

	m, err := Fit(tbl, "count", []string{"x"}, Poisson, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.PlotFit(&buf, tbl, "x"))
	assert.Contains(t, buf.String(), "Fitted")
	assert.Contains(t, buf.String(), "Observed")

	require.Error(t, m.PlotFit(&buf, tbl, "nope"))

	var unfit FittedModel
	require.ErrorIs(t, unfit.PlotFit(&buf, tbl, "x"), ErrUnfitModel)
}

func TestChartData(t *testing.T) {
	tbl, err := dataset.New([]string{"y", "x"}, [][]float64{{2, 1, 3}, {3, 1, 2}})
	require.NoError(t, err)

	y, err := tbl.Column("y")
	require.NoError(t, err)
	x, err := tbl.Column("x")
	require.NoError(t, err)

	line := ScatterFit("demo", x, y, []float64{2, 1, 3})
	require.NotNil(t, line)

	multi := LineSeries("demo", []string{"a", "b"}, x, [][]float64{y, y})
	require.NotNil(t, multi)
}
