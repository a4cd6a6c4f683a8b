package regression

import (
	"io"
	"math"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/statforge/go-regression/dataset"
)

// LineSeries generates an echart multi-line chart for some arbitrary x/value
// combination. Every series in y must have the same length as x.
func LineSeries(title string, seriesName []string, x []float64, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	lineData := make([][]opts.LineData, len(y))

	filteredX := make([]float64, 0, len(x))
	for i := 0; i < len(y); i++ {
		lineData[i] = make([]opts.LineData, 0, len(y[i]))
		for j := 0; j < len(y[i]); j++ {
			if math.IsNaN(y[i][j]) {
				continue
			}
			if i == 0 {
				filteredX = append(filteredX, x[j])
			}
			lineData[i] = append(lineData[i], opts.LineData{Value: y[i][j]})
		}
	}

	line = line.SetXAxis(filteredX)
	for i, series := range seriesName {
		line = line.AddSeries(series, lineData[i])
	}

	return line
}

// ScatterFit generates an echart chart of observed points against one
// predictor with the model's fitted curve overlaid, points sorted by
// the predictor value.
func ScatterFit(title string, x, observed, fitted []float64) *charts.Line {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })

	xs := make([]float64, len(idx))
	fitData := make([]opts.LineData, 0, len(idx))
	obsData := make([]opts.ScatterData, 0, len(idx))
	for i, j := range idx {
		xs[i] = x[j]
		fitData = append(fitData, opts.LineData{Value: fitted[j]})
		obsData = append(obsData, opts.ScatterData{Value: observed[j]})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)
	line.SetXAxis(xs).AddSeries("Fitted", fitData)

	scatter := charts.NewScatter()
	scatter.SetXAxis(xs).AddSeries("Observed", obsData)

	line.Overlap(scatter)
	return line
}

// PlotFit renders an HTML page to w with the model's fit against one
// predictor column of tbl. Predictions are recomputed for the table on
// the response scale.
func (m *FittedModel) PlotFit(w io.Writer, tbl *dataset.Table, predictor string) error {
	fitted, err := m.Predict(tbl, ScaleResponse)
	if err != nil {
		return err
	}
	observed, err := tbl.Column(m.response)
	if err != nil {
		return invalid(err, "response %q", m.response)
	}
	x, err := tbl.Column(predictor)
	if err != nil {
		return invalid(err, "predictor %q", predictor)
	}

	page := components.NewPage()
	page.AddCharts(
		ScatterFit(m.response+" vs "+predictor, x, observed, fitted),
	)
	return page.Render(w)
}
