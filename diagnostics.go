package regression

import (
	"github.com/statforge/go-regression/dataset"
	"github.com/statforge/go-regression/stats"
)

// VIF reports the variance inflation factor of each named predictor
// column, a screen for multicollinearity worth running before fitting.
func VIF(tbl *dataset.Table, predictors []string) (map[string]float64, error) {
	features := make(map[string][]float64, len(predictors))
	for _, p := range predictors {
		col, err := tbl.Column(p)
		if err != nil {
			return nil, invalid(err, "predictor %q", p)
		}
		features[p] = col
	}
	return stats.VarianceInflationFactor(features)
}

// Outliers returns the row indices of the named column falling outside
// a Tukey fence on the given percentile range.
func Outliers(tbl *dataset.Table, column string, lowerPerc, upperPerc, tukeyFactor float64) ([]int, error) {
	col, err := tbl.Column(column)
	if err != nil {
		return nil, invalid(err, "column %q", column)
	}
	return stats.DetectOutliers(col, lowerPerc, upperPerc, tukeyFactor), nil
}
