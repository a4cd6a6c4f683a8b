// Package stats provides regression diagnostics that operate on raw
// columns, outlier screening and collinearity measurement.
package stats

import (
	"math"
	"sort"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/statforge/go-regression/models"
)

var (
	ErrMinimumFeatures    = errors.New("need at least 2 features to compute VIF")
	ErrFeatureLenMismatch = errors.New("some feature length is not consistent")
	ErrFeatureLen         = errors.New("must have at least 2 points per feature")
)

// DetectOutliers returns the indices of values outside a Tukey fence
// built from the given percentile range. A tukeyFactor of zero flags
// everything at or beyond the percentiles themselves.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	if len(y) == 0 {
		return nil
	}
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	yCopy := make([]float64, len(y))
	copy(yCopy, y)
	sort.Float64s(yCopy)
	lowerIdx := int(math.Ceil(float64(len(yCopy)-1) * lowerPerc))
	upperIdx := int(math.Floor(float64(len(yCopy)-1) * upperPerc))

	lower := yCopy[lowerIdx]
	upper := yCopy[upperIdx]
	innerRange := upper - lower
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i := 0; i < len(y); i++ {
		if y[i] > upper || y[i] < lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}

// VarianceInflationFactor measures multicollinearity among predictor
// columns. Each predictor is regressed on all of the others and its VIF
// is 1/(1-R2) of that fit. Values above roughly 10 indicate a predictor
// that is close to a linear combination of the rest.
func VarianceInflationFactor(features map[string][]float64) (map[string]float64, error) {
	if len(features) < 2 {
		return nil, ErrMinimumFeatures
	}
	var m int
	for _, feature := range features {
		if len(feature) < 2 {
			return nil, ErrFeatureLen
		}
		if m == 0 {
			m = len(feature)
			continue
		}
		if m != len(feature) {
			return nil, ErrFeatureLenMismatch
		}
	}

	n := len(features)
	vif := make(map[string]float64, n)
	x := mat.NewDense(m, n-1, nil)
	for label, labelFeature := range features {
		c := 0
		for otherLabel, otherLabelFeature := range features {
			if otherLabel == label {
				continue
			}
			x.SetCol(c, otherLabelFeature)
			c++
		}

		ols, err := models.NewOLSRegression(models.NewDefaultOLSOptions())
		if err != nil {
			return nil, err
		}
		y := mat.NewDense(m, 1, labelFeature)
		if err := ols.Fit(x, y); err != nil {
			return nil, err
		}
		predicted, err := ols.Predict(x)
		if err != nil {
			return nil, err
		}

		r2 := stat.RSquaredFrom(predicted, labelFeature, nil)
		if r2 >= 1 {
			vif[label] = math.Inf(1)
			continue
		}
		vif[label] = 1 / (1 - r2)
	}
	return vif, nil
}
