package regression

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/statforge/go-regression/dataset"
)

// Scale selects the scale of predicted values.
type Scale uint8

const (
	// ScaleLinear returns the raw linear predictor,
	// intercept + sum(coef*x) + offset.
	ScaleLinear Scale = iota

	// ScaleResponse applies the inverse link to the linear predictor,
	// giving values on the scale of the response.
	ScaleResponse
)

func (s Scale) String() string {
	switch s {
	case ScaleLinear:
		return "linear"
	case ScaleResponse:
		return "response"
	}
	return "unknown"
}

// Predict computes predictions for every row of tbl on the requested
// scale. The table must contain every predictor column, and the offset
// column when the model was fit with one. The full linear predictor is
// assembled first and the inverse link is then applied to it as a
// whole, so partially transformed values can never leak out.
func (m *FittedModel) Predict(tbl *dataset.Table, scale Scale) ([]float64, error) {
	if m == nil || !m.trained {
		return nil, ErrUnfitModel
	}
	if scale > ScaleResponse {
		return nil, errors.Wrapf(ErrUnknownScale, "scale code %d", scale)
	}

	eta, err := m.linearPredictor(tbl)
	if err != nil {
		return nil, err
	}
	if scale == ScaleResponse && m.family.LinkName() == "log" {
		for i := range eta {
			eta[i] = math.Exp(eta[i])
		}
	}
	return eta, nil
}

// linearPredictor assembles intercept plus all coefficient terms plus
// the offset for every row. This is the only place predictions are
// computed from coefficients.
func (m *FittedModel) linearPredictor(tbl *dataset.Table) ([]float64, error) {
	if tbl == nil || tbl.NumRows() == 0 {
		return nil, invalid(dataset.ErrNoColumns, "no prediction table")
	}

	eta := make([]float64, tbl.NumRows())
	for i := range eta {
		eta[i] = m.intercept
	}
	for j, p := range m.predictors {
		col, err := tbl.Column(p)
		if err != nil {
			return nil, invalid(err, "predictor %q", p)
		}
		for i := range eta {
			eta[i] += m.coef[j] * col[i]
		}
	}
	if m.offset != "" {
		col, err := tbl.Column(m.offset)
		if err != nil {
			return nil, invalid(err, "offset %q", m.offset)
		}
		for i := range eta {
			eta[i] += col[i]
		}
	}
	return eta, nil
}
