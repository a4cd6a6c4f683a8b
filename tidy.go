package regression

import "gonum.org/v1/gonum/stat/distuv"

// TidyRow is one coefficient of a fit in long form, mirroring the
// conventional tidy output of statistical packages.
type TidyRow struct {
	Term      string  `json:"term"`
	Estimate  float64 `json:"estimate"`
	StdErr    float64 `json:"std_error"`
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
}

// Tidy returns one row per coefficient, intercept first, with Wald
// z-statistics and two-sided normal p-values.
func (m *FittedModel) Tidy() ([]TidyRow, error) {
	coefs, err := m.Coefficients()
	if err != nil {
		return nil, err
	}
	norm := distuv.UnitNormal
	rows := make([]TidyRow, len(coefs))
	for i, c := range coefs {
		z := 0.0
		if c.StdErr > 0 {
			z = c.Estimate / c.StdErr
		}
		rows[i] = TidyRow{
			Term:      c.Name,
			Estimate:  c.Estimate,
			StdErr:    c.StdErr,
			Statistic: z,
			PValue:    2 * norm.CDF(-abs(z)),
		}
	}
	return rows, nil
}
