package regression

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cockroachdb/errors"
)

// Coefficient is one named term of a fitted model.
type Coefficient struct {
	Name     string  `json:"name"`
	Estimate float64 `json:"estimate"`
	StdErr   float64 `json:"std_error"`
}

// FittedModel holds the result of a Fit call. It is immutable once
// returned; repeated predictions never change the stored estimates.
type FittedModel struct {
	family     FamilySpec
	response   string
	predictors []string
	offset     string

	intercept  float64
	coef       []float64
	stderr     []float64
	dispersion float64
	scale      float64

	loglike  float64
	deviance float64

	// Training-sample diagnostics, response scale for fitted.
	fitted    []float64
	linear    []float64
	residuals []float64

	trained bool
}

// Family returns the distributional family of the fit.
func (m *FittedModel) Family() FamilySpec {
	return m.family
}

// Response returns the name of the response column.
func (m *FittedModel) Response() string {
	return m.response
}

// Predictors returns the predictor column names in model order.
func (m *FittedModel) Predictors() []string {
	return append([]string(nil), m.predictors...)
}

// Offset returns the offset column name, empty when none was used.
func (m *FittedModel) Offset() string {
	return m.offset
}

// Coefficients returns the named estimates in stable order, intercept
// first followed by the predictors in the order they were given to Fit.
// The offset never appears; its coefficient is fixed at one.
func (m *FittedModel) Coefficients() ([]Coefficient, error) {
	if m == nil || !m.trained {
		return nil, ErrUnfitModel
	}
	out := make([]Coefficient, 0, 1+len(m.coef))
	out = append(out, Coefficient{Name: InterceptName, Estimate: m.intercept, StdErr: m.stderr[0]})
	for i, p := range m.predictors {
		out = append(out, Coefficient{Name: p, Estimate: m.coef[i], StdErr: m.stderr[i+1]})
	}
	return out, nil
}

// Intercept returns the fitted intercept on the link scale.
func (m *FittedModel) Intercept() float64 {
	return m.intercept
}

// Coef returns the predictor coefficients on the link scale, aligned
// with Predictors. The intercept is not included.
func (m *FittedModel) Coef() []float64 {
	return append([]float64(nil), m.coef...)
}

// Dispersion returns the negative binomial dispersion parameter, zero
// for other families.
func (m *FittedModel) Dispersion() float64 {
	return m.dispersion
}

// Scale returns the estimated scale parameter. For gaussian fits this
// is the residual variance; for poisson it is fixed at one.
func (m *FittedModel) Scale() float64 {
	return m.scale
}

// LogLike returns the maximized log-likelihood of the fit.
func (m *FittedModel) LogLike() float64 {
	return m.loglike
}

// Deviance returns the model deviance, residual sum of squares for the
// gaussian family.
func (m *FittedModel) Deviance() float64 {
	return m.deviance
}

// FittedValues returns the training-sample fitted values on the
// response scale.
func (m *FittedModel) FittedValues() []float64 {
	return append([]float64(nil), m.fitted...)
}

// Residuals returns the training-sample response residuals.
func (m *FittedModel) Residuals() []float64 {
	return append([]float64(nil), m.residuals...)
}

// ModelEq returns a string representation of the model equation on the
// link scale.
func (m *FittedModel) ModelEq() string {
	if m == nil || !m.trained {
		return ""
	}
	var b strings.Builder
	lhs := m.response
	if m.family.LinkName() == "log" {
		lhs = "log(" + m.response + ")"
	}
	fmt.Fprintf(&b, "%s ~ %.5f", lhs, m.intercept)
	for i, p := range m.predictors {
		fmt.Fprintf(&b, " + %.5f*%s", m.coef[i], p)
	}
	if m.offset != "" {
		fmt.Fprintf(&b, " + %s", m.offset)
	}
	return b.String()
}

// Summary returns a text table of the fit for terminal display.
func (m *FittedModel) Summary() (string, error) {
	coefs, err := m.Coefficients()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Family:         %s\n", m.family)
	fmt.Fprintf(&b, "Link:           %s\n", m.family.LinkName())
	fmt.Fprintf(&b, "Num obs:        %d\n", len(m.fitted))
	if m.family == NegBinomial {
		fmt.Fprintf(&b, "Dispersion:     %f\n", m.dispersion)
	}
	fmt.Fprintf(&b, "Log-likelihood: %f\n", m.loglike)
	fmt.Fprintf(&b, "Deviance:       %f\n\n", m.deviance)
	fmt.Fprintf(&b, "%16s %12s %12s %12s %12s\n", "Variable", "Estimate", "SE", "Z-score", "P-value")
	norm := distuv.UnitNormal
	for _, c := range coefs {
		z := 0.0
		if c.StdErr > 0 {
			z = c.Estimate / c.StdErr
		}
		p := 2 * norm.CDF(-abs(z))
		fmt.Fprintf(&b, "%16s %12.4f %12.4f %12.4f %12.4f\n", c.Name, c.Estimate, c.StdErr, z, p)
	}
	return b.String(), nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Model is the serializable form of a fitted model. It carries enough
// to reproduce predictions but not the training diagnostics.
type Model struct {
	Family       string        `json:"family"`
	Link         string        `json:"link"`
	Response     string        `json:"response"`
	Predictors   []string      `json:"predictors"`
	Offset       string        `json:"offset,omitempty"`
	Coefficients []Coefficient `json:"coefficients"`
	Dispersion   float64       `json:"dispersion,omitempty"`
	Scale        float64       `json:"scale,omitempty"`
}

// Model returns the serializable form of the fit.
func (m *FittedModel) Model() (Model, error) {
	coefs, err := m.Coefficients()
	if err != nil {
		return Model{}, err
	}
	return Model{
		Family:       m.family.String(),
		Link:         m.family.LinkName(),
		Response:     m.response,
		Predictors:   m.Predictors(),
		Offset:       m.offset,
		Coefficients: coefs,
		Dispersion:   m.dispersion,
		Scale:        m.scale,
	}, nil
}

// WriteJSON serializes the fit to w.
func (m *FittedModel) WriteJSON(w io.Writer) error {
	mdl, err := m.Model()
	if err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(mdl)
}

// NewFromModel reconstructs a predictable model from its serialized
// form. Training diagnostics such as fitted values are not restored.
func NewFromModel(mdl Model) (*FittedModel, error) {
	var family FamilySpec
	switch mdl.Family {
	case Gaussian.String():
		family = Gaussian
	case Poisson.String():
		family = Poisson
	case NegBinomial.String():
		family = NegBinomial
	default:
		return nil, errors.Wrapf(ErrUnknownFamily, "family %q", mdl.Family)
	}
	if len(mdl.Coefficients) != len(mdl.Predictors)+1 {
		return nil, errors.Newf("expected %d coefficients, got %d", len(mdl.Predictors)+1, len(mdl.Coefficients))
	}

	m := &FittedModel{
		family:     family,
		response:   mdl.Response,
		predictors: append([]string(nil), mdl.Predictors...),
		offset:     mdl.Offset,
		intercept:  mdl.Coefficients[0].Estimate,
		dispersion: mdl.Dispersion,
		scale:      mdl.Scale,
		trained:    true,
	}
	m.coef = make([]float64, len(mdl.Predictors))
	m.stderr = make([]float64, len(mdl.Coefficients))
	m.stderr[0] = mdl.Coefficients[0].StdErr
	for i, c := range mdl.Coefficients[1:] {
		m.coef[i] = c.Estimate
		m.stderr[i+1] = c.StdErr
	}
	return m, nil
}

// ReadModelJSON deserializes a model previously written by WriteJSON.
func ReadModelJSON(r io.Reader) (*FittedModel, error) {
	var mdl Model
	if err := json.NewDecoder(r).Decode(&mdl); err != nil {
		return nil, err
	}
	return NewFromModel(mdl)
}
