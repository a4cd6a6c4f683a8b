// Package regression fits and inspects generalized linear models for
// teaching. It supports gaussian models on the identity link and
// poisson or negative binomial count models on the log link, with
// optional exposure offsets, prediction on the linear or response
// scale, and a likelihood ratio check for overdispersion.
package regression

import (
	"math"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/statforge/go-regression/dataset"
	"github.com/statforge/go-regression/glm"
	"github.com/statforge/go-regression/models"
)

// InterceptName labels the intercept term in coefficient output.
const InterceptName = "(Intercept)"

// Fit estimates a model of the response column on the predictor columns
// of tbl under the given family. The input table is validated before
// any solver runs and every rejection carries the ErrInvalidData mark.
// A nil opt uses NewDefaultFitOptions.
func Fit(tbl *dataset.Table, response string, predictors []string, family FamilySpec, opt *FitOptions) (*FittedModel, error) {
	if opt == nil {
		opt = NewDefaultFitOptions()
	}
	if !family.valid() {
		return nil, errors.Wrapf(ErrUnknownFamily, "family code %d", family)
	}
	if err := checkFields(tbl, response, predictors, opt.Offset); err != nil {
		return nil, err
	}
	if family.isCount() {
		if err := tbl.CheckCounts(response); err != nil {
			return nil, invalid(err, "response %q is not count data", response)
		}
	}

	m := &FittedModel{
		family:     family,
		response:   response,
		predictors: append([]string(nil), predictors...),
		offset:     opt.Offset,
		dispersion: opt.Dispersion,
	}

	var err error
	if family == Gaussian && opt.Offset == "" {
		err = m.fitLeastSquares(tbl)
	} else {
		err = m.fitGLM(tbl, opt)
	}
	if err != nil {
		return nil, err
	}
	m.trained = true
	return m, nil
}

func checkFields(tbl *dataset.Table, response string, predictors []string, offset string) error {
	if tbl == nil || tbl.NumRows() == 0 {
		return invalid(dataset.ErrNoColumns, "no training table")
	}
	if len(predictors) == 0 {
		return errors.Mark(ErrNoPredictors, ErrInvalidData)
	}
	if !tbl.HasColumn(response) {
		return invalid(dataset.ErrUnknownColumn, "response %q", response)
	}
	seen := map[string]struct{}{response: {}}
	for _, p := range predictors {
		if !tbl.HasColumn(p) {
			return invalid(dataset.ErrUnknownColumn, "predictor %q", p)
		}
		if _, ok := seen[p]; ok {
			return invalid(dataset.ErrDuplicateColumn, "field %q used twice", p)
		}
		seen[p] = struct{}{}
	}
	if offset != "" {
		if !tbl.HasColumn(offset) {
			return invalid(dataset.ErrUnknownColumn, "offset %q", offset)
		}
		if _, ok := seen[offset]; ok {
			return invalid(dataset.ErrDuplicateColumn, "offset %q also used as response or predictor", offset)
		}
	}
	return nil
}

// fitLeastSquares solves the gaussian identity model directly by QR
// least squares.
func (m *FittedModel) fitLeastSquares(tbl *dataset.Table) error {
	x, err := tbl.Matrix(m.predictors)
	if err != nil {
		return invalid(err, "building design matrix")
	}
	y, err := tbl.Column(m.response)
	if err != nil {
		return invalid(err, "reading response")
	}

	ols, err := models.NewOLSRegression(models.NewDefaultOLSOptions())
	if err != nil {
		return err
	}
	ymat := mat.NewDense(len(y), 1, y)
	if err := ols.Fit(x, ymat); err != nil {
		return err
	}

	m.intercept = ols.Intercept()
	m.coef = ols.Coef()
	m.stderr = ols.StdErr()
	m.scale = ols.ResidualVariance()

	m.linear, err = ols.Predict(x)
	if err != nil {
		return err
	}
	m.fitted = append([]float64(nil), m.linear...)
	m.residuals = make([]float64, len(y))
	rss := 0.0
	for i := range y {
		m.residuals[i] = y[i] - m.fitted[i]
		rss += m.residuals[i] * m.residuals[i]
	}
	m.deviance = rss

	// Log-likelihood evaluated at the Pearson scale estimate, the same
	// convention the IRLS solver uses, so gaussian fits report the same
	// value whether or not they carry an offset.
	n := float64(len(y))
	if m.scale > 0 {
		m.loglike = -rss/(2*m.scale) - n*math.Log(2*math.Pi*m.scale)/2
	} else {
		m.loglike = math.Inf(1)
	}
	return nil
}

// fitGLM solves count families, and gaussian fits with an offset, by
// iteratively reweighted least squares or gradient optimization.
func (m *FittedModel) fitGLM(tbl *dataset.Table, opt *FitOptions) error {
	data, names, err := m.glmData(tbl)
	if err != nil {
		return err
	}

	build := func(fam *glm.Family) (*glm.GLM, error) {
		g := glm.NewGLM(data, names, m.response).
			Family(fam).
			FitMethod(opt.fitMethod()).
			Logger(opt.logger())
		if m.offset != "" {
			g = g.Offset(m.offset)
		}
		return g.Done()
	}

	var rslt *glm.Results
	switch m.family {
	case Gaussian, Poisson:
		famType := glm.PoissonFamily
		if m.family == Gaussian {
			famType = glm.GaussianFamily
		}
		fam, ferr := glm.NewFamily(famType)
		if ferr != nil {
			return ferr
		}
		g, berr := build(fam)
		if berr != nil {
			return berr
		}
		rslt, err = g.Fit()
	case NegBinomial:
		rslt, err = m.fitNegBinom(build, opt)
	}
	if err != nil {
		return err
	}

	params := rslt.Params()
	m.intercept = params[0]
	m.coef = append([]float64(nil), params[1:]...)
	m.stderr = rslt.StdErr()
	m.scale = rslt.Scale()
	m.loglike = rslt.LogLike()
	m.deviance = rslt.Deviance()
	m.fitted = rslt.FittedValues()
	m.linear = rslt.LinearPredictor()
	m.residuals = rslt.Residuals()
	if m.family == NegBinomial {
		m.dispersion = rslt.Model().FamilyAlpha()
	}
	return nil
}

// fitNegBinom fits the negative binomial model, profiling the
// dispersion parameter unless the options fix it.
func (m *FittedModel) fitNegBinom(build func(*glm.Family) (*glm.GLM, error), opt *FitOptions) (*glm.Results, error) {
	logLink, err := glm.NewLink(glm.LogLink)
	if err != nil {
		return nil, err
	}

	fitAt := func(alpha float64) (*glm.Results, error) {
		fam, ferr := glm.NewNegBinomFamily(alpha, logLink)
		if ferr != nil {
			return nil, ferr
		}
		g, berr := build(fam)
		if berr != nil {
			return nil, berr
		}
		return g.Fit()
	}

	if opt.Dispersion > 0 {
		return fitAt(opt.Dispersion)
	}

	// Seed the profile search with a method-of-moments estimate from a
	// poisson fit of the same design.
	pfam, err := glm.NewFamily(glm.PoissonFamily)
	if err != nil {
		return nil, err
	}
	pg, err := build(pfam)
	if err != nil {
		return nil, err
	}
	prslt, err := pg.Fit()
	if err != nil {
		return nil, err
	}
	return glm.ProfileNegBinom(fitAt, glm.MomentDispersion(prslt))
}

// glmData assembles the column set handed to the solver. The constant
// column comes first so the coefficient vector is intercept first, and
// the offset column rides along without a position in that vector.
func (m *FittedModel) glmData(tbl *dataset.Table) ([][]float64, []string, error) {
	y, err := tbl.Column(m.response)
	if err != nil {
		return nil, nil, invalid(err, "reading response")
	}
	ones := make([]float64, len(y))
	for i := range ones {
		ones[i] = 1
	}

	data := [][]float64{y, ones}
	names := []string{m.response, InterceptName}
	for _, p := range m.predictors {
		col, cerr := tbl.Column(p)
		if cerr != nil {
			return nil, nil, invalid(cerr, "reading predictor %q", p)
		}
		data = append(data, col)
		names = append(names, p)
	}
	if m.offset != "" {
		col, cerr := tbl.Column(m.offset)
		if cerr != nil {
			return nil, nil, invalid(cerr, "reading offset %q", m.offset)
		}
		data = append(data, col)
		names = append(names, m.offset)
	}
	return data, names, nil
}
