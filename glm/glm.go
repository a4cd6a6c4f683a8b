// Package glm fits generalized linear models by iteratively reweighted
// least squares or gradient-based optimization. Supported families are
// Gaussian, Poisson, quasi-Poisson, and negative binomial with identity and
// log links. Offsets enter the linear predictor with a fixed coefficient of
// one and are never estimated.
package glm

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

var (
	ErrNoFamily          = errors.New("family must be set before fitting")
	ErrInvalidLinkFamily = errors.New("link is not valid for family")
	ErrVariableNotFound  = errors.New("variable not found in data")
	ErrDataLenMismatch   = errors.New("data columns have different lengths")
	ErrNoData            = errors.New("no data columns")
	ErrNoCovariates      = errors.New("model has no covariates")
	ErrNotDone           = errors.New("model definition is not complete, call Done before Fit")
	ErrUnknownFitMethod  = errors.New("unknown fit method")
	ErrSingular          = errors.New("singular weighted moment matrix")
)

// GLM represents a generalized linear model to be fit to columnar data.
type GLM struct {
	data  [][]float64
	names []string

	// Positions of the covariates in data
	xpos []int

	yname string
	ypos  int

	offsetname string
	offsetpos  int

	weightname string
	weightpos  int

	fam  *Family
	link *Link
	vari *Variance

	// Either "irls" (default) or "gradient".
	fitMethod string

	// Optional starting values for the coefficients.
	start []float64

	log zerolog.Logger

	done bool
}

// NewGLM creates a GLM for the given columnar data. Every column not claimed
// as the response, offset, or weight becomes a covariate, in data order. An
// intercept is not added implicitly; include a constant column to fit one.
func NewGLM(data [][]float64, names []string, yname string) *GLM {
	return &GLM{
		data:      data,
		names:     names,
		yname:     yname,
		fitMethod: "irls",
		log:       zerolog.Nop(),
	}
}

// Family sets the GLM family.
func (glm *GLM) Family(fam *Family) *GLM {
	glm.fam = fam
	return glm
}

// Link sets the link function. If never called, the family's canonical link
// is used.
func (glm *GLM) Link(link *Link) *GLM {
	glm.link = link
	return glm
}

// Offset sets the name of the offset variable. The offset is added to the
// linear predictor with a fixed coefficient of one.
func (glm *GLM) Offset(name string) *GLM {
	glm.offsetname = name
	return glm
}

// Weight sets the name of the case weight variable.
func (glm *GLM) Weight(name string) *GLM {
	glm.weightname = name
	return glm
}

// FitMethod selects the fitting algorithm, either "irls" or "gradient".
func (glm *GLM) FitMethod(method string) *GLM {
	glm.fitMethod = strings.ToLower(method)
	return glm
}

// Start sets starting values for the fitting algorithm.
func (glm *GLM) Start(start []float64) *GLM {
	glm.start = start
	return glm
}

// Logger sets a structured logger receiving fit progress at debug level.
func (glm *GLM) Logger(log zerolog.Logger) *GLM {
	glm.log = log
	return glm
}

// FamilyAlpha returns the dispersion parameter of the model's family,
// zero for families without one or when no family is set.
func (glm *GLM) FamilyAlpha() float64 {
	if glm.fam == nil {
		return 0
	}
	return glm.fam.Alpha()
}

// NumParams returns the number of covariates in the model.
func (glm *GLM) NumParams() int {
	return len(glm.xpos)
}

// NumObs returns the number of observations in the model's data.
func (glm *GLM) NumObs() int {
	if len(glm.data) == 0 {
		return 0
	}
	return len(glm.data[0])
}

func (glm *GLM) findvars() error {
	glm.ypos = -1
	glm.offsetpos = -1
	glm.weightpos = -1
	glm.xpos = glm.xpos[:0]

	for k, na := range glm.names {
		switch na {
		case glm.yname:
			glm.ypos = k
		case glm.offsetname:
			glm.offsetpos = k
		case glm.weightname:
			glm.weightpos = k
		default:
			glm.xpos = append(glm.xpos, k)
		}
	}

	if glm.ypos == -1 {
		return errors.Wrapf(ErrVariableNotFound, "outcome %q", glm.yname)
	}
	if glm.offsetpos == -1 && glm.offsetname != "" {
		return errors.Wrapf(ErrVariableNotFound, "offset %q", glm.offsetname)
	}
	if glm.weightpos == -1 && glm.weightname != "" {
		return errors.Wrapf(ErrVariableNotFound, "weight %q", glm.weightname)
	}
	if len(glm.xpos) == 0 {
		return ErrNoCovariates
	}
	return nil
}

func (glm *GLM) setup() error {
	if glm.link == nil {
		link, err := NewLink(glm.fam.canonicalLink())
		if err != nil {
			return err
		}
		glm.link = link
	}
	if !glm.fam.IsValidLink(glm.link) {
		return errors.Wrapf(ErrInvalidLinkFamily, "%s link with %s family", glm.link.Name, glm.fam.Name)
	}

	if glm.vari == nil {
		var err error
		switch glm.fam.TypeCode {
		case GaussianFamily:
			glm.vari, err = NewVariance(ConstantVar)
		case PoissonFamily, QuasiPoissonFamily:
			glm.vari, err = NewVariance(IdentityVar)
		case NegBinomFamily:
			glm.vari = NewNegBinomVariance(glm.fam.alpha)
		default:
			err = errors.Wrapf(ErrUnknownFamily, "%s", glm.fam.Name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Done completes the model definition. After Done returns without error the
// model can be fit with Fit.
func (glm *GLM) Done() (*GLM, error) {
	if glm.fam == nil {
		return nil, ErrNoFamily
	}
	if len(glm.data) == 0 {
		return nil, ErrNoData
	}

	n := len(glm.data[0])
	for k, col := range glm.data {
		if len(col) != n {
			return nil, errors.Wrapf(ErrDataLenMismatch, "column %q has %d rows, expected %d", glm.names[k], len(col), n)
		}
	}

	if err := glm.findvars(); err != nil {
		return nil, err
	}
	if err := glm.setup(); err != nil {
		return nil, err
	}

	if glm.start != nil && len(glm.start) != len(glm.xpos) {
		return nil, errors.Wrapf(ErrDataLenMismatch, "start has %d values for %d covariates", len(glm.start), len(glm.xpos))
	}

	glm.done = true
	return glm, nil
}

// Fit estimates the model parameters and returns a results value.
func (glm *GLM) Fit() (*Results, error) {
	if !glm.done {
		return nil, ErrNotDone
	}

	start := make([]float64, glm.NumParams())
	if glm.start != nil {
		copy(start, glm.start)
	}

	var params []float64
	var err error

	switch glm.fitMethod {
	case "gradient":
		glm.log.Debug().Str("family", glm.fam.Name).Str("link", glm.link.Name).Msg("fitting by gradient optimization")
		params, err = glm.fitGradient(start)
	case "irls":
		glm.log.Debug().Str("family", glm.fam.Name).Str("link", glm.link.Name).Msg("fitting by IRLS")
		params, err = glm.fitIRLS(start, defaultIRLSMaxIter)
	default:
		err = errors.Wrapf(ErrUnknownFitMethod, "%q", glm.fitMethod)
	}
	if err != nil {
		return nil, err
	}

	return glm.makeResults(params)
}

// response returns the observed outcome column.
func (glm *GLM) response() []float64 {
	return glm.data[glm.ypos]
}

// weights returns the case weight column or nil for unit weights.
func (glm *GLM) weights() []float64 {
	if glm.weightpos == -1 {
		return nil
	}
	return glm.data[glm.weightpos]
}

// offset returns the offset column or nil if no offset is set.
func (glm *GLM) offset() []float64 {
	if glm.offsetpos == -1 {
		return nil
	}
	return glm.data[glm.offsetpos]
}

// linpred writes the full linear predictor for the given coefficients into
// lp: the weighted sum of covariates plus the offset when present.
func (glm *GLM) linpred(params []float64, lp []float64) {
	zero(lp)
	for j, k := range glm.xpos {
		xda := glm.data[k]
		for i := range lp {
			lp[i] += params[j] * xda[i]
		}
	}
	if off := glm.offset(); off != nil {
		for i := range lp {
			lp[i] += off[i]
		}
	}
}

// LogLike returns the log-likelihood of the model at the given coefficients
// and scale.
func (glm *GLM) LogLike(params []float64, scale float64) float64 {
	n := glm.NumObs()
	lp := make([]float64, n)
	mn := make([]float64, n)

	glm.linpred(params, lp)
	glm.link.InvLink(lp, mn)

	return glm.fam.LogLike(glm.response(), mn, glm.weights(), scale)
}

// EstimateScale returns the estimated scale parameter at the given
// coefficients, using the Pearson chi-squared statistic. Families with a
// fixed scale always return 1.
func (glm *GLM) EstimateScale(params []float64) float64 {
	if glm.fam.fixedScale {
		return 1
	}

	n := glm.NumObs()
	lp := make([]float64, n)
	mn := make([]float64, n)
	va := make([]float64, n)

	glm.linpred(params, lp)
	glm.link.InvLink(lp, mn)
	glm.vari.Var(mn, va)

	yda := glm.response()
	wgt := glm.weights()

	var scale, ws float64
	for i, y := range yda {
		r := y - mn[i]
		if wgt == nil {
			scale += r * r / va[i]
			ws++
		} else {
			scale += wgt[i] * r * r / va[i]
			ws += wgt[i]
		}
	}

	return scale / (ws - float64(glm.NumParams()))
}

// zero sets all elements of the slice to 0.
func zero(x []float64) {
	for i := range x {
		x[i] = 0
	}
}

// one sets all elements of the slice to 1.
func one(x []float64) {
	for i := range x {
		x[i] = 1
	}
}
