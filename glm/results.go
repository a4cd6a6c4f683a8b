package glm

import (
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Results describes a fitted generalized linear model. Results values are
// immutable once created.
type Results struct {
	model *GLM

	params []float64
	xnames []string

	// Inverse expected information, scaled; row-major nvar*nvar.
	vcov []float64

	loglike  float64
	deviance float64
	scale    float64

	fitted []float64
	linear []float64
}

func (glm *GLM) makeResults(params []float64) (*Results, error) {
	scale := glm.EstimateScale(params)

	n := glm.NumObs()
	lp := make([]float64, n)
	mn := make([]float64, n)
	glm.linpred(params, lp)
	glm.link.InvLink(lp, mn)

	vcov, err := glm.vcov(params, scale)
	if err != nil {
		return nil, err
	}

	xnames := make([]string, 0, len(glm.xpos))
	for _, j := range glm.xpos {
		xnames = append(xnames, glm.names[j])
	}

	return &Results{
		model:    glm,
		params:   params,
		xnames:   xnames,
		vcov:     vcov,
		loglike:  glm.LogLike(params, scale),
		deviance: glm.fam.Deviance(glm.response(), mn, glm.weights(), 1),
		scale:    scale,
		fitted:   mn,
		linear:   lp,
	}, nil
}

// vcov computes the covariance matrix of the coefficient estimates from the
// inverse of the expected information matrix, scaled by the dispersion.
func (glm *GLM) vcov(params []float64, scale float64) ([]float64, error) {
	n := glm.NumObs()
	nvar := glm.NumParams()

	lp := make([]float64, n)
	mn := make([]float64, n)
	lderiv := make([]float64, n)
	va := make([]float64, n)
	w := make([]float64, n)

	glm.linpred(params, lp)
	glm.link.InvLink(lp, mn)
	glm.link.Deriv(mn, lderiv)
	glm.vari.Var(mn, va)

	wgt := glm.weights()
	for i := range w {
		w[i] = 1 / (lderiv[i] * lderiv[i] * va[i])
		if wgt != nil {
			w[i] *= wgt[i]
		}
	}

	info := make([]float64, nvar*nvar)
	for j1, k1 := range glm.xpos {
		xda := glm.data[k1]
		for j2 := 0; j2 <= j1; j2++ {
			xdb := glm.data[glm.xpos[j2]]
			var u float64
			for i := range xda {
				u += xda[i] * xdb[i] * w[i]
			}
			info[j1*nvar+j2] = u
			info[j2*nvar+j1] = u
		}
	}

	var inv mat.Dense
	if err := inv.Inverse(mat.NewDense(nvar, nvar, info)); err != nil {
		return nil, errors.Wrapf(ErrSingular, "information matrix: %v", err)
	}

	vcov := make([]float64, nvar*nvar)
	for j1 := 0; j1 < nvar; j1++ {
		for j2 := 0; j2 < nvar; j2++ {
			vcov[j1*nvar+j2] = scale * inv.At(j1, j2)
		}
	}
	return vcov, nil
}

// Model returns the model that was fit.
func (rslt *Results) Model() *GLM {
	return rslt.model
}

// Params returns the estimated coefficients in covariate order.
func (rslt *Results) Params() []float64 {
	p := make([]float64, len(rslt.params))
	copy(p, rslt.params)
	return p
}

// Names returns the covariate names aligned with Params.
func (rslt *Results) Names() []string {
	na := make([]string, len(rslt.xnames))
	copy(na, rslt.xnames)
	return na
}

// LogLike returns the log-likelihood at the fitted coefficients.
func (rslt *Results) LogLike() float64 {
	return rslt.loglike
}

// Deviance returns the model deviance at the fitted coefficients.
func (rslt *Results) Deviance() float64 {
	return rslt.deviance
}

// Scale returns the estimated scale parameter.
func (rslt *Results) Scale() float64 {
	return rslt.scale
}

// FittedValues returns the fitted mean response for the training data.
func (rslt *Results) FittedValues() []float64 {
	f := make([]float64, len(rslt.fitted))
	copy(f, rslt.fitted)
	return f
}

// LinearPredictor returns the full linear predictor for the training data,
// including any offset.
func (rslt *Results) LinearPredictor() []float64 {
	lp := make([]float64, len(rslt.linear))
	copy(lp, rslt.linear)
	return lp
}

// Residuals returns the response-scale residuals for the training data.
func (rslt *Results) Residuals() []float64 {
	y := rslt.model.response()
	res := make([]float64, len(y))
	for i := range y {
		res[i] = y[i] - rslt.fitted[i]
	}
	return res
}

// StdErr returns the standard errors of the coefficient estimates.
func (rslt *Results) StdErr() []float64 {
	nvar := len(rslt.params)
	se := make([]float64, nvar)
	for j := 0; j < nvar; j++ {
		se[j] = math.Sqrt(rslt.vcov[j*nvar+j])
	}
	return se
}

// ZScores returns the Z-scores of the coefficient estimates.
func (rslt *Results) ZScores() []float64 {
	se := rslt.StdErr()
	z := make([]float64, len(rslt.params))
	for j := range z {
		if se[j] > 0 {
			z[j] = rslt.params[j] / se[j]
		}
	}
	return z
}

// PValues returns two-sided p-values for the coefficient estimates based on
// a normal reference distribution.
func (rslt *Results) PValues() []float64 {
	z := rslt.ZScores()
	p := make([]float64, len(z))
	for j := range z {
		p[j] = 2 * distuv.UnitNormal.CDF(-math.Abs(z[j]))
	}
	return p
}

// Summary returns a text table summarizing the fit.
func (rslt *Results) Summary() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Generalized linear model analysis\n")
	fmt.Fprintf(&sb, "Family:   %s\n", rslt.model.fam.Name)
	fmt.Fprintf(&sb, "Link:     %s\n", rslt.model.link.Name)
	fmt.Fprintf(&sb, "Num obs:  %d\n", rslt.model.NumObs())
	fmt.Fprintf(&sb, "Scale:    %f\n", rslt.scale)
	if rslt.model.fam.TypeCode == NegBinomFamily {
		fmt.Fprintf(&sb, "Dispersion: %f\n", rslt.model.fam.alpha)
	}
	fmt.Fprintf(&sb, "Log-likelihood: %f\n", rslt.loglike)
	fmt.Fprintf(&sb, "Deviance: %f\n\n", rslt.deviance)

	nameWidth := len("Variable")
	for _, na := range rslt.xnames {
		if len(na) > nameWidth {
			nameWidth = len(na)
		}
	}

	fmt.Fprintf(&sb, "%-*s %12s %12s %12s %12s\n", nameWidth, "Variable", "Estimate", "SE", "Z-score", "P-value")
	se := rslt.StdErr()
	z := rslt.ZScores()
	p := rslt.PValues()
	for j, na := range rslt.xnames {
		fmt.Fprintf(&sb, "%-*s %12.4f %12.4f %12.4f %12.4f\n", nameWidth, na, rslt.params[j], se[j], z[j], p[j])
	}

	return sb.String()
}
