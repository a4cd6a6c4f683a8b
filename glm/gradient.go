package glm

import (
	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// Score writes the score vector (gradient of the log-likelihood) at the
// given coefficients into score.
func (glm *GLM) Score(params []float64, score []float64) {
	n := glm.NumObs()

	lp := make([]float64, n)
	mn := make([]float64, n)
	deriv := make([]float64, n)
	va := make([]float64, n)
	fac := make([]float64, n)

	glm.linpred(params, lp)
	glm.link.InvLink(lp, mn)
	glm.link.Deriv(mn, deriv)
	glm.vari.Var(mn, va)

	yda := glm.response()
	wgt := glm.weights()

	for i, y := range yda {
		fac[i] = (y - mn[i]) / (deriv[i] * va[i])
		if wgt != nil {
			fac[i] *= wgt[i]
		}
	}

	zero(score)
	for j, k := range glm.xpos {
		score[j] = floats.Dot(fac, glm.data[k])
	}
}

// fitGradient fits the model by BFGS maximization of the log-likelihood.
func (glm *GLM) fitGradient(start []float64) ([]float64, error) {
	p := optimize.Problem{
		Func: func(x []float64) float64 {
			return -glm.LogLike(x, 1)
		},
		Grad: func(grad, x []float64) {
			glm.Score(x, grad)
			floats.Scale(-1, grad)
		},
	}

	settings := &optimize.Settings{
		GradientThreshold: 1e-6,
	}

	result, err := optimize.Minimize(p, start, settings, &optimize.BFGS{})
	if err != nil {
		return nil, errors.Wrap(err, "gradient optimization failed")
	}
	if err := result.Status.Err(); err != nil {
		return nil, errors.Wrap(err, "gradient optimization did not converge")
	}

	params := make([]float64, len(result.X))
	copy(params, result.X)
	return params, nil
}
