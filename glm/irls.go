package glm

import (
	"math"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	defaultIRLSMaxIter = 50
	irlsDevianceTol    = 1e-10
)

// fitIRLS fits the model by iteratively reweighted least squares. Each
// iteration solves a weighted least squares problem on an adjusted response,
// with convergence assessed on the change in deviance.
func (glm *GLM) fitIRLS(start []float64, maxiter int) ([]float64, error) {
	n := glm.NumObs()
	nvar := glm.NumParams()

	lp := make([]float64, n)
	mn := make([]float64, n)
	va := make([]float64, n)
	lderiv := make([]float64, n)
	irlsw := make([]float64, n)
	adjy := make([]float64, n)

	xty := make([]float64, nvar)
	xtx := make([]float64, nvar*nvar)

	params := make([]float64, nvar)
	copy(params, start)

	yda := glm.response()
	wgt := glm.weights()
	off := glm.offset()

	var nparam mat.VecDense
	var dev []float64

	for iter := 0; iter < maxiter; iter++ {
		zero(xtx)
		zero(xty)

		glm.linpred(params, lp)

		if iter == 0 {
			glm.startingMu(yda, mn)
		} else {
			glm.link.InvLink(lp, mn)
		}

		glm.link.Deriv(mn, lderiv)
		glm.vari.Var(mn, va)

		devi := glm.fam.Deviance(yda, mn, wgt, 1)

		// Weights for the WLS step
		for i := range yda {
			irlsw[i] = 1 / (lderiv[i] * lderiv[i] * va[i])
			if wgt != nil {
				irlsw[i] *= wgt[i]
			}
		}

		// Adjusted response for the WLS step; the offset is excluded
		// here since it carries a fixed coefficient of one.
		for i := range yda {
			adjy[i] = lp[i] + lderiv[i]*(yda[i]-mn[i])
			if off != nil {
				adjy[i] -= off[i]
			}
		}

		glm.irlsXprod(adjy, irlsw, xty, xtx)

		xtxm := mat.NewDense(nvar, nvar, xtx)
		xtyv := mat.NewVecDense(nvar, xty)
		if err := nparam.SolveVec(xtxm, xtyv); err != nil {
			return nil, errors.Wrapf(ErrSingular, "IRLS iteration %d: %v", iter+1, err)
		}
		copy(params, nparam.RawVector().Data)

		glm.log.Debug().Int("iteration", iter+1).Float64("deviance", devi).Msg("irls step")

		dev = append(dev, devi)
		if len(dev) > 3 && math.Abs(dev[len(dev)-1]-dev[len(dev)-2]) < irlsDevianceTol {
			break
		}
	}

	glm.log.Debug().Msg("irls converged")

	return params, nil
}

// irlsXprod accumulates the weighted moment matrices x'wx and x'w*adjy.
func (glm *GLM) irlsXprod(adjy, irlsw, xty, xtx []float64) {
	nvar := len(glm.xpos)

	for j1, k1 := range glm.xpos {
		xda := glm.data[k1]

		var u float64
		for i := range adjy {
			u += adjy[i] * xda[i] * irlsw[i]
		}
		xty[j1] += u

		for j2 := 0; j2 <= j1; j2++ {
			xdb := glm.data[glm.xpos[j2]]
			var v float64
			for i := range xda {
				v += xda[i] * xdb[i] * irlsw[i]
			}
			xtx[j1*nvar+j2] += v
		}
	}

	// Fill in the unfilled triangle
	for j1 := 0; j1 < nvar; j1++ {
		for j2 := j1 + 1; j2 < nvar; j2++ {
			xtx[j1*nvar+j2] = xtx[j2*nvar+j1]
		}
	}
}

// startingMu produces initial mean values bounded away from zero so the
// first weight and link evaluations are defined.
func (glm *GLM) startingMu(y []float64, mn []float64) {
	var q float64
	for i := range y {
		q += y[i]
	}
	q /= float64(len(y))

	for i := range mn {
		mn[i] = (y[i] + q) / 2
		if mn[i] < 0.1 {
			mn[i] = 0.1
		}
	}
}
