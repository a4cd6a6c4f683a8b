package glm

import (
	"github.com/cockroachdb/errors"
)

var ErrUnknownVariance = errors.New("unknown variance function")

// VarianceType identifies a GLM variance function.
type VarianceType uint8

const (
	ConstantVar VarianceType = iota
	IdentityVar
)

// Variance represents a GLM variance function mapping mean values to the
// response variance up to the scale parameter.
type Variance struct {
	Name  string
	Var   VecFunc
	Deriv VecFunc
}

// NewVariance returns the variance function object for the given type.
// Negative binomial variances depend on the dispersion parameter and are
// created with NewNegBinomVariance.
func NewVariance(vartype VarianceType) (*Variance, error) {
	switch vartype {
	case ConstantVar:
		return &constVariance, nil
	case IdentityVar:
		return &identVariance, nil
	default:
		return nil, errors.Wrapf(ErrUnknownVariance, "%d", vartype)
	}
}

var constVariance = Variance{
	Name:  "Constant",
	Var:   constVar,
	Deriv: constVarDeriv,
}

var identVariance = Variance{
	Name:  "Identity",
	Var:   identVar,
	Deriv: identVarDeriv,
}

func constVar(mn, v []float64) {
	one(v)
}

func constVarDeriv(mn, v []float64) {
	zero(v)
}

func identVar(mn, v []float64) {
	copy(v, mn)
}

func identVarDeriv(mn, v []float64) {
	one(v)
}

// NewNegBinomVariance returns the negative binomial variance function,
// var = mean + alpha*mean^2, for the given dispersion parameter.
func NewNegBinomVariance(alpha float64) *Variance {
	return &Variance{
		Name: "NegBinom",
		Var: func(mn, v []float64) {
			for i, m := range mn {
				v[i] = m + alpha*m*m
			}
		},
		Deriv: func(mn, v []float64) {
			for i, m := range mn {
				v[i] = 1 + 2*alpha*m
			}
		},
	}
}
