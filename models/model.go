// Package models holds the least-squares fitting implementation used by the
// regression workbench for Gaussian identity-link models.
package models

import (
	"gonum.org/v1/gonum/mat"
)

// Model is a linear regression fitter producing an intercept and ordered
// coefficient estimates.
type Model interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
	Score(x, y mat.Matrix) (float64, error)
	Intercept() float64
	Coef() []float64
}
