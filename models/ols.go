package models

import (
	"math"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

type OLSOptions struct {
	FitIntercept bool
}

func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept: true,
	}
}

// OLSRegression computes ordinary least squares using QR factorization.
type OLSRegression struct {
	opt       *OLSOptions
	coef      []float64
	intercept float64

	// Standard errors aligned with the estimates, intercept first when an
	// intercept is fit.
	stderr []float64

	// Residual variance, RSS/(m-n).
	sigma2 float64

	fitted bool
}

func NewOLSRegression(opt *OLSOptions) (*OLSRegression, error) {
	if opt == nil {
		opt = NewDefaultOLSOptions()
	}
	return &OLSRegression{
		opt: opt,
	}, nil
}

// Fit estimates the regression coefficients by QR factorization of the
// design matrix, prepending an intercept column when configured.
func (o *OLSRegression) Fit(x, y mat.Matrix) error {
	if o.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	m, n := x.Dims()

	ym, yn := y.Dims()
	if ym != m {
		return errors.Wrapf(ErrTargetLenMismatch, "training data has %d rows and target has %d rows", m, ym)
	}
	if yn != 1 {
		return errors.Wrapf(ErrTargetShape, "target has %d columns", yn)
	}

	if o.opt.FitIntercept {
		ones := make([]float64, m)
		floats.AddConst(1.0, ones)
		onesMx := mat.NewDense(1, m, ones)
		xT := x.T()

		var xWithOnes mat.Dense
		xWithOnes.Stack(onesMx, xT)
		x = xWithOnes.T()
		_, n = x.Dims()
	}

	if m < n {
		return errors.Wrapf(ErrInsufficientRows, "%d rows for %d coefficients", m, n)
	}

	yT := y.T()

	qr := new(mat.QR)
	qr.Factorize(x)

	q := new(mat.Dense)
	r := new(mat.Dense)

	qr.QTo(q)
	qr.RTo(r)
	yq := new(mat.Dense)
	yq.Mul(yT, q)

	c := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		c[i] = yq.At(0, i)
		for j := i + 1; j < n; j++ {
			c[i] -= c[j] * r.At(i, j)
		}
		c[i] /= r.At(i, i)
	}

	if o.opt.FitIntercept {
		o.intercept = c[0]
		o.coef = c[1:]
	} else {
		o.coef = c
	}
	o.fitted = true

	o.inference(x, y, c, r, m, n)

	return nil
}

// inference computes the residual variance and coefficient standard errors
// from the upper triangular QR factor: (X'X)^-1 = R^-1 R^-T.
func (o *OLSRegression) inference(x mat.Matrix, y mat.Matrix, c []float64, r *mat.Dense, m, n int) {
	var rss float64
	for i := 0; i < m; i++ {
		pred := 0.0
		for j := 0; j < n; j++ {
			pred += x.At(i, j) * c[j]
		}
		resid := y.At(i, 0) - pred
		rss += resid * resid
	}

	if m == n {
		o.sigma2 = 0
		o.stderr = make([]float64, n)
		return
	}
	o.sigma2 = rss / float64(m-n)

	// Invert R by back substitution, one unit vector at a time.
	rinv := mat.NewDense(n, n, nil)
	for k := 0; k < n; k++ {
		for i := n - 1; i >= 0; i-- {
			v := 0.0
			if i == k {
				v = 1.0
			}
			for j := i + 1; j < n; j++ {
				v -= r.At(i, j) * rinv.At(j, k)
			}
			rinv.Set(i, k, v/r.At(i, i))
		}
	}

	o.stderr = make([]float64, n)
	for i := 0; i < n; i++ {
		var s float64
		for j := 0; j < n; j++ {
			v := rinv.At(i, j)
			s += v * v
		}
		o.stderr[i] = math.Sqrt(o.sigma2 * s)
	}
}

// Predict computes fitted values for the design matrix using the estimated
// coefficients.
func (o *OLSRegression) Predict(x mat.Matrix) ([]float64, error) {
	if o.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	if !o.fitted {
		return nil, ErrNotFitted
	}

	coef := o.coef
	if o.opt.FitIntercept {
		coef = append([]float64{o.intercept}, o.coef...)

		m, _ := x.Dims()
		ones := make([]float64, m)
		floats.AddConst(1.0, ones)
		onesMx := mat.NewDense(1, m, ones)
		xT := x.T()

		var xWithOnes mat.Dense
		xWithOnes.Stack(onesMx, xT)
		x = xWithOnes.T()
	}
	n := len(coef)

	xT := x.T()
	xn, _ := xT.Dims()
	if xn != n {
		return nil, errors.Wrapf(ErrFeatureLenMismatch, "got %d features in design matrix, but expected %d", xn, n)
	}
	coefMx := mat.NewDense(1, n, coef)

	var res mat.Dense
	res.Mul(coefMx, xT)
	out := make([]float64, res.RawMatrix().Cols)
	copy(out, res.RawRowView(0))
	return out, nil
}

// Score computes the coefficient of determination R^2 against the target.
func (o *OLSRegression) Score(x, y mat.Matrix) (float64, error) {
	if o.opt == nil {
		return 0.0, ErrNoOptions
	}
	if x == nil {
		return 0.0, ErrNoDesignMatrix
	}
	if y == nil {
		return 0.0, ErrNoTargetMatrix
	}

	m, _ := x.Dims()

	ym, _ := y.Dims()
	if m != ym {
		return 0.0, errors.Wrapf(ErrTargetLenMismatch, "design matrix has %d rows and target has %d rows", m, ym)
	}

	res, err := o.Predict(x)
	if err != nil {
		return 0.0, err
	}

	ySlice := mat.Col(nil, 0, y)

	return stat.RSquaredFrom(res, ySlice, nil), nil
}

func (o *OLSRegression) Intercept() float64 {
	return o.intercept
}

func (o *OLSRegression) Coef() []float64 {
	c := make([]float64, len(o.coef))
	copy(c, o.coef)
	return c
}

// StdErr returns the coefficient standard errors, intercept first when an
// intercept was fit.
func (o *OLSRegression) StdErr() []float64 {
	se := make([]float64, len(o.stderr))
	copy(se, o.stderr)
	return se
}

// ResidualVariance returns the estimated residual variance RSS/(m-n).
func (o *OLSRegression) ResidualVariance() float64 {
	return o.sigma2
}
