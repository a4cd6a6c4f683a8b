package glm

import (
	"math"

	"github.com/cockroachdb/errors"
)

var ErrDispersionSearch = errors.New("negative binomial dispersion search failed")

const (
	minDispersion      = 1e-8
	dispersionTol      = 1e-5
	maxDispersionIters = 100
)

// MomentDispersion returns a method-of-moments estimate of the negative
// binomial dispersion parameter from a fitted Poisson model, solving
// var = mean + alpha*mean^2 in aggregate. The estimate is clamped to be
// positive so it can seed a profile likelihood search.
func MomentDispersion(poisson *Results) float64 {
	y := poisson.model.response()
	mn := poisson.fitted

	var num, den float64
	for i := range y {
		r := y[i] - mn[i]
		num += r*r - mn[i]
		den += mn[i] * mn[i]
	}

	alpha := num / den
	if alpha < dispersionTol {
		alpha = dispersionTol
	}
	return alpha
}

// ProfileNegBinom estimates the negative binomial dispersion parameter by
// profile likelihood. fitAt must fit the model with the dispersion held
// fixed at the given value; alpha0 seeds the search. The returned results
// are from the fit at the maximizing dispersion, which is available from
// the family of the fitted model.
func ProfileNegBinom(fitAt func(alpha float64) (*Results, error), alpha0 float64) (*Results, error) {
	if alpha0 < minDispersion {
		alpha0 = minDispersion
	}

	ll := func(alpha float64) (float64, error) {
		r, err := fitAt(alpha)
		if err != nil {
			return math.Inf(-1), err
		}
		return r.LogLike(), nil
	}

	l1, err := ll(alpha0)
	if err != nil {
		return nil, errors.Wrapf(ErrDispersionSearch, "at %g: %v", alpha0, err)
	}

	// Expand the bracket upward until the likelihood declines.
	hi := 2 * alpha0
	lhi, err := ll(hi)
	if err != nil {
		return nil, errors.Wrapf(ErrDispersionSearch, "at %g: %v", hi, err)
	}
	for i := 0; lhi >= l1 && i < maxDispersionIters; i++ {
		alpha0, l1 = hi, lhi
		hi *= 2
		if lhi, err = ll(hi); err != nil {
			return nil, errors.Wrapf(ErrDispersionSearch, "at %g: %v", hi, err)
		}
	}

	// Expand downward likewise, stopping at the lower dispersion floor.
	lo := alpha0 / 2
	llo, err := ll(lo)
	if err != nil {
		return nil, errors.Wrapf(ErrDispersionSearch, "at %g: %v", lo, err)
	}
	for i := 0; llo >= l1 && lo > minDispersion && i < maxDispersionIters; i++ {
		alpha0, l1 = lo, llo
		lo /= 2
		if llo, err = ll(lo); err != nil {
			return nil, errors.Wrapf(ErrDispersionSearch, "at %g: %v", lo, err)
		}
	}
	if lo < minDispersion {
		lo = minDispersion
	}

	// Golden-section maximization on the bracket.
	const gr = 0.6180339887498949

	a, b := lo, hi
	c := b - gr*(b-a)
	d := a + gr*(b-a)
	lc, err := ll(c)
	if err != nil {
		return nil, errors.Wrapf(ErrDispersionSearch, "at %g: %v", c, err)
	}
	ld, err := ll(d)
	if err != nil {
		return nil, errors.Wrapf(ErrDispersionSearch, "at %g: %v", d, err)
	}

	for i := 0; i < maxDispersionIters && (b-a) > dispersionTol*(1+a); i++ {
		if lc >= ld {
			b, d, ld = d, c, lc
			c = b - gr*(b-a)
			if lc, err = ll(c); err != nil {
				return nil, errors.Wrapf(ErrDispersionSearch, "at %g: %v", c, err)
			}
		} else {
			a, c, lc = c, d, ld
			d = a + gr*(b-a)
			if ld, err = ll(d); err != nil {
				return nil, errors.Wrapf(ErrDispersionSearch, "at %g: %v", d, err)
			}
		}
	}

	alpha := (a + b) / 2
	result, err := fitAt(alpha)
	if err != nil {
		return nil, errors.Wrapf(ErrDispersionSearch, "final fit at %g: %v", alpha, err)
	}
	return result, nil
}
