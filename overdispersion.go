package regression

import (
	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

var ErrMismatchedFits = errors.New("overdispersion test requires a poisson and a negative binomial fit of the same model")

// OverdispersionTest reports a likelihood ratio comparison of a poisson
// fit against a negative binomial fit of the same design.
type OverdispersionTest struct {
	// Statistic is twice the log-likelihood gain of the negative
	// binomial fit, floored at zero.
	Statistic float64

	// PValue is the boundary-corrected tail probability. The dispersion
	// parameter sits on the edge of its space under the null, so the
	// reference distribution is an equal mixture of a point mass at
	// zero and chi-squared with one degree of freedom.
	PValue float64

	// Dispersion is the estimated negative binomial dispersion.
	Dispersion float64

	// Overdispersed is true when PValue falls below 0.05.
	Overdispersed bool
}

// TestOverdispersion compares a poisson fit with a negative binomial
// fit of the same response and predictors. A small p-value is evidence
// that the poisson variance assumption is too tight for the data.
func TestOverdispersion(poisson, negbin *FittedModel) (*OverdispersionTest, error) {
	if poisson == nil || !poisson.trained || negbin == nil || !negbin.trained {
		return nil, ErrUnfitModel
	}
	if poisson.family != Poisson || negbin.family != NegBinomial {
		return nil, errors.Wrapf(ErrMismatchedFits, "got %s and %s", poisson.family, negbin.family)
	}
	if poisson.response != negbin.response || !sameFields(poisson.predictors, negbin.predictors) || poisson.offset != negbin.offset {
		return nil, errors.Wrap(ErrMismatchedFits, "fits use different columns")
	}

	stat := 2 * (negbin.loglike - poisson.loglike)
	if stat < 0 {
		// The poisson model is nested in the negative binomial at
		// dispersion zero, so a negative statistic is numerical noise.
		stat = 0
	}
	chi2 := distuv.ChiSquared{K: 1}
	pval := 0.5 * chi2.Survival(stat)
	if stat == 0 {
		pval = 1
	}

	return &OverdispersionTest{
		Statistic:     stat,
		PValue:        pval,
		Dispersion:    negbin.dispersion,
		Overdispersed: pval < 0.05,
	}, nil
}

func sameFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
