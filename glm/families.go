package glm

import (
	"math"

	"github.com/cockroachdb/errors"
)

var ErrUnknownFamily = errors.New("unknown family")

// FamilyType identifies a GLM family.
type FamilyType uint8

const (
	GaussianFamily FamilyType = iota
	PoissonFamily
	QuasiPoissonFamily
	NegBinomFamily
)

// LogLikeFunc evaluates the log-likelihood for a GLM. The arguments are the
// observed responses, the mean values, the observation weights (nil for unit
// weights), and the scale parameter.
type LogLikeFunc func(y, mn, wt []float64, scale float64) float64

// DevianceFunc evaluates the deviance for a GLM with the same argument
// conventions as LogLikeFunc.
type DevianceFunc func(y, mn, wt []float64, scale float64) float64

// Family represents a generalized linear model family.
type Family struct {
	Name     string
	TypeCode FamilyType

	LogLike  LogLikeFunc
	Deviance DevianceFunc

	// The valid links for the family, canonical link first.
	validLinks []LinkType

	// fixedScale is true when the scale parameter is identically 1
	// rather than estimated.
	fixedScale bool

	// Negative binomial dispersion parameter. Zero for other families.
	alpha float64
}

// NewFamily returns the family object for the given type. Negative binomial
// families carry a dispersion parameter and are created with
// NewNegBinomFamily.
func NewFamily(fam FamilyType) (*Family, error) {
	switch fam {
	case GaussianFamily:
		return &gaussian, nil
	case PoissonFamily:
		return &poisson, nil
	case QuasiPoissonFamily:
		return &quasiPoisson, nil
	default:
		return nil, errors.Wrapf(ErrUnknownFamily, "%d", fam)
	}
}

var gaussian = Family{
	Name:       "Gaussian",
	TypeCode:   GaussianFamily,
	LogLike:    gaussianLogLike,
	Deviance:   gaussianDeviance,
	validLinks: []LinkType{IdentityLink, LogLink},
}

var poisson = Family{
	Name:       "Poisson",
	TypeCode:   PoissonFamily,
	LogLike:    poissonLogLike,
	Deviance:   poissonDeviance,
	validLinks: []LinkType{LogLink, IdentityLink},
	fixedScale: true,
}

// QuasiPoisson matches Poisson except that the scale parameter is estimated.
var quasiPoisson = Family{
	Name:       "QuasiPoisson",
	TypeCode:   QuasiPoissonFamily,
	LogLike:    poissonLogLike,
	Deviance:   poissonDeviance,
	validLinks: []LinkType{LogLink, IdentityLink},
}

// Alpha returns the negative binomial dispersion parameter, zero for all
// other families.
func (fam *Family) Alpha() float64 {
	return fam.alpha
}

// IsValidLink reports whether the link may be used with the family.
func (fam *Family) IsValidLink(link *Link) bool {
	for _, q := range fam.validLinks {
		if link.TypeCode == q {
			return true
		}
	}
	return false
}

func (fam *Family) canonicalLink() LinkType {
	return fam.validLinks[0]
}

func gaussianLogLike(y, mn, wt []float64, scale float64) float64 {
	var ll, ws float64
	var w float64 = 1
	for i := range y {
		if wt != nil {
			w = wt[i]
		}
		r := y[i] - mn[i]
		ll -= w * r * r / (2 * scale)
		ws += w
	}
	ll -= ws * math.Log(2*math.Pi*scale) / 2
	return ll
}

func gaussianDeviance(y, mn, wt []float64, scale float64) float64 {
	var dev float64
	var w float64 = 1
	for i := range y {
		if wt != nil {
			w = wt[i]
		}
		r := y[i] - mn[i]
		dev += w * r * r
	}
	return dev / scale
}

func poissonLogLike(y, mn, wt []float64, scale float64) float64 {
	var ll float64
	var w float64 = 1
	for i := range y {
		if wt != nil {
			w = wt[i]
		}
		ll += w * (y[i]*math.Log(mn[i]) - mn[i])
		g, _ := math.Lgamma(y[i] + 1)
		ll -= w * g
	}
	return ll
}

func poissonDeviance(y, mn, wt []float64, scale float64) float64 {
	var dev float64
	var w float64 = 1
	for i := range y {
		if wt != nil {
			w = wt[i]
		}
		if y[i] > 0 {
			dev += 2 * w * (y[i]*math.Log(y[i]/mn[i]) - (y[i] - mn[i]))
		} else {
			dev += 2 * w * mn[i]
		}
	}
	return dev / scale
}

// NewNegBinomFamily returns a family object for the negative binomial
// family with dispersion parameter alpha, using the given link function.
func NewNegBinomFamily(alpha float64, link *Link) (*Family, error) {
	if alpha <= 0 {
		return nil, errors.Wrapf(ErrUnknownFamily, "negative binomial dispersion must be positive, got %g", alpha)
	}

	loglike := func(y, mn, wt []float64, scale float64) float64 {
		var ll float64
		var w float64 = 1
		c3, _ := math.Lgamma(1 / alpha)

		lp := make([]float64, len(y))
		link.Link(mn, lp)

		for i := range y {
			if wt != nil {
				w = wt[i]
			}

			elp := math.Exp(lp[i])

			c1, _ := math.Lgamma(y[i] + 1/alpha)
			c2, _ := math.Lgamma(y[i] + 1)
			c := c1 - c2 - c3

			v := y[i] * math.Log(alpha*elp/(1+alpha*elp))
			v -= math.Log(1+alpha*elp) / alpha

			ll += w * (v + c)
		}
		return ll
	}

	deviance := func(y, mn, wt []float64, scale float64) float64 {
		var dev float64
		var w float64 = 1
		for i := range y {
			if wt != nil {
				w = wt[i]
			}
			if y[i] > 0 {
				z1 := y[i] * math.Log(y[i]/mn[i])
				z2 := (1 + alpha*y[i]) / alpha
				z2 *= math.Log((1 + alpha*y[i]) / (1 + alpha*mn[i]))
				dev += 2 * w * (z1 - z2)
			} else {
				dev += 2 * w * math.Log(1+alpha*mn[i]) / alpha
			}
		}
		return dev / scale
	}

	return &Family{
		Name:       "NegBinom",
		TypeCode:   NegBinomFamily,
		LogLike:    loglike,
		Deviance:   deviance,
		validLinks: []LinkType{LogLink, IdentityLink},
		fixedScale: true,
		alpha:      alpha,
	}, nil
}
