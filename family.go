package regression

// FamilySpec selects the distributional family of a fit. The link is
// implied by the family: Gaussian pairs with the identity link and the
// two count families pair with the log link.
type FamilySpec uint8

const (
	// Gaussian fits an ordinary least squares model on the identity
	// link. Predictions on the linear and response scales coincide.
	Gaussian FamilySpec = iota

	// Poisson fits a log-linear count model with variance equal to the
	// mean.
	Poisson

	// NegBinomial fits a log-linear count model with an extra
	// dispersion parameter, variance m + alpha*m^2. The dispersion is
	// estimated by profile likelihood unless fixed in FitOptions.
	NegBinomial
)

func (f FamilySpec) String() string {
	switch f {
	case Gaussian:
		return "gaussian"
	case Poisson:
		return "poisson"
	case NegBinomial:
		return "negative binomial"
	}
	return "unknown"
}

// LinkName reports the link function implied by the family.
func (f FamilySpec) LinkName() string {
	if f == Gaussian {
		return "identity"
	}
	return "log"
}

// isCount reports whether the family requires a non-negative integer
// response.
func (f FamilySpec) isCount() bool {
	return f == Poisson || f == NegBinomial
}

func (f FamilySpec) valid() bool {
	return f <= NegBinomial
}
