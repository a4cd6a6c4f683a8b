package regression

import "github.com/rs/zerolog"

// Fit method names accepted by FitOptions.FitMethod.
const (
	FitMethodIRLS     = "irls"
	FitMethodGradient = "gradient"
)

// FitOptions controls optional behaviour of Fit. A nil options value
// is replaced with NewDefaultFitOptions.
type FitOptions struct {
	// Offset names a column whose values are added to the linear
	// predictor with a fixed coefficient of 1.0. It never appears in
	// the fitted coefficient vector. Typically log exposure for count
	// models.
	Offset string

	// FitMethod selects the solver for count families, "irls" or
	// "gradient". Ignored for the gaussian family, which is solved by
	// least squares directly.
	FitMethod string

	// Dispersion fixes the negative binomial dispersion parameter when
	// positive. When zero the dispersion is estimated by profile
	// likelihood. Ignored for other families.
	Dispersion float64

	// Logger receives per-iteration solver diagnostics. Defaults to a
	// no-op logger.
	Logger *zerolog.Logger
}

// NewDefaultFitOptions generates a default set of fit options.
func NewDefaultFitOptions() *FitOptions {
	nop := zerolog.Nop()
	return &FitOptions{
		FitMethod: FitMethodIRLS,
		Logger:    &nop,
	}
}

func (o *FitOptions) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

func (o *FitOptions) fitMethod() string {
	if o.FitMethod == "" {
		return FitMethodIRLS
	}
	return o.FitMethod
}
