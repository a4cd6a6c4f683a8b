package regression

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidData marks any rejection of the input table before a
	// solver runs. Missing columns, ragged inputs, and count responses
	// with negative or fractional values all carry this mark.
	ErrInvalidData = errors.New("invalid input data")

	// ErrUnfitModel is returned when coefficients or predictions are
	// requested from a model that has not completed a fit.
	ErrUnfitModel = errors.New("model has not been fit")

	ErrUnknownFamily = errors.New("unknown model family")
	ErrUnknownScale  = errors.New("unknown prediction scale")
	ErrNoPredictors  = errors.New("no predictor fields given")
)

// invalid wraps err with context and marks it as ErrInvalidData so
// callers can detect the whole class with errors.Is.
func invalid(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrInvalidData)
}
