package models

import (
	"github.com/cockroachdb/errors"
)

var (
	ErrNoOptions          = errors.New("no initialized model options")
	ErrNoTrainingMatrix   = errors.New("no training matrix")
	ErrNoTargetMatrix     = errors.New("no target matrix")
	ErrNoDesignMatrix     = errors.New("no design matrix for inference")
	ErrTargetLenMismatch  = errors.New("target length does not match training rows")
	ErrTargetShape        = errors.New("target must be a single column")
	ErrFeatureLenMismatch = errors.New("number of features does not match number of model coefficients")
	ErrInsufficientRows   = errors.New("fewer rows than coefficients to estimate")
	ErrNotFitted          = errors.New("model has not been fit")
)
