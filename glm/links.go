package glm

import (
	"math"

	"github.com/cockroachdb/errors"
)

var ErrUnknownLink = errors.New("unknown link function")

// VecFunc applies a transform elementwise, reading from x and writing to y.
// x and y must have the same length and may alias.
type VecFunc func(x, y []float64)

// LinkType identifies a GLM link function.
type LinkType uint8

const (
	IdentityLink LinkType = iota
	LogLink
)

func (lt LinkType) String() string {
	switch lt {
	case IdentityLink:
		return "identity"
	case LogLink:
		return "log"
	default:
		return "unknown"
	}
}

// Link specifies a GLM link function relating the mean response to the
// linear predictor.
type Link struct {
	Name     string
	TypeCode LinkType

	// Link maps mean values to the linear predictor scale.
	Link VecFunc

	// InvLink maps the linear predictor to the mean value scale.
	InvLink VecFunc

	// Deriv is the derivative of the link function.
	Deriv VecFunc

	// Deriv2 is the second derivative of the link function.
	Deriv2 VecFunc
}

// NewLink returns the link function object for the given link type.
func NewLink(link LinkType) (*Link, error) {
	switch link {
	case IdentityLink:
		return &idLink, nil
	case LogLink:
		return &logLink, nil
	default:
		return nil, errors.Wrapf(ErrUnknownLink, "%d", link)
	}
}

var idLink = Link{
	Name:     "Identity",
	TypeCode: IdentityLink,
	Link:     idFunc,
	InvLink:  idFunc,
	Deriv:    idDerivFunc,
	Deriv2:   idDeriv2Func,
}

var logLink = Link{
	Name:     "Log",
	TypeCode: LogLink,
	Link:     logFunc,
	InvLink:  expFunc,
	Deriv:    logDerivFunc,
	Deriv2:   logDeriv2Func,
}

func idFunc(x, y []float64) {
	copy(y, x)
}

func idDerivFunc(x, y []float64) {
	one(y)
}

func idDeriv2Func(x, y []float64) {
	zero(y)
}

func logFunc(x, y []float64) {
	for i := range x {
		y[i] = math.Log(x[i])
	}
}

func expFunc(x, y []float64) {
	for i := range x {
		y[i] = math.Exp(x[i])
	}
}

func logDerivFunc(x, y []float64) {
	for i := range x {
		y[i] = 1 / x[i]
	}
}

func logDeriv2Func(x, y []float64) {
	for i := range x {
		y[i] = -1 / (x[i] * x[i])
	}
}
