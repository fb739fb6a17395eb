package model

import "github.com/pkg/errors"

var (
	// ErrMalformedProgram is wrapped by every construction error. A
	// malformed program is never analyzed.
	ErrMalformedProgram = errors.New("malformed program")

	// ErrNonTermination is returned by a fixpoint that exceeded its bound.
	// The lattices are finite, so this is always an engine defect.
	ErrNonTermination = errors.New("fixpoint did not converge")
)

func malformedf(format string, args ...any) error {
	return errors.Wrapf(ErrMalformedProgram, format, args...)
}
