package prices

import (
	"errors"
	"strings"
)

var (
	// ErrTableUnavailable means the price table could not be acquired.
	// Retrying or supplying a file manually may help.
	ErrTableUnavailable = errors.New("price table unavailable")
	// ErrTableMalformed means a manually supplied file could not be parsed or
	// failed validation.
	ErrTableMalformed = errors.New("price table malformed")
)

// ValidationError lists the human-readable problems of a supplied table.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return ErrTableMalformed.Error() + ": " + strings.Join(e.Problems, " ")
}

func (e *ValidationError) Unwrap() error {
	return ErrTableMalformed
}
