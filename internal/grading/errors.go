package grading

import (
	"errors"
	"fmt"
)

var (
	// ErrNonFinite is reported when a numeric formula yields NaN or an infinity.
	ErrNonFinite = errors.New("non-finite result")
	// ErrNotBoolean is reported when the pass condition does not yield a boolean.
	ErrNotBoolean = errors.New("condition formula must yield boolean")
	// ErrNotNumeric is reported when a grade formula yields a boolean.
	ErrNotNumeric = errors.New("formula must yield a number")
	// ErrEmptyFormula is reported for blank formulas.
	ErrEmptyFormula = errors.New("formula is required")
	// ErrInvalidScore is reported for NaN or infinite raw scores.
	ErrInvalidScore = errors.New("raw score must be a finite number")
	// ErrOutOfRange is reported by Domain.Check.
	ErrOutOfRange = errors.New("raw score out of range")
)

// ValidationError reports input outside the evaluation domain.
type ValidationError struct {
	Field string
	Value any
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %v: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StageError names the evaluation stage a formula failed in.
type StageError struct {
	Stage   Stage
	Formula string
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s formula: %v", e.Stage.Label(), e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
