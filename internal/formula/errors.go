package formula

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is wrapped by every *SyntaxError.
	ErrSyntax = errors.New("syntax error")
	// ErrUnknownIdentifier is reported when a formula references a name that is not bound.
	ErrUnknownIdentifier = errors.New("unknown identifier")
	// ErrTypeMismatch is reported when an operator receives operands of the wrong type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrDivisionByZero is reported at evaluation time.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrNumberOutOfRange is reported for a literal too large to represent.
	ErrNumberOutOfRange = errors.New("number out of range")
	// ErrUnboundVariable is reported when a compiled variable is missing from the bindings.
	ErrUnboundVariable = errors.New("unbound variable")
)

// SyntaxError describes a formula that could not be tokenized or parsed.
type SyntaxError struct {
	Formula string
	// Pos is the byte offset of the offending token.
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d in %q: %s", e.Pos, e.Formula, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// SemanticError describes a well-formed formula that cannot be evaluated:
// unknown identifiers, type mismatches, division by zero.
type SemanticError struct {
	Formula string
	Pos     int
	// Kind is one of the package sentinel errors.
	Kind error
	// Name is the offending identifier, if any.
	Name string
	Msg  string
}

func (e *SemanticError) Error() string {
	switch {
	case e.Name != "":
		return fmt.Sprintf("%v: %s (position %d)", e.Kind, e.Name, e.Pos)
	case e.Msg != "":
		return fmt.Sprintf("%v: %s (position %d)", e.Kind, e.Msg, e.Pos)
	default:
		return fmt.Sprintf("%v (position %d)", e.Kind, e.Pos)
	}
}

func (e *SemanticError) Unwrap() error { return e.Kind }

func syntaxErr(src string, pos int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Formula: src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
