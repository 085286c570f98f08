package dialect

import (
	"errors"
	"fmt"

	"github.com/roach88/exprql/internal/expr"
)

// UnsupportedOperatorError reports an operator with no template in a
// dialect or any of its bases. There is no identity fallback.
type UnsupportedOperatorError struct {
	Dialect  string
	Operator expr.Operator
}

// Error implements the error interface.
func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("dialect %s does not support operator %s", e.Dialect, e.Operator)
}

// IsUnsupportedOperator returns true if err is or wraps an
// UnsupportedOperatorError.
func IsUnsupportedOperator(err error) bool {
	var ue *UnsupportedOperatorError
	return errors.As(err, &ue)
}

// UnknownDialectError reports a lookup of an unregistered dialect.
type UnknownDialectError struct {
	Name  string
	Known []string
}

// Error implements the error interface.
func (e *UnknownDialectError) Error() string {
	return fmt.Sprintf("unknown dialect %q (known: %v)", e.Name, e.Known)
}

// IsUnknownDialect returns true if err is or wraps an UnknownDialectError.
func IsUnknownDialect(err error) bool {
	var ue *UnknownDialectError
	return errors.As(err, &ue)
}

// UnsupportedLiteralError reports a value that has no inline literal form.
type UnsupportedLiteralError struct {
	Dialect string
	Value   any
}

// Error implements the error interface.
func (e *UnsupportedLiteralError) Error() string {
	return fmt.Sprintf("dialect %s cannot render %T as a literal", e.Dialect, e.Value)
}

// IsUnsupportedLiteral returns true if err is or wraps an
// UnsupportedLiteralError.
func IsUnsupportedLiteral(err error) bool {
	var ue *UnsupportedLiteralError
	return errors.As(err, &ue)
}
