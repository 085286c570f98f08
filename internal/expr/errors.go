package expr

import (
	"errors"
	"fmt"
)

// ArityError reports an operation whose operand count does not match its
// operator's arity class.
type ArityError struct {
	Operator Operator
	Got      int
	Min, Max int
	Message  string // Set for errors other than a count mismatch
}

// Error implements the error interface.
func (e *ArityError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("operator %s: %s", e.Operator, e.Message)
	}
	if e.Max == Variadic {
		return fmt.Sprintf("operator %s takes at least %d operand(s), got %d", e.Operator, e.Min, e.Got)
	}
	if e.Min == e.Max {
		return fmt.Sprintf("operator %s takes %d operand(s), got %d", e.Operator, e.Min, e.Got)
	}
	return fmt.Sprintf("operator %s takes %d to %d operand(s), got %d", e.Operator, e.Min, e.Max, e.Got)
}

// IsArityError returns true if err is or wraps an ArityError.
func IsArityError(err error) bool {
	var ae *ArityError
	return errors.As(err, &ae)
}

// PathError reports path metadata that violates a path invariant.
type PathError struct {
	PathType PathType
	Message  string
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("invalid %s path: %s", e.PathType, e.Message)
}

// IsPathError returns true if err is or wraps a PathError.
func IsPathError(err error) bool {
	var pe *PathError
	return errors.As(err, &pe)
}

// InvalidArrayTypeError reports an array constructor whose element type
// cannot be derived from its array type, or values that do not fit it.
type InvalidArrayTypeError struct {
	Type    *Type // nil when no type was given
	Message string
}

// Error implements the error interface.
func (e *InvalidArrayTypeError) Error() string {
	if e.Type == nil {
		return "invalid array type: " + e.Message
	}
	return fmt.Sprintf("invalid array type %s: %s", e.Type.Name, e.Message)
}

// IsInvalidArrayType returns true if err is or wraps an InvalidArrayTypeError.
func IsInvalidArrayType(err error) bool {
	var ie *InvalidArrayTypeError
	return errors.As(err, &ie)
}
