package template

import (
	"errors"
	"fmt"
)

// MalformedError reports a pattern that cannot be parsed, or a template
// that references arguments beyond the bound argument list.
type MalformedError struct {
	Pattern string // Source pattern
	Offset  int    // Byte offset of the offending brace (-1 when not positional)
	Message string // Human-readable description
}

// Error implements the error interface.
func (e *MalformedError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("malformed template %q at offset %d: %s", e.Pattern, e.Offset, e.Message)
	}
	return fmt.Sprintf("malformed template %q: %s", e.Pattern, e.Message)
}

// IsMalformed returns true if err is or wraps a MalformedError.
func IsMalformed(err error) bool {
	var me *MalformedError
	return errors.As(err, &me)
}
