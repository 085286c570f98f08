package serialize

import (
	"errors"
	"fmt"
)

// PathResolutionError is returned when a property path cannot be rendered
// in accessor style because nothing describes its parent's members.
type PathResolutionError struct {
	Dialect  string
	Path     string
	Property string
	Message  string
}

func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("dialect %s: cannot resolve property %q of %s: %s", e.Dialect, e.Property, e.Path, e.Message)
}

// IsPathResolution reports whether err is a PathResolutionError.
func IsPathResolution(err error) bool {
	var target *PathResolutionError
	return errors.As(err, &target)
}

// UnsupportedCastError is returned when host-language cast synthesis has
// no conversion for the target type.
type UnsupportedCastError struct {
	Dialect string
	Target  string
}

func (e *UnsupportedCastError) Error() string {
	return fmt.Sprintf("dialect %s: unsupported cast target %s", e.Dialect, e.Target)
}

// IsUnsupportedCast reports whether err is an UnsupportedCastError.
func IsUnsupportedCast(err error) bool {
	var target *UnsupportedCastError
	return errors.As(err, &target)
}

// UnsupportedFeatureError is returned when an expression needs a
// capability the dialect lacks.
type UnsupportedFeatureError struct {
	Dialect string
	Feature string
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("dialect %s does not support %s", e.Dialect, e.Feature)
}

// IsUnsupportedFeature reports whether err is an UnsupportedFeatureError.
func IsUnsupportedFeature(err error) bool {
	var target *UnsupportedFeatureError
	return errors.As(err, &target)
}
