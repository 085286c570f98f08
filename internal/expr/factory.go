package expr

import (
	"errors"
	"fmt"
	"math"
	"reflect"
)

// Factory is an expression that constructs a value of its result type
// from the evaluated values of its arguments.
//
// Serializers embed the factory itself as an opaque constant; the
// execution runtime later calls NewInstance with one value per argument.
type Factory interface {
	Expression
	Args() []Expression
	NewInstance(args ...any) (any, error)
}

// ConstructFunc builds a projection result from evaluated arguments.
type ConstructFunc func(args ...any) (any, error)

// ErrNoTarget is returned when a factory is created without a target type.
var ErrNoTarget = errors.New("factory target type is required")

// Projection constructs an instance of a target type from its argument
// values, as in "select new PersonDTO(p.name, p.age)".
type Projection struct {
	target    *Type
	construct ConstructFunc
	args      []Expression
}

var _ Factory = (*Projection)(nil)

func (*Projection) expressionNode() {}

// NewProjection creates a constructor projection.
func NewProjection(target *Type, construct ConstructFunc, args ...Expression) (*Projection, error) {
	if target == nil {
		return nil, ErrNoTarget
	}
	return &Projection{target: target, construct: construct, args: append([]Expression(nil), args...)}, nil
}

// MustProjection is like NewProjection but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustProjection(target *Type, construct ConstructFunc, args ...Expression) *Projection {
	p, err := NewProjection(target, construct, args...)
	if err != nil {
		panic(err)
	}
	return p
}

// ResultType implements Expression.
func (p *Projection) ResultType() *Type { return p.target }

// Args returns the argument expressions. The returned slice must not be
// modified.
func (p *Projection) Args() []Expression { return p.args }

// NewInstance invokes the construct function.
func (p *Projection) NewInstance(args ...any) (any, error) {
	if p.construct == nil {
		return nil, fmt.Errorf("projection %s has no constructor", p.target.Name)
	}
	if len(args) != len(p.args) {
		return nil, fmt.Errorf("projection %s: expected %d argument(s), got %d", p.target.Name, len(p.args), len(args))
	}
	return p.construct(args...)
}

// String implements Expression.
func (p *Projection) String() string {
	return "new " + p.target.Name + "(" + joinStrings(p.args) + ")"
}

// ArrayConstructor builds an array of its element type from its arguments.
type ArrayConstructor struct {
	arrayType *Type
	args      []Expression
}

var _ Factory = (*ArrayConstructor)(nil)

func (*ArrayConstructor) expressionNode() {}

// NewArrayConstructor creates an array constructor. The element type is
// taken from arrayType, which must be an array type whose element has a
// runtime representation.
func NewArrayConstructor(arrayType *Type, args ...Expression) (*ArrayConstructor, error) {
	switch {
	case arrayType == nil:
		return nil, &InvalidArrayTypeError{Message: "array type is required"}
	case arrayType.Kind != KindArray:
		return nil, &InvalidArrayTypeError{Type: arrayType, Message: "not an array type"}
	case arrayType.Elem == nil:
		return nil, &InvalidArrayTypeError{Type: arrayType, Message: "element type cannot be derived"}
	case arrayType.Elem.Go == nil || arrayType.Go == nil:
		return nil, &InvalidArrayTypeError{Type: arrayType, Message: "element type has no runtime representation"}
	case arrayType.Go.Kind() != reflect.Slice || arrayType.Go.Elem() != arrayType.Elem.Go:
		return nil, &InvalidArrayTypeError{Type: arrayType, Message: "runtime type does not match element type"}
	}
	return &ArrayConstructor{arrayType: arrayType, args: append([]Expression(nil), args...)}, nil
}

// MustArrayConstructor is like NewArrayConstructor but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustArrayConstructor(arrayType *Type, args ...Expression) *ArrayConstructor {
	a, err := NewArrayConstructor(arrayType, args...)
	if err != nil {
		panic(err)
	}
	return a
}

// ResultType implements Expression.
func (a *ArrayConstructor) ResultType() *Type { return a.arrayType }

// ElementType returns the array element type.
func (a *ArrayConstructor) ElementType() *Type { return a.arrayType.Elem }

// Args returns the element expressions. The returned slice must not be
// modified.
func (a *ArrayConstructor) Args() []Expression { return a.args }

// NewInstance returns a slice of the element type holding args.
//
// A single argument that already is a slice of the element type is
// returned unchanged. A single slice of another type is copied element by
// element, as is any other argument list. Numeric elements convert to the
// element type only when the value survives unchanged: no truncated
// fraction, no overflow, no sign flip. Anything else is an
// InvalidArrayTypeError.
func (a *ArrayConstructor) NewInstance(args ...any) (any, error) {
	sliceType := a.arrayType.Go
	if len(args) == 1 && args[0] != nil {
		rv := reflect.ValueOf(args[0])
		if rv.Type() == sliceType {
			return args[0], nil
		}
		if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && sliceType.Elem().Kind() != reflect.Slice {
			values := make([]any, rv.Len())
			for i := range values {
				values[i] = rv.Index(i).Interface()
			}
			args = values
		}
	}

	out := reflect.MakeSlice(sliceType, len(args), len(args))
	elemType := sliceType.Elem()
	for i, v := range args {
		ev, err := convertElement(v, elemType)
		if err != nil {
			return nil, &InvalidArrayTypeError{Type: a.arrayType, Message: fmt.Sprintf("element %d: %v", i, err)}
		}
		out.Index(i).Set(ev)
	}
	return out.Interface(), nil
}

func convertElement(v any, elemType reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch elemType.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map:
			return reflect.Zero(elemType), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not a %s", elemType)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(elemType) {
		return rv, nil
	}
	if (isNumericKind(rv.Kind()) && isNumericKind(elemType.Kind())) || rv.Kind() == elemType.Kind() {
		if rv.Type().ConvertibleTo(elemType) {
			cv := rv.Convert(elemType)
			if isNumericKind(rv.Kind()) && !lossless(rv, cv) {
				return reflect.Value{}, fmt.Errorf("%T %v does not fit in %s", v, v, elemType)
			}
			return cv, nil
		}
	}
	return reflect.Value{}, fmt.Errorf("%T is not convertible to %s", v, elemType)
}

// lossless reports whether the numeric conversion of rv to cv kept its
// value.
func lossless(rv, cv reflect.Value) bool {
	if !cv.Convert(rv.Type()).Equal(rv) {
		return isFloatKind(rv.Kind()) && isFloatKind(cv.Kind()) && math.IsNaN(rv.Float())
	}
	switch {
	case isSignedKind(rv.Kind()) && isUnsignedKind(cv.Kind()):
		return rv.Int() >= 0
	case isUnsignedKind(rv.Kind()) && isSignedKind(cv.Kind()):
		return cv.Int() >= 0
	}
	return true
}

func isSignedKind(k reflect.Kind) bool   { return k >= reflect.Int && k <= reflect.Int64 }
func isUnsignedKind(k reflect.Kind) bool { return k >= reflect.Uint && k <= reflect.Uintptr }
func isFloatKind(k reflect.Kind) bool    { return k == reflect.Float32 || k == reflect.Float64 }

func isNumericKind(k reflect.Kind) bool {
	return (k >= reflect.Int && k <= reflect.Uint64) || k == reflect.Float32 || k == reflect.Float64
}

// String implements Expression.
func (a *ArrayConstructor) String() string {
	return "new " + a.arrayType.Name + "{" + joinStrings(a.args) + "}"
}
