package entity

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/mitranim/refut"

	"github.com/roach88/exprql/internal/expr"
)

// Bindable is implemented by entity values that expose their properties
// by name. It is the runtime counterpart of the dynamic property access
// rendered for properties without an accessor or public field.
type Bindable interface {
	Property(name string) (any, bool)
}

// PropertyError reports a property that cannot be read from a value.
type PropertyError struct {
	Type    string // Go type of the host value
	Name    string // Property name
	Message string
}

// Error implements the error interface.
func (e *PropertyError) Error() string {
	return fmt.Sprintf("entity: property %q of %s: %s", e.Name, e.Type, e.Message)
}

// IsPropertyError returns true if err is or wraps a PropertyError.
func IsPropertyError(err error) bool {
	var pe *PropertyError
	return errors.As(err, &pe)
}

// Get reads property name from host.
//
// Bindable hosts answer directly. Other structs resolve like rendered
// paths do: accessor method GetX/IsX first, then a field named by its
// query tag or lower-camel name.
func Get[T any](host any, name string) (T, error) {
	var zero T
	v, err := property(host, name)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, &PropertyError{Type: fmt.Sprintf("%T", host), Name: name, Message: fmt.Sprintf("value of type %T is not %T", v, zero)}
	}
	return out, nil
}

func property(host any, name string) (any, error) {
	if refut.IsNil(host) {
		return nil, &PropertyError{Type: fmt.Sprintf("%T", host), Name: name, Message: "nil host"}
	}
	if b, ok := host.(Bindable); ok {
		v, found := b.Property(name)
		if !found {
			return nil, &PropertyError{Type: fmt.Sprintf("%T", host), Name: name, Message: "no such property"}
		}
		return v, nil
	}

	rval := reflect.ValueOf(host)
	for _, prefix := range []string{"Get", "Is"} {
		m := rval.MethodByName(prefix + UpperFirst(name))
		if m.IsValid() && m.Type().NumIn() == 0 && m.Type().NumOut() == 1 {
			return m.Call(nil)[0].Interface(), nil
		}
	}

	sval := reflect.Indirect(rval)
	if sval.Kind() != reflect.Struct {
		return nil, &PropertyError{Type: fmt.Sprintf("%T", host), Name: name, Message: "not a struct"}
	}
	var (
		found any
		ok    bool
	)
	err := refut.TraverseStructRval(sval, func(fval reflect.Value, sfield reflect.StructField, _ []int) error {
		if !ok && propertyName(sfield) == name {
			found, ok = fval.Interface(), true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &PropertyError{Type: fmt.Sprintf("%T", host), Name: name, Message: "no such property"}
	}
	return found, nil
}

// Constructor returns a construct function for expr.NewProjection that
// fills rtype's exported fields in declaration order from its arguments.
// The result is a struct value; pointer types yield a pointer.
func Constructor(rtype reflect.Type) (expr.ConstructFunc, error) {
	if rtype == nil {
		return nil, fmt.Errorf("entity: nil type")
	}
	wantPtr := rtype.Kind() == reflect.Pointer
	stype := refut.RtypeDeref(rtype)
	if stype.Kind() != reflect.Struct {
		return nil, fmt.Errorf("entity: %s is not a struct", rtype)
	}

	var indexes [][]int
	err := refut.TraverseStructRtype(stype, func(sfield reflect.StructField, index []int) error {
		if propertyName(sfield) != "" {
			indexes = append(indexes, append([]int(nil), index...))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("entity: %s: %w", stype, err)
	}

	return func(args ...any) (any, error) {
		if len(args) != len(indexes) {
			return nil, fmt.Errorf("entity: %s has %d field(s), got %d argument(s)", stype.Name(), len(indexes), len(args))
		}
		ptr := reflect.New(stype)
		out := ptr.Elem()
		for i, arg := range args {
			if arg == nil {
				continue
			}
			field := out.FieldByIndex(indexes[i])
			av := reflect.ValueOf(arg)
			switch {
			case av.Type().AssignableTo(field.Type()):
				field.Set(av)
			case av.Type().ConvertibleTo(field.Type()) && av.Kind() != reflect.String && field.Kind() != reflect.String:
				field.Set(av.Convert(field.Type()))
			default:
				return nil, fmt.Errorf("entity: %s argument %d: %T is not assignable to %s", stype.Name(), i, arg, field.Type())
			}
		}
		if wantPtr {
			return ptr.Interface(), nil
		}
		return out.Interface(), nil
	}, nil
}
