// Package entity describes entity host types for path rendering and
// provides the runtime side of dynamic property access.
package entity

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mitranim/refut"

	"github.com/roach88/exprql/internal/expr"
)

// TagName is the struct tag naming a field's query property.
// `query:"-"` hides a field.
const TagName = "query"

// Descriptor is a HostType listing an entity's public accessors and fields.
type Descriptor struct {
	accessors map[string]struct{}
	fields    map[string]struct{}
}

var _ expr.HostType = (*Descriptor)(nil)

// NewDescriptor creates a descriptor from accessor names ("getName") and
// field names ("name").
func NewDescriptor(accessors, fields []string) *Descriptor {
	d := &Descriptor{
		accessors: make(map[string]struct{}, len(accessors)),
		fields:    make(map[string]struct{}, len(fields)),
	}
	for _, a := range accessors {
		d.accessors[a] = struct{}{}
	}
	for _, f := range fields {
		d.fields[f] = struct{}{}
	}
	return d
}

// HasAccessor implements expr.HostType.
func (d *Descriptor) HasAccessor(name string) bool {
	_, ok := d.accessors[name]
	return ok
}

// HasField implements expr.HostType.
func (d *Descriptor) HasField(name string) bool {
	_, ok := d.fields[name]
	return ok
}

// Accessors returns the accessor names in sorted order.
func (d *Descriptor) Accessors() []string { return sortedKeys(d.accessors) }

// Fields returns the field names in sorted order.
func (d *Descriptor) Fields() []string { return sortedKeys(d.fields) }

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromStruct derives a descriptor from a Go struct type.
//
// Exported zero-argument, single-result methods named GetX or IsX become
// accessors getX and isX. Exported fields, including those promoted from
// embedded structs, become fields named by their query tag or by the
// lower-camel field name.
func FromStruct(rtype reflect.Type) (*Descriptor, error) {
	if rtype == nil {
		return nil, fmt.Errorf("entity: nil type")
	}
	rtype = refut.RtypeDeref(rtype)
	if rtype.Kind() != reflect.Struct {
		return nil, fmt.Errorf("entity: %s is not a struct", rtype)
	}

	var accessors []string
	ptr := reflect.PointerTo(rtype)
	for i := 0; i < ptr.NumMethod(); i++ {
		m := ptr.Method(i)
		// Method types include the receiver.
		if m.Type.NumIn() != 1 || m.Type.NumOut() != 1 {
			continue
		}
		if name, ok := accessorName(m.Name); ok {
			accessors = append(accessors, name)
		}
	}

	var fields []string
	err := refut.TraverseStructRtype(rtype, func(sfield reflect.StructField, _ []int) error {
		if name := propertyName(sfield); name != "" {
			fields = append(fields, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("entity: %s: %w", rtype, err)
	}

	return NewDescriptor(accessors, fields), nil
}

// TypeOf builds an entity type for a Go struct.
func TypeOf(rtype reflect.Type) (*expr.Type, error) {
	desc, err := FromStruct(rtype)
	if err != nil {
		return nil, err
	}
	rtype = refut.RtypeDeref(rtype)
	return expr.EntityType(rtype.Name(), desc).WithGo(rtype), nil
}

// MustTypeOf is like TypeOf but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustTypeOf(rtype reflect.Type) *expr.Type {
	t, err := TypeOf(rtype)
	if err != nil {
		panic(err)
	}
	return t
}

// accessorName maps a Go method name to its query accessor name:
// GetName -> getName, IsAlive -> isAlive.
func accessorName(method string) (string, bool) {
	for _, prefix := range []string{"Get", "Is"} {
		rest, ok := strings.CutPrefix(method, prefix)
		if !ok || rest == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(rest)
		if unicode.IsUpper(r) {
			return strings.ToLower(prefix) + rest, true
		}
	}
	return "", false
}

func propertyName(sfield reflect.StructField) string {
	if !sfield.IsExported() {
		return ""
	}
	tag := sfield.Tag.Get(TagName)
	if tag == "-" {
		return ""
	}
	if ident := refut.TagIdent(tag); ident != "" {
		return ident
	}
	return LowerFirst(sfield.Name)
}

// LowerFirst lower-cases the first rune of s.
func LowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// UpperFirst upper-cases the first rune of s.
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
