package expr

import (
	"math/big"
	"reflect"
	"strings"
	"time"
)

// Kind classifies a static result type.
type Kind int

const (
	KindOther Kind = iota
	KindBoolean
	KindByte
	KindShort
	KindInteger
	KindLong
	KindFloat
	KindDouble
	KindBigDecimal
	KindString
	KindDate
	KindEntity
	KindArray
	KindCollection
	KindMap
)

var kindNames = [...]string{
	KindOther:      "other",
	KindBoolean:    "boolean",
	KindByte:       "byte",
	KindShort:      "short",
	KindInteger:    "integer",
	KindLong:       "long",
	KindFloat:      "float",
	KindDouble:     "double",
	KindBigDecimal: "bigdecimal",
	KindString:     "string",
	KindDate:       "date",
	KindEntity:     "entity",
	KindArray:      "array",
	KindCollection: "collection",
	KindMap:        "map",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsNumeric reports whether values of this kind are numbers.
func (k Kind) IsNumeric() bool {
	return k >= KindByte && k <= KindBigDecimal
}

// HostType describes the members a query dialect may reference on an
// entity type when rendering property paths.
//
// Accessor names are full accessor names ("getName", "isAlive"); field
// names are property names ("name"). Values of bindable entity types
// additionally implement entity.Bindable at runtime, which is what the
// dynamic property access fallback reads through.
type HostType interface {
	HasAccessor(name string) bool
	HasField(name string) bool
}

// Type is the static result type of an expression.
//
// Types are immutable; share them freely.
type Type struct {
	Name  string       // Simple name as printed by object-query dialects ("Integer", "Cat")
	Kind  Kind         // Classification used for cast and numeric decisions
	Go    reflect.Type // Runtime representation (nil when unknown)
	Host  HostType     // Member description for entity types (nil otherwise)
	Elem  *Type        // Element type of arrays, collections and maps
	Key   *Type        // Key type of maps
	Table string       // Relational table name for entity types
}

// Predeclared scalar types.
var (
	Object     = &Type{Name: "Object", Kind: KindOther, Go: reflect.TypeOf((*any)(nil)).Elem()}
	Boolean    = &Type{Name: "Boolean", Kind: KindBoolean, Go: reflect.TypeOf(false)}
	Byte       = &Type{Name: "Byte", Kind: KindByte, Go: reflect.TypeOf(int8(0))}
	Short      = &Type{Name: "Short", Kind: KindShort, Go: reflect.TypeOf(int16(0))}
	Integer    = &Type{Name: "Integer", Kind: KindInteger, Go: reflect.TypeOf(int32(0))}
	Long       = &Type{Name: "Long", Kind: KindLong, Go: reflect.TypeOf(int64(0))}
	Float      = &Type{Name: "Float", Kind: KindFloat, Go: reflect.TypeOf(float32(0))}
	Double     = &Type{Name: "Double", Kind: KindDouble, Go: reflect.TypeOf(float64(0))}
	BigDecimal = &Type{Name: "BigDecimal", Kind: KindBigDecimal, Go: reflect.TypeOf(&big.Float{})}
	String     = &Type{Name: "String", Kind: KindString, Go: reflect.TypeOf("")}
	Date       = &Type{Name: "Date", Kind: KindDate, Go: reflect.TypeOf(time.Time{})}
)

var predeclared = []*Type{Object, Boolean, Byte, Short, Integer, Long, Float, Double, BigDecimal, String, Date}

// LookupType returns the predeclared type with the given name.
// Matching is case-insensitive; an "[]" suffix yields an array type.
func LookupType(name string) (*Type, bool) {
	if elemName, ok := strings.CutSuffix(name, "[]"); ok {
		elem, found := LookupType(elemName)
		if !found {
			return nil, false
		}
		return ArrayOf(elem), true
	}
	for _, t := range predeclared {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return nil, false
}

// EntityType creates an entity type described by host.
func EntityType(name string, host HostType) *Type {
	return &Type{Name: name, Kind: KindEntity, Host: host}
}

// WithTable returns a copy of t mapped to the given relational table.
func (t *Type) WithTable(table string) *Type {
	c := *t
	c.Table = table
	return &c
}

// WithGo returns a copy of t with the given runtime representation.
func (t *Type) WithGo(rtype reflect.Type) *Type {
	c := *t
	c.Go = rtype
	return &c
}

// ArrayOf creates an array type with the given element type.
func ArrayOf(elem *Type) *Type {
	t := &Type{Name: elem.Name + "[]", Kind: KindArray, Elem: elem}
	if elem.Go != nil {
		t.Go = reflect.SliceOf(elem.Go)
	}
	return t
}

// CollectionOf creates a collection type with the given element type.
func CollectionOf(elem *Type) *Type {
	return &Type{Name: "Collection<" + elem.Name + ">", Kind: KindCollection, Elem: elem}
}

// MapOf creates a map type.
func MapOf(key, value *Type) *Type {
	return &Type{Name: "Map<" + key.Name + "," + value.Name + ">", Kind: KindMap, Key: key, Elem: value}
}

// IsNumeric reports whether t is a numeric type. A nil type is not numeric.
func (t *Type) IsNumeric() bool {
	return t != nil && t.Kind.IsNumeric()
}

// String returns the type name.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}

// sameType reports whether a and b describe the same type.
func sameType(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Name == b.Name && a.Kind == b.Kind
}

// TypeOf infers the static type of a Go constant value.
//
// Go int maps to Integer, matching how literal numbers read in queries;
// use TypedConstant for anything else.
func TypeOf(v any) *Type {
	switch v.(type) {
	case nil:
		return Object
	case bool:
		return Boolean
	case int8:
		return Byte
	case int16:
		return Short
	case int, int32:
		return Integer
	case int64:
		return Long
	case float32:
		return Float
	case float64:
		return Double
	case *big.Float:
		return BigDecimal
	case string:
		return String
	case time.Time:
		return Date
	case Factory:
		return v.(Factory).ResultType()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		elem := typeOfReflect(rv.Type().Elem())
		return CollectionOf(elem)
	}
	return Object.WithGo(rv.Type())
}

func typeOfReflect(rt reflect.Type) *Type {
	for _, t := range predeclared {
		if t.Go == rt {
			return t
		}
	}
	if rt.Kind() == reflect.Int {
		return Integer
	}
	return Object.WithGo(rt)
}
