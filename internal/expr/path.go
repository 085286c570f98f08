package expr

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// PathMetadata describes how a path derives from its parent.
//
// Element holds the property name, variable name, index or key. Roots
// (PathVariable) have no parent; every other path type requires one.
type PathMetadata struct {
	Parent  Expression // nil for roots
	Element Expression // Property/variable name, index or key
	Type    PathType
}

// Path is a navigation into the entity graph: a root variable, a property
// of another path, or an element of a collection, map or array.
type Path struct {
	typ  *Type
	meta PathMetadata
}

func (*Path) expressionNode() {}

// NewPath creates a path after checking its metadata invariants.
func NewPath(t *Type, meta PathMetadata) (*Path, error) {
	if meta.Type.Operator() == OpInvalid {
		return nil, &PathError{PathType: meta.Type, Message: "unknown path type"}
	}
	if meta.Element == nil {
		return nil, &PathError{PathType: meta.Type, Message: "path element is required"}
	}
	switch {
	case meta.Type == PathVariable && meta.Parent != nil:
		return nil, &PathError{PathType: meta.Type, Message: "root path cannot have a parent"}
	case meta.Type != PathVariable && meta.Parent == nil:
		return nil, &PathError{PathType: meta.Type, Message: "path requires a parent"}
	}
	if meta.Type == PathProperty || meta.Type == PathVariable {
		c, ok := meta.Element.(*Constant)
		if !ok {
			return nil, &PathError{PathType: meta.Type, Message: "name element must be a constant"}
		}
		if s, ok := c.Value().(string); !ok || s == "" {
			return nil, &PathError{PathType: meta.Type, Message: "name element must be a non-empty string"}
		}
	}
	if t == nil {
		t = Object
	}
	return &Path{typ: t, meta: meta}, nil
}

// MustPath is like NewPath but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustPath(t *Type, meta PathMetadata) *Path {
	p, err := NewPath(t, meta)
	if err != nil {
		panic(err)
	}
	return p
}

// Root creates a root variable path. Names are NFC normalized, as are
// property names.
func Root(t *Type, name string) *Path {
	return MustPath(t, PathMetadata{Element: NewConstant(norm.NFC.String(name)), Type: PathVariable})
}

// Property creates a property path of parent.
func Property(parent Expression, name string, t *Type) *Path {
	return MustPath(t, PathMetadata{Parent: parent, Element: NewConstant(norm.NFC.String(name)), Type: PathProperty})
}

// ListValue creates an indexed list element path. Constant indexes
// select the _CONSTANT path type.
func ListValue(parent, index Expression, t *Type) *Path {
	pt := PathListValue
	if _, ok := index.(*Constant); ok {
		pt = PathListValueConstant
	}
	return MustPath(t, PathMetadata{Parent: parent, Element: index, Type: pt})
}

// MapValue creates a keyed map value path.
func MapValue(parent, key Expression, t *Type) *Path {
	pt := PathMapValue
	if _, ok := key.(*Constant); ok {
		pt = PathMapValueConstant
	}
	return MustPath(t, PathMetadata{Parent: parent, Element: key, Type: pt})
}

// ArrayValue creates an indexed array element path.
func ArrayValue(parent, index Expression, t *Type) *Path {
	pt := PathArrayValue
	if _, ok := index.(*Constant); ok {
		pt = PathArrayValueConstant
	}
	return MustPath(t, PathMetadata{Parent: parent, Element: index, Type: pt})
}

// CollectionAny creates a path standing for any element of a collection.
func CollectionAny(parent Expression, t *Type) *Path {
	return MustPath(t, PathMetadata{Parent: parent, Element: NewConstant("any"), Type: PathCollectionAny})
}

// Delegate creates a path that renders as its delegate under another type.
func Delegate(delegate Expression, t *Type) *Path {
	return MustPath(t, PathMetadata{Parent: delegate, Element: delegate, Type: PathDelegate})
}

// ResultType implements Expression.
func (p *Path) ResultType() *Type { return p.typ }

// Metadata returns the path metadata.
func (p *Path) Metadata() PathMetadata { return p.meta }

// Parent returns the parent expression, nil for roots.
func (p *Path) Parent() Expression { return p.meta.Parent }

// Element returns the name, index or key element.
func (p *Path) Element() Expression { return p.meta.Element }

// PathType returns how the path derives from its parent.
func (p *Path) PathType() PathType { return p.meta.Type }

// Name returns the element's literal text: the property or variable name
// for named paths.
func (p *Path) Name() string { return p.meta.Element.String() }

// IsRoot reports whether p is a root variable.
func (p *Path) IsRoot() bool { return p.meta.Type == PathVariable }

// Root returns the root variable p descends from, or nil when the chain
// leaves paths (a property of an operation result, for example).
func (p *Path) Root() *Path {
	cur := p
	for !cur.IsRoot() {
		next, ok := cur.meta.Parent.(*Path)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// String implements Expression.
func (p *Path) String() string {
	m := p.meta
	switch m.Type {
	case PathVariable:
		return m.Element.String()
	case PathProperty:
		return m.Parent.String() + "." + m.Element.String()
	case PathCollectionAny:
		return "any(" + m.Parent.String() + ")"
	case PathListValue, PathListValueConstant, PathArrayValue, PathArrayValueConstant:
		return fmt.Sprintf("%s[%s]", m.Parent.String(), m.Element.String())
	case PathMapValue, PathMapValueConstant:
		return fmt.Sprintf("%s.get(%s)", m.Parent.String(), m.Element.String())
	case PathDelegate:
		return m.Parent.String()
	}
	return m.Element.String()
}
