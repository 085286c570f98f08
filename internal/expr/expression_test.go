package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/exprql/internal/template"
)

func TestNewOperation_Arity(t *testing.T) {
	a := NewConstant(1)
	b := NewConstant(2)
	c := NewConstant(3)

	testCases := []struct {
		name    string
		op      Operator
		args    []Expression
		wantErr bool
	}{
		{"binary ok", OpEq, []Expression{a, b}, false},
		{"binary too few", OpEq, []Expression{a}, true},
		{"binary too many", OpEq, []Expression{a, b, c}, true},
		{"unary ok", OpNot, []Expression{a}, false},
		{"ternary ok", OpBetween, []Expression{a, b, c}, false},
		{"ternary too few", OpBetween, []Expression{a, b}, true},
		{"variadic two", OpAnd, []Expression{a, b}, false},
		{"variadic three", OpAnd, []Expression{a, b, c}, false},
		{"variadic one", OpOr, []Expression{a}, true},
		{"optional none", OpCountAll, nil, false},
		{"virtual rejected", OpPathProperty, []Expression{a, b}, true},
		{"invalid rejected", OpInvalid, nil, true},
		{"nil operand", OpEq, []Expression{a, nil}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			op, err := NewOperation(Boolean, tc.op, tc.args...)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, IsArityError(err), "expected ArityError, got %T", err)
				assert.Nil(t, op)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.op, op.Operator())
			assert.Len(t, op.Args(), len(tc.args))
		})
	}
}

func TestNewOperation_CopiesArgs(t *testing.T) {
	args := []Expression{NewConstant(1), NewConstant(2)}
	op := MustOperation(Boolean, OpEq, args...)

	args[0] = NewConstant(99)
	assert.Equal(t, 1, op.Arg(0).(*Constant).Value())
}

func TestArityError_Message(t *testing.T) {
	_, err := NewOperation(Boolean, OpEq, NewConstant(1))
	require.Error(t, err)
	assert.Equal(t, "operator EQ takes 2 operand(s), got 1", err.Error())

	_, err = NewOperation(Boolean, OpAnd)
	require.Error(t, err)
	assert.Equal(t, "operator AND takes at least 2 operand(s), got 0", err.Error())
}

func TestNewPath_Invariants(t *testing.T) {
	cat := Root(Object, "cat")

	testCases := []struct {
		name string
		meta PathMetadata
	}{
		{"property without parent", PathMetadata{Element: NewConstant("name"), Type: PathProperty}},
		{"root with parent", PathMetadata{Parent: cat, Element: NewConstant("x"), Type: PathVariable}},
		{"missing element", PathMetadata{Parent: cat, Type: PathProperty}},
		{"non-constant name", PathMetadata{Parent: cat, Element: cat, Type: PathProperty}},
		{"empty name", PathMetadata{Parent: cat, Element: NewConstant(""), Type: PathProperty}},
		{"map value without parent", PathMetadata{Element: NewConstant("k"), Type: PathMapValueConstant}},
		{"unknown path type", PathMetadata{Element: NewConstant("x"), Type: PathType(99)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPath(String, tc.meta)
			require.Error(t, err)
			assert.True(t, IsPathError(err), "expected PathError, got %T", err)
		})
	}
}

func TestPathHelpers(t *testing.T) {
	cat := Root(Object, "cat")
	name := Property(cat, "name", String)
	kittens := Property(cat, "kittens", CollectionOf(Object))

	assert.True(t, cat.IsRoot())
	assert.Equal(t, PathProperty, name.PathType())
	assert.Equal(t, "name", name.Name())
	assert.Equal(t, "cat.name", name.String())
	assert.Same(t, cat, name.Root())

	assert.Equal(t, PathListValueConstant, ListValue(kittens, NewConstant(0), Object).PathType())
	assert.Equal(t, PathListValue, ListValue(kittens, Property(cat, "idx", Integer), Object).PathType())
	assert.Equal(t, PathMapValueConstant, MapValue(kittens, NewConstant("k"), Object).PathType())
	assert.Equal(t, PathArrayValue, ArrayValue(kittens, Property(cat, "idx", Integer), Object).PathType())
	assert.Equal(t, "kittens[0]", ListValue(Root(Object, "kittens"), NewConstant(0), Object).String())
	assert.Equal(t, "any(cat.kittens)", CollectionAny(kittens, Object).String())
	assert.Equal(t, "cat", Delegate(cat, Object).String())
}

func TestPath_RootThroughOperation(t *testing.T) {
	op := MustOperation(String, OpLower, Property(Root(Object, "cat"), "name", String))
	p := Property(op, "length", Integer)
	assert.Nil(t, p.Root())
}

func TestPathType_Operator(t *testing.T) {
	assert.Equal(t, OpPathMapValue, PathMapValue.Operator())
	assert.Equal(t, OpPathProperty, PathProperty.Operator())
	assert.Equal(t, "COLLECTION_ANY", PathCollectionAny.String())
	assert.Equal(t, OpInvalid, PathType(-1).Operator())
}

func TestLookupOperator(t *testing.T) {
	op, ok := LookupOperator("string_cast")
	require.True(t, ok)
	assert.Equal(t, OpStringCast, op)

	op, ok = LookupOperator("PATH_PROPERTY")
	require.True(t, ok)
	assert.True(t, op.Virtual())

	_, ok = LookupOperator("NOPE")
	assert.False(t, ok)

	_, ok = LookupOperator("INVALID")
	assert.False(t, ok)

	for _, op := range Operators() {
		found, ok := LookupOperator(op.String())
		require.True(t, ok, op.String())
		assert.Equal(t, op, found)
	}
}

func TestNewTemplate_BindsArgs(t *testing.T) {
	tmpl := template.MustParse("coalesce({0},{1})")

	_, err := NewTemplate(String, tmpl, NewConstant("a"))
	require.Error(t, err)
	assert.True(t, template.IsMalformed(err))

	te, err := NewTemplate(String, tmpl, NewConstant("a"), NewConstant("b"))
	require.NoError(t, err)
	assert.Equal(t, "coalesce(a,b)", te.String())
}

func TestConstant_String(t *testing.T) {
	assert.Equal(t, "cat", NewConstant("cat").String())
	assert.Equal(t, "5", NewConstant(5).String())
	assert.Equal(t, "null", Null(String).String())
	assert.Equal(t, "Integer", NewConstant(Integer).String())
	assert.Equal(t, String, Null(String).ResultType())
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, Integer, TypeOf(5))
	assert.Equal(t, Integer, TypeOf(int32(5)))
	assert.Equal(t, Long, TypeOf(int64(5)))
	assert.Equal(t, Double, TypeOf(1.5))
	assert.Equal(t, String, TypeOf("x"))
	assert.Equal(t, Boolean, TypeOf(true))

	coll := TypeOf([]int{1, 2})
	assert.Equal(t, KindCollection, coll.Kind)
	assert.Equal(t, Integer, coll.Elem)
}

func TestLookupType(t *testing.T) {
	ty, ok := LookupType("integer")
	require.True(t, ok)
	assert.Same(t, Integer, ty)

	arr, ok := LookupType("String[]")
	require.True(t, ok)
	assert.Equal(t, KindArray, arr.Kind)
	assert.Same(t, String, arr.Elem)

	_, ok = LookupType("Cat")
	assert.False(t, ok)
}

func TestNewSubQuery_Validates(t *testing.T) {
	cat := Root(EntityType("Cat", nil), "cat")

	_, err := NewSubQuery(nil, &Metadata{Sources: []*Path{cat}})
	assert.ErrorIs(t, err, ErrEmptyProjection)

	_, err = NewSubQuery(nil, &Metadata{Projection: []Expression{cat}})
	assert.ErrorIs(t, err, ErrNoSources)

	_, err = NewSubQuery(nil, &Metadata{Projection: []Expression{cat}, Sources: []*Path{Property(cat, "mate", Object)}})
	assert.True(t, IsPathError(err))

	sq, err := NewSubQuery(nil, &Metadata{Projection: []Expression{Property(cat, "name", String)}, Sources: []*Path{cat}})
	require.NoError(t, err)
	assert.Same(t, String, sq.ResultType())
}
