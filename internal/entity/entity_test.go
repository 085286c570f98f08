package entity

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/exprql/internal/expr"
)

type cat struct {
	Name    string
	Age     int    `query:"years"`
	Secret  string `query:"-"`
	private string
	alive   bool
}

func (c *cat) GetName() string { return c.Name }
func (c *cat) IsAlive() bool   { return c.alive }
func (c *cat) Rename(n string) { c.Name = n }
func (c *cat) Getaway() string { return "" }

type bag map[string]any

func (b bag) Property(name string) (any, bool) {
	v, ok := b[name]
	return v, ok
}

func TestFromStruct(t *testing.T) {
	d, err := FromStruct(reflect.TypeOf(cat{}))
	require.NoError(t, err)

	assert.Equal(t, []string{"getName", "isAlive"}, d.Accessors())
	assert.Equal(t, []string{"name", "years"}, d.Fields())

	assert.True(t, d.HasAccessor("getName"))
	assert.False(t, d.HasAccessor("getAge"))
	assert.True(t, d.HasField("years"))
	assert.False(t, d.HasField("secret"))
	assert.False(t, d.HasField("private"))
}

func TestFromStruct_PointerAndErrors(t *testing.T) {
	d, err := FromStruct(reflect.TypeOf(&cat{}))
	require.NoError(t, err)
	assert.True(t, d.HasAccessor("getName"))

	_, err = FromStruct(reflect.TypeOf(42))
	assert.Error(t, err)

	_, err = FromStruct(nil)
	assert.Error(t, err)
}

func TestTypeOf(t *testing.T) {
	ty := MustTypeOf(reflect.TypeOf(&cat{}))
	assert.Equal(t, "cat", ty.Name)
	assert.Equal(t, expr.KindEntity, ty.Kind)
	assert.Equal(t, reflect.TypeOf(cat{}), ty.Go)
	require.NotNil(t, ty.Host)
	assert.True(t, ty.Host.HasField("name"))
}

func TestGet(t *testing.T) {
	c := &cat{Name: "Tom", Age: 3, alive: true}

	name, err := Get[string](c, "name")
	require.NoError(t, err)
	assert.Equal(t, "Tom", name)

	alive, err := Get[bool](c, "alive")
	require.NoError(t, err)
	assert.True(t, alive)

	age, err := Get[int](c, "years")
	require.NoError(t, err)
	assert.Equal(t, 3, age)

	_, err = Get[string](c, "years")
	require.Error(t, err)
	assert.True(t, IsPropertyError(err))

	_, err = Get[string](c, "missing")
	assert.True(t, IsPropertyError(err))

	_, err = Get[string](nil, "name")
	assert.True(t, IsPropertyError(err))
}

func TestGet_Bindable(t *testing.T) {
	b := bag{"name": "Tom", "mate": nil}

	name, err := Get[string](b, "name")
	require.NoError(t, err)
	assert.Equal(t, "Tom", name)

	mate, err := Get[*cat](b, "mate")
	require.NoError(t, err)
	assert.Nil(t, mate)

	_, err = Get[string](b, "age")
	assert.True(t, IsPropertyError(err))
}

type dto struct {
	Name string
	Age  int32
}

func TestConstructor(t *testing.T) {
	construct, err := Constructor(reflect.TypeOf(dto{}))
	require.NoError(t, err)

	v, err := construct("Tom", 3)
	require.NoError(t, err)
	assert.Equal(t, dto{Name: "Tom", Age: 3}, v)

	v, err = construct(nil, int32(4))
	require.NoError(t, err)
	assert.Equal(t, dto{Age: 4}, v)

	_, err = construct("Tom")
	assert.Error(t, err)

	_, err = construct(3, "Tom")
	assert.Error(t, err)

	ptrConstruct, err := Constructor(reflect.TypeOf(&dto{}))
	require.NoError(t, err)
	pv, err := ptrConstruct("Tom", int32(1))
	require.NoError(t, err)
	assert.Equal(t, &dto{Name: "Tom", Age: 1}, pv)
}

func TestCaseHelpers(t *testing.T) {
	assert.Equal(t, "name", LowerFirst("Name"))
	assert.Equal(t, "Name", UpperFirst("name"))
	assert.Equal(t, "", UpperFirst(""))
}
