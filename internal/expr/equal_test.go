package expr

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func catName() Expression {
	return Property(Root(EntityType("Cat", nil), "cat"), "name", String)
}

func TestEqual_Structural(t *testing.T) {
	a := Predicate(OpEq, catName(), NewConstant("Tom"))
	b := Predicate(OpEq, catName(), NewConstant("Tom"))

	assert.NotSame(t, a, b)
	assert.True(t, Equal(a, b))
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestEqual_Differences(t *testing.T) {
	base := Predicate(OpEq, catName(), NewConstant("Tom"))

	testCases := []struct {
		name  string
		other Expression
	}{
		{"operator", Predicate(OpNe, catName(), NewConstant("Tom"))},
		{"constant", Predicate(OpEq, catName(), NewConstant("Jerry"))},
		{"operand order", Predicate(OpEq, NewConstant("Tom"), catName())},
		{"result type", MustOperation(String, OpEq, catName(), NewConstant("Tom"))},
		{"node kind", NewConstant("Tom")},
		{"property", Predicate(OpEq, Property(Root(EntityType("Cat", nil), "cat"), "nick", String), NewConstant("Tom"))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, Equal(base, tc.other))
			assert.NotEqual(t, Fingerprint(base), Fingerprint(tc.other))
		})
	}
}

func TestEqual_Nil(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, NewConstant(1)))
	assert.False(t, Equal(NewConstant(1), nil))
}

func TestEqual_FactoriesByIdentity(t *testing.T) {
	target := EntityType("Pair", nil)
	p1 := MustProjection(target, nil, catName())
	p2 := MustProjection(target, nil, catName())

	assert.True(t, Equal(p1, p2), "projections compare structurally")
	assert.True(t, Equal(NewConstant(p1), NewConstant(p1)))
	assert.False(t, Equal(NewConstant(p1), NewConstant(p2)), "embedded factories compare by identity")
}

func TestEqual_SubQuery(t *testing.T) {
	mk := func(name string) *SubQuery {
		cat := Root(EntityType("Cat", nil), "c")
		return MustSubQuery(nil, &Metadata{
			Projection: []Expression{Property(cat, "id", Long)},
			Sources:    []*Path{cat},
			Where:      Predicate(OpEq, Property(cat, "name", String), NewConstant(name)),
		})
	}

	assert.True(t, Equal(mk("Tom"), mk("Tom")))
	assert.False(t, Equal(mk("Tom"), mk("Jerry")))
	assert.Equal(t, Fingerprint(mk("Tom")), Fingerprint(mk("Tom")))
}

func TestFingerprint_AsMapKey(t *testing.T) {
	seen := map[string]Expression{}
	for i := 0; i < 3; i++ {
		e := Predicate(OpAnd,
			Predicate(OpIsNotNull, catName()),
			Predicate(OpLike, catName(), NewConstant("T%")))
		seen[Fingerprint(e)] = e
	}
	assert.Len(t, seen, 1)
}

func TestFingerprint_AgreesWithEqual(t *testing.T) {
	date := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cat := Root(EntityType("Cat", nil), "cat")

	testCases := []struct {
		name  string
		a, b  Expression
		equal bool
	}{
		{"same int", NewConstant(5), NewConstant(5), true},
		{"int and int32", NewConstant(5), NewConstant(int32(5)), false},
		{"int and int64", NewConstant(5), NewConstant(int64(5)), false},
		{"float32 and float64", NewConstant(float32(1.5)), NewConstant(1.5), false},
		{"composed and decomposed strings", NewConstant("caf\u00e9"), NewConstant("cafe\u0301"), false},
		{"int slices", NewConstant([]int{1, 2}), NewConstant([]int{1, 2}), true},
		{"slice element types", NewConstant([]int{1, 2}), NewConstant([]int32{1, 2}), false},
		{"nil and empty slice", NewConstant([]int(nil)), NewConstant([]int{}), false},
		{"same instant", NewConstant(date), NewConstant(date.Add(0)), true},
		{"same instant other zone", NewConstant(date), NewConstant(date.In(time.FixedZone("X", 3600))), false},
		{"decimals", NewConstant(big.NewFloat(2.5)), NewConstant(new(big.Float).SetPrec(200).SetFloat64(2.5)), true},
		{"composed and decomposed property names", Property(cat, "caf\u00e9", String), Property(cat, "cafe\u0301", String), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.equal, Equal(tc.a, tc.b))
			assert.Equal(t, Equal(tc.a, tc.b), Fingerprint(tc.a) == Fingerprint(tc.b))
		})
	}
}

func TestMarshalCanonical_SortedKeys(t *testing.T) {
	got := string(MarshalCanonical(NewConstant(int64(7))))
	assert.Equal(t, `{"kind":"constant","type":{"kind":"long","name":"Long"},"value":{"int64":7}}`, got)
}
