package serialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/exprql/internal/dialect"
	"github.com/roach88/exprql/internal/expr"
	"github.com/roach88/exprql/internal/testutil"
)

func catQuery() *expr.Metadata {
	return &expr.Metadata{
		Projection: []expr.Expression{name},
		Sources:    []*expr.Path{cat},
		Where:      pred(expr.OpGt, age, c(3)),
		OrderBy:    []expr.Order{{Target: name}, {Target: age, Desc: true}},
		Limit:      testutil.Int64(10),
		Offset:     testutil.Int64(20),
	}
}

func TestSerializeQuery(t *testing.T) {
	testCases := []struct {
		name      string
		dialect   string
		forCount  bool
		text      string
		constants []any
	}{
		{
			name:      "sql",
			dialect:   dialect.SQL,
			text:      "select cat.name from cat cat where cat.age > ? order by cat.name asc, cat.age desc limit ? offset ?",
			constants: []any{3, int64(10), int64(20)},
		},
		{
			name:      "sql count",
			dialect:   dialect.SQL,
			forCount:  true,
			text:      "select count(*) from cat cat where cat.age > ?",
			constants: []any{3},
		},
		{
			name:      "quoted identifiers",
			dialect:   dialect.Postgres,
			forCount:  true,
			text:      `select count(*) from "cat" "cat" where "cat"."age" > $1`,
			constants: []any{3},
		},
		{
			name:      "object query count names the variable",
			dialect:   dialect.JPQL,
			forCount:  true,
			text:      "select count(cat) from Cat cat where cat.age > ?1",
			constants: []any{3},
		},
		{
			name:      "no paging without templates",
			dialect:   dialect.JDOQL,
			text:      "select cat.name from Cat cat where cat.age > a1 order by cat.name asc, cat.age desc",
			constants: []any{3},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			text, constants, err := New(reg.MustGet(tc.dialect)).SerializeQuery(catQuery(), tc.forCount)
			require.NoError(t, err)
			assert.Equal(t, tc.text, text)
			assert.Equal(t, tc.constants, constants)
		})
	}
}

func TestSerializeQuery_GroupingAndDistinct(t *testing.T) {
	person := testutil.PersonPath("p")
	m := &expr.Metadata{
		Distinct:   true,
		Projection: []expr.Expression{name, op(expr.Long, expr.OpCount, person)},
		Sources:    []*expr.Path{cat, person},
		Where:      pred(expr.OpEq, name, expr.Property(person, "name", expr.String)),
		GroupBy:    []expr.Expression{name},
		Having:     pred(expr.OpGt, op(expr.Long, expr.OpCount, person), c(1)),
	}

	text, constants, err := New(reg.MustGet(dialect.SQL)).SerializeQuery(m, false)
	require.NoError(t, err)
	assert.Equal(t, "select distinct cat.name, count(p) from cat cat, person p where cat.name = p.name group by cat.name having count(p) > ?", text)
	assert.Equal(t, []any{1}, constants)
}

func TestSerializeQuery_Invalid(t *testing.T) {
	_, _, err := New(reg.MustGet(dialect.SQL)).SerializeQuery(&expr.Metadata{Sources: []*expr.Path{cat}}, false)
	assert.ErrorIs(t, err, expr.ErrEmptyProjection)

	_, _, err = New(reg.MustGet(dialect.SQL)).SerializeQuery(&expr.Metadata{Projection: []expr.Expression{name}}, false)
	assert.ErrorIs(t, err, expr.ErrNoSources)
}
