package sqlcheck

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/exprql/internal/dialect"
	"github.com/roach88/exprql/internal/expr"
	"github.com/roach88/exprql/internal/serialize"
	"github.com/roach88/exprql/internal/testutil"
)

const schema = `
CREATE TABLE cat (name TEXT, age INTEGER, weight REAL, alive INTEGER, birth TEXT);
CREATE TABLE person (name TEXT, age INTEGER);
`

func openChecker(t *testing.T) *Checker {
	t.Helper()
	c, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	require.NoError(t, c.Exec(context.Background(), schema))
	return c
}

func TestVerify_SerializedStatements(t *testing.T) {
	c := openChecker(t)
	reg := dialect.NewRegistry()
	d := reg.MustGet(dialect.SQLite)

	cat := testutil.CatPath("c")
	name := expr.Property(cat, "name", expr.String)
	age := expr.Property(cat, "age", expr.Integer)
	weight := expr.Property(cat, "weight", expr.Double)
	k := testutil.CatPath("k")

	testCases := []struct {
		name string
		meta *expr.Metadata
	}{
		{
			name: "filters and paging",
			meta: &expr.Metadata{
				Projection: []expr.Expression{name, age},
				Sources:    []*expr.Path{cat},
				Where: expr.Predicate(expr.OpAnd,
					expr.Predicate(expr.OpStartsWith, name, expr.NewConstant("50%")),
					expr.Predicate(expr.OpBetween, age, expr.NewConstant(1), expr.NewConstant(9)),
				),
				OrderBy: []expr.Order{{Target: name}},
				Limit:   testutil.Int64(5),
				Offset:  testutil.Int64(10),
			},
		},
		{
			name: "collection expansion",
			meta: &expr.Metadata{
				Projection: []expr.Expression{name},
				Sources:    []*expr.Path{cat},
				Where:      expr.Predicate(expr.OpIn, age, expr.NewConstant([]int{1, 2, 3})),
			},
		},
		{
			name: "arithmetic and casts",
			meta: &expr.Metadata{
				Projection: []expr.Expression{
					expr.MustOperation(expr.String, expr.OpStringCast, age),
					expr.MustOperation(expr.Long, expr.OpNumCast, weight, expr.NewConstant(expr.Long)),
				},
				Sources: []*expr.Path{cat},
				Where: expr.Predicate(expr.OpGt,
					expr.MustOperation(expr.Double, expr.OpMult,
						expr.MustOperation(expr.Double, expr.OpAdd, weight, expr.NewConstant(1.5)),
						expr.NewConstant(2)),
					expr.MustOperation(expr.Integer, expr.OpMod, age, expr.NewConstant(3)),
				),
			},
		},
		{
			name: "sub-queries",
			meta: &expr.Metadata{
				Projection: []expr.Expression{name},
				Sources:    []*expr.Path{cat},
				Where: expr.Predicate(expr.OpAnd,
					expr.Predicate(expr.OpIn, age, expr.MustSubQuery(nil, &expr.Metadata{
						Projection: []expr.Expression{expr.Property(k, "age", expr.Integer)},
						Sources:    []*expr.Path{k},
						Where:      expr.Predicate(expr.OpEq, expr.Property(k, "name", expr.String), expr.NewConstant("Tom")),
					})),
					expr.Predicate(expr.OpExists, expr.MustSubQuery(nil, &expr.Metadata{
						Projection: []expr.Expression{expr.Property(k, "name", expr.String)},
						Sources:    []*expr.Path{k},
						Where:      expr.Predicate(expr.OpGt, expr.Property(k, "age", expr.Integer), age),
					})),
				),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := serialize.New(d)
			for _, forCount := range []bool{false, true} {
				text, constants, err := s.SerializeQuery(tc.meta, forCount)
				require.NoError(t, err)

				report, err := c.Verify(context.Background(), text, constants)
				require.NoError(t, err, text)
				assert.Equal(t, len(constants), report.Placeholders)
				assert.Equal(t, report.Placeholders, d.CountPlaceholders(text))
			}
		})
	}
}

func TestVerify_Mismatch(t *testing.T) {
	c := openChecker(t)

	report, err := c.Verify(context.Background(), "select name from cat where age > ? and name = ?", []any{1})
	require.Error(t, err)
	assert.True(t, IsMismatch(err))
	assert.Equal(t, 2, report.Placeholders)
	assert.Equal(t, 1, report.Constants)
}

func TestVerify_PrepareErrors(t *testing.T) {
	c := openChecker(t)

	_, err := c.Verify(context.Background(), "select name from dog", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such table")

	_, err = c.Verify(context.Background(), "select from where", nil)
	assert.Error(t, err)
}
