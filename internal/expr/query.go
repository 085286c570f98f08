package expr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyProjection is returned for query metadata without a projection.
	ErrEmptyProjection = errors.New("query projection is empty")

	// ErrNoSources is returned for query metadata without sources.
	ErrNoSources = errors.New("query has no sources")
)

// Order is one ordering term of a query.
type Order struct {
	Target Expression
	Desc   bool
}

// Metadata is the body of a query: what to select, from where, under which
// conditions.
//
// Semantics:
//
//	select [distinct] <Projection> from <Sources>
//	[where <Where>] [group by <GroupBy>] [having <Having>]
//	[order by <OrderBy>] [limit <Limit>] [offset <Offset>]
//
// Sources are root variables; their result types name the entity (and its
// table) being queried.
type Metadata struct {
	Distinct   bool
	Projection []Expression
	Sources    []*Path
	Where      Expression // nil = no filter
	GroupBy    []Expression
	Having     Expression // nil = no group filter
	OrderBy    []Order
	Limit      *int64
	Offset     *int64
}

// Validate checks that the metadata describes a complete query.
func (m *Metadata) Validate() error {
	if m == nil {
		return ErrEmptyProjection
	}
	if len(m.Projection) == 0 {
		return ErrEmptyProjection
	}
	if len(m.Sources) == 0 {
		return ErrNoSources
	}
	for i, s := range m.Sources {
		if s == nil || !s.IsRoot() {
			return &PathError{PathType: PathVariable, Message: fmt.Sprintf("source %d is not a root variable", i)}
		}
	}
	return nil
}

// SubQuery is a nested query used as an expression.
type SubQuery struct {
	typ  *Type
	meta *Metadata
}

func (*SubQuery) expressionNode() {}

// NewSubQuery creates a sub-query expression after validating meta.
func NewSubQuery(t *Type, meta *Metadata) (*SubQuery, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if t == nil {
		t = meta.Projection[0].ResultType()
	}
	return &SubQuery{typ: t, meta: meta}, nil
}

// MustSubQuery is like NewSubQuery but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSubQuery(t *Type, meta *Metadata) *SubQuery {
	sq, err := NewSubQuery(t, meta)
	if err != nil {
		panic(err)
	}
	return sq
}

// ResultType implements Expression.
func (sq *SubQuery) ResultType() *Type { return sq.typ }

// Metadata returns the query body. It must not be modified.
func (sq *SubQuery) Metadata() *Metadata { return sq.meta }

// String implements Expression.
func (sq *SubQuery) String() string {
	var b strings.Builder
	b.WriteString("subquery(select ")
	b.WriteString(joinStrings(sq.meta.Projection))
	b.WriteString(" from ")
	for i, s := range sq.meta.Sources {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.String())
	}
	if sq.meta.Where != nil {
		b.WriteString(" where ")
		b.WriteString(sq.meta.Where.String())
	}
	b.WriteString(")")
	return b.String()
}
