package scenario

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/exprql/internal/entity"
	"github.com/roach88/exprql/internal/expr"
	"github.com/roach88/exprql/internal/template"
)

// Built is a scenario turned into expression IR.
type Built struct {
	Expression expr.Expression
	Query      *expr.Metadata
	ForCount   bool
}

type builder struct {
	s     *Scenario
	types map[string]*expr.Type
	vars  map[string]*expr.Path
}

// Build turns the scenario's nodes into expression IR. Construction
// invariants are enforced by the expr constructors, so an invalid tree is
// reported here rather than at serialization.
func (s *Scenario) Build() (*Built, error) {
	b := &builder{s: s, types: map[string]*expr.Type{}, vars: map[string]*expr.Path{}}
	for name, def := range s.Entities {
		b.types[name] = expr.EntityType(name, entity.NewDescriptor(def.Accessors, def.Fields)).WithTable(def.Table)
	}
	for name, typ := range s.Vars {
		t, err := b.resolveType(typ)
		if err != nil {
			return nil, fmt.Errorf("var %s: %w", name, err)
		}
		b.vars[name] = expr.Root(t, name)
	}

	if s.Query != nil {
		m, err := b.query(s.Query)
		if err != nil {
			return nil, err
		}
		return &Built{Query: m, ForCount: s.Query.Count}, nil
	}
	e, err := b.node(s.Expression)
	if err != nil {
		return nil, err
	}
	return &Built{Expression: e}, nil
}

func (b *builder) resolveType(name string) (*expr.Type, error) {
	if t, ok := b.types[name]; ok {
		return t, nil
	}
	if t, ok := expr.LookupType(name); ok {
		return t, nil
	}
	if elem, ok := strings.CutSuffix(name, "[]"); ok {
		if t, ok := b.types[elem]; ok {
			return expr.CollectionOf(t), nil
		}
	}
	return nil, fmt.Errorf("unknown type %q", name)
}

func (b *builder) optionalType(name string) (*expr.Type, error) {
	if name == "" {
		return nil, nil
	}
	return b.resolveType(name)
}

func (b *builder) node(n *Node) (expr.Expression, error) {
	if n == nil {
		return nil, fmt.Errorf("missing expression node")
	}
	typ, err := b.optionalType(n.Type)
	if err != nil {
		return nil, err
	}

	switch {
	case n.Path != "":
		return b.path(n.Path)
	case n.Const != nil:
		return b.constant(n.Const, typ)
	case n.Null:
		return expr.Null(typ), nil
	case n.Class != "":
		t, err := b.resolveType(n.Class)
		if err != nil {
			return nil, err
		}
		return expr.NewConstant(t), nil
	case n.Op != "":
		return b.operation(n, typ)
	case n.Template != "":
		args, err := b.nodes(n.Args)
		if err != nil {
			return nil, err
		}
		if typ == nil {
			typ = expr.Object
		}
		return b.template(n.Template, typ, args)
	case n.Factory != "":
		return b.factory(n)
	case n.Array != "":
		elem, err := b.resolveType(n.Array)
		if err != nil {
			return nil, err
		}
		args, err := b.nodes(n.Args)
		if err != nil {
			return nil, err
		}
		return expr.NewArrayConstructor(expr.ArrayOf(elem), args...)
	case n.Elem != nil:
		return b.elem(n.Elem)
	case n.Any != nil:
		parent, err := b.node(n.Any)
		if err != nil {
			return nil, err
		}
		t := expr.Object
		if elem := parent.ResultType().Elem; elem != nil {
			t = elem
		}
		return expr.CollectionAny(parent, t), nil
	case n.SubQuery != nil:
		m, err := b.query(n.SubQuery)
		if err != nil {
			return nil, err
		}
		return expr.NewSubQuery(typ, m)
	}
	return nil, fmt.Errorf("expression node has no form")
}

func (b *builder) nodes(ns []*Node) ([]expr.Expression, error) {
	out := make([]expr.Expression, 0, len(ns))
	for i, n := range ns {
		e, err := b.node(n)
		if err != nil {
			return nil, fmt.Errorf("arg %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// path resolves "var.prop.prop" against the declared vars and entity
// property types.
func (b *builder) path(ref string) (expr.Expression, error) {
	parts := strings.Split(ref, ".")
	root, ok := b.vars[parts[0]]
	if !ok {
		return nil, fmt.Errorf("path %s: unknown variable %q", ref, parts[0])
	}
	var cur expr.Expression = root
	for _, prop := range parts[1:] {
		t := expr.Object
		if def, ok := b.s.Entities[cur.ResultType().Name]; ok {
			if typeName, ok := def.Properties[prop]; ok {
				resolved, err := b.resolveType(typeName)
				if err != nil {
					return nil, fmt.Errorf("path %s: %w", ref, err)
				}
				t = resolved
			}
		}
		p, err := expr.NewPath(t, expr.PathMetadata{
			Parent:  cur,
			Element: expr.NewConstant(prop),
			Type:    expr.PathProperty,
		})
		if err != nil {
			return nil, fmt.Errorf("path %s: %w", ref, err)
		}
		cur = p
	}
	return cur, nil
}

func (b *builder) elem(e *Elem) (expr.Expression, error) {
	parent, err := b.node(e.Of)
	if err != nil {
		return nil, err
	}
	index, err := b.node(e.Index)
	if err != nil {
		return nil, err
	}
	t, err := b.optionalType(e.Type)
	if err != nil {
		return nil, err
	}
	if t == nil {
		t = expr.Object
		if elem := parent.ResultType().Elem; elem != nil {
			t = elem
		}
	}
	switch e.Kind {
	case "list":
		return expr.ListValue(parent, index, t), nil
	case "map":
		return expr.MapValue(parent, index, t), nil
	case "array":
		return expr.ArrayValue(parent, index, t), nil
	}
	return nil, fmt.Errorf("elem: unknown kind %q", e.Kind)
}

func (b *builder) operation(n *Node, typ *expr.Type) (expr.Expression, error) {
	op, ok := expr.LookupOperator(n.Op)
	if !ok {
		return nil, fmt.Errorf("unknown operator %q", n.Op)
	}
	args, err := b.nodes(n.Args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if typ == nil {
		typ = resultType(op, args)
	}
	return expr.NewOperation(typ, op, args...)
}

// resultType infers the result type of op when the scenario omits it.
func resultType(op expr.Operator, args []expr.Expression) *expr.Type {
	switch op {
	case expr.OpStringCast, expr.OpConcat, expr.OpLower, expr.OpUpper, expr.OpTrim,
		expr.OpSubstr1Arg, expr.OpSubstr2Args:
		return expr.String
	case expr.OpNumCast:
		if len(args) == 2 {
			if c, ok := args[1].(*expr.Constant); ok {
				if t, ok := c.Value().(*expr.Type); ok {
					return t
				}
			}
		}
	case expr.OpCount, expr.OpCountAll:
		return expr.Long
	case expr.OpLength, expr.OpColSize:
		return expr.Integer
	case expr.OpExists:
		return expr.Boolean
	}
	if p := op.Precedence(); p > 0 && p <= expr.OpEq.Precedence() {
		return expr.Boolean
	}
	if len(args) > 0 {
		return args[0].ResultType()
	}
	return expr.Object
}

func (b *builder) template(pattern string, typ *expr.Type, args []expr.Expression) (expr.Expression, error) {
	tmpl, err := template.Parse(pattern)
	if err != nil {
		return nil, err
	}
	return expr.NewTemplate(typ, tmpl, args...)
}

// factory builds a projection whose instances are field maps of the
// target entity, filled in declaration order.
func (b *builder) factory(n *Node) (expr.Expression, error) {
	target, err := b.resolveType(n.Factory)
	if err != nil {
		return nil, err
	}
	args, err := b.nodes(n.Args)
	if err != nil {
		return nil, err
	}
	fields := b.s.Entities[n.Factory].Fields
	construct := func(values ...any) (any, error) {
		if len(values) != len(fields) {
			return nil, fmt.Errorf("%s has %d field(s), got %d value(s)", n.Factory, len(fields), len(values))
		}
		out := make(map[string]any, len(fields))
		for i, f := range fields {
			out[f] = values[i]
		}
		return out, nil
	}
	return expr.NewProjection(target, construct, args...)
}

func (b *builder) query(q *Query) (*expr.Metadata, error) {
	m := &expr.Metadata{Distinct: q.Distinct, Limit: q.Limit, Offset: q.Offset}
	var err error
	if m.Projection, err = b.nodes(q.Select); err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	for _, name := range q.From {
		v, ok := b.vars[name]
		if !ok {
			return nil, fmt.Errorf("from: unknown variable %q", name)
		}
		m.Sources = append(m.Sources, v)
	}
	if q.Where != nil {
		if m.Where, err = b.node(q.Where); err != nil {
			return nil, fmt.Errorf("where: %w", err)
		}
	}
	if m.GroupBy, err = b.nodes(q.GroupBy); err != nil {
		return nil, fmt.Errorf("group_by: %w", err)
	}
	if q.Having != nil {
		if m.Having, err = b.node(q.Having); err != nil {
			return nil, fmt.Errorf("having: %w", err)
		}
	}
	for i, o := range q.OrderBy {
		target, err := b.node(o.Expr)
		if err != nil {
			return nil, fmt.Errorf("order_by %d: %w", i, err)
		}
		m.OrderBy = append(m.OrderBy, expr.Order{Target: target, Desc: o.Desc})
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (b *builder) constant(n *yaml.Node, typ *expr.Type) (expr.Expression, error) {
	var raw any
	if err := n.Decode(&raw); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	if typ == nil {
		return expr.NewConstant(raw), nil
	}
	if list, ok := raw.([]any); ok {
		out := make([]any, len(list))
		for i, item := range list {
			v, err := convert(item, typ)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", n.Line, err)
			}
			out[i] = v
		}
		return expr.TypedConstant(expr.CollectionOf(typ), out), nil
	}
	v, err := convert(raw, typ)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return expr.TypedConstant(typ, v), nil
}

// convert coerces a decoded YAML scalar to the Go representation of t.
func convert(v any, t *expr.Type) (any, error) {
	switch t.Kind {
	case expr.KindByte, expr.KindShort, expr.KindInteger, expr.KindLong:
		n, ok := v.(int)
		if !ok {
			return nil, fmt.Errorf("%v is not an integer", v)
		}
		switch t.Kind {
		case expr.KindByte:
			return int8(n), nil
		case expr.KindShort:
			return int16(n), nil
		case expr.KindInteger:
			return int32(n), nil
		}
		return int64(n), nil
	case expr.KindFloat, expr.KindDouble:
		var f float64
		switch x := v.(type) {
		case int:
			f = float64(x)
		case float64:
			f = x
		default:
			return nil, fmt.Errorf("%v is not a number", v)
		}
		if t.Kind == expr.KindFloat {
			return float32(f), nil
		}
		return f, nil
	case expr.KindBigDecimal:
		f, ok := new(big.Float).SetString(fmt.Sprint(v))
		if !ok {
			return nil, fmt.Errorf("%v is not a decimal", v)
		}
		return f, nil
	case expr.KindString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%v is not a string", v)
		}
		return s, nil
	case expr.KindBoolean:
		on, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%v is not a bool", v)
		}
		return on, nil
	case expr.KindDate:
		switch x := v.(type) {
		case time.Time:
			return x, nil
		case string:
			return time.Parse(time.RFC3339, x)
		}
		return nil, fmt.Errorf("%v is not a timestamp", v)
	}
	return v, nil
}
