package serialize

import (
	"github.com/roach88/exprql/internal/expr"
	"github.com/roach88/exprql/internal/template"
)

// Temporal comparisons between numeric operands render as plain
// comparisons in every dialect.
var numericComparisons = map[expr.Operator]struct {
	op   expr.Operator
	tmpl *template.Template
}{
	expr.OpAfter:  {expr.OpGt, template.MustParse("{0} > {1}")},
	expr.OpBefore: {expr.OpLt, template.MustParse("{0} < {1}")},
	expr.OpAoe:    {expr.OpGoe, template.MustParse("{0} >= {1}")},
	expr.OpBoe:    {expr.OpLoe, template.MustParse("{0} <= {1}")},
}

func (s *Serializer) visitOperation(o *expr.Operation) error {
	op := o.Operator()
	args := o.Args()

	if cmp, ok := numericComparisons[op]; ok && args[0].ResultType().IsNumeric() && args[1].ResultType().IsNumeric() {
		return s.render(cmp.tmpl, args, cmp.op, false)
	}

	if (op == expr.OpStringCast || op == expr.OpNumCast) && s.d.HostCasts() {
		return s.visitCast(o)
	}

	if lowered, ok := s.lowerLike(op, args); ok {
		args = lowered
	}

	if _, max := op.Arity(); max == expr.Variadic && len(args) > 2 {
		return s.handle(foldLeft(o.ResultType(), op, args))
	}

	tmpl, err := s.d.Resolve(op)
	if err != nil {
		return err
	}
	return s.render(tmpl, args, op, false)
}

// foldLeft turns op(a, b, c) into op(op(a, b), c).
func foldLeft(t *expr.Type, op expr.Operator, args []expr.Expression) expr.Expression {
	acc := args[0]
	for _, a := range args[1:] {
		acc = expr.MustOperation(t, op, acc, a)
	}
	return acc
}

// lowerLike rewrites the pattern operand of the string predicates into a
// LIKE pattern for dialects with a LIKE escape character. Constant
// patterns are escaped; other operands are concatenated with wildcards.
func (s *Serializer) lowerLike(op expr.Operator, args []expr.Expression) ([]expr.Expression, bool) {
	if s.d.EscapeChar() == 0 {
		return nil, false
	}
	if op != expr.OpStartsWith && op != expr.OpEndsWith && op != expr.OpStringContains {
		return nil, false
	}

	var pattern expr.Expression
	if c, ok := args[1].(*expr.Constant); ok {
		str, isString := c.Value().(string)
		if !isString {
			return nil, false
		}
		escaped := s.d.EscapeLike(str)
		switch op {
		case expr.OpStartsWith:
			escaped += "%"
		case expr.OpEndsWith:
			escaped = "%" + escaped
		default:
			escaped = "%" + escaped + "%"
		}
		pattern = expr.TypedConstant(expr.String, escaped)
	} else {
		wildcard := expr.TypedConstant(expr.String, "%")
		switch op {
		case expr.OpStartsWith:
			pattern = expr.MustOperation(expr.String, expr.OpConcat, args[1], wildcard)
		case expr.OpEndsWith:
			pattern = expr.MustOperation(expr.String, expr.OpConcat, wildcard, args[1])
		default:
			pattern = expr.MustOperation(expr.String, expr.OpConcat,
				expr.MustOperation(expr.String, expr.OpConcat, wildcard, args[1]), wildcard)
		}
	}
	return []expr.Expression{args[0], pattern}, true
}
