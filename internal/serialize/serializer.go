package serialize

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/roach88/exprql/internal/dialect"
	"github.com/roach88/exprql/internal/expr"
	"github.com/roach88/exprql/internal/template"
)

// Serializer renders expression trees to query text for one dialect,
// collecting the constants that were replaced by placeholders.
//
// A Serializer is not safe for concurrent use. Each call to Serialize or
// SerializeQuery starts from an empty buffer, so one instance may be reused
// sequentially.
type Serializer struct {
	d         *dialect.Dialect
	logger    *slog.Logger
	buf       strings.Builder
	constants []any
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Serializer) { s.logger = l }
}

// New creates a serializer for d.
func New(d *dialect.Dialect, opts ...Option) *Serializer {
	s := &Serializer{d: d, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serialize renders e with a fresh serializer.
func Serialize(d *dialect.Dialect, e expr.Expression) (string, []any, error) {
	return New(d).Serialize(e)
}

// Dialect returns the dialect the serializer renders for.
func (s *Serializer) Dialect() *dialect.Dialect { return s.d }

// Serialize renders e and returns the text together with the constants in
// placeholder order. On error the partial output is discarded.
func (s *Serializer) Serialize(e expr.Expression) (string, []any, error) {
	s.reset()
	if err := s.handle(e); err != nil {
		return "", nil, err
	}
	return s.finish("expression")
}

func (s *Serializer) reset() {
	s.buf.Reset()
	s.constants = []any{}
}

func (s *Serializer) finish(what string) (string, []any, error) {
	text := s.buf.String()
	constants := s.constants
	s.logger.Debug(what+" serialized",
		"dialect", s.d.Name(),
		"length", len(text),
		"constants", len(constants),
	)
	return text, constants, nil
}

// handle dispatches on the node type. The switch is exhaustive over the
// expression node set.
func (s *Serializer) handle(e expr.Expression) error {
	switch n := e.(type) {
	case nil:
		return fmt.Errorf("cannot serialize nil expression")
	case *expr.Constant:
		return s.visitConstant(n)
	case *expr.Path:
		return s.visitPath(n)
	case *expr.Operation:
		return s.visitOperation(n)
	case *expr.TemplateExpr:
		return s.render(n.Template(), n.Args(), expr.OpInvalid, false)
	case *expr.Projection:
		return s.visitFactory(n)
	case *expr.ArrayConstructor:
		return s.visitFactory(n)
	case *expr.SubQuery:
		return s.visitSubQuery(n, false)
	default:
		return fmt.Errorf("unsupported expression type: %T", e)
	}
}

// visitConstant writes a placeholder and records the value, or writes a
// literal for dialects that inline constants. Type references always
// render as type names. Collection values expand to one placeholder per
// element in relational dialects and bind as a single value elsewhere; an
// empty collection has no relational rendering and is an error.
func (s *Serializer) visitConstant(c *expr.Constant) error {
	v := c.Value()
	if t, ok := v.(*expr.Type); ok {
		s.buf.WriteString(s.d.TypeName(t))
		return nil
	}
	if s.d.Relational() && isCollection(v) {
		rv := reflect.ValueOf(v)
		if rv.Len() == 0 {
			return &UnsupportedFeatureError{Dialect: s.d.Name(), Feature: "empty collection constants"}
		}
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				s.buf.WriteString(", ")
			}
			if err := s.writeValue(rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}
	return s.writeValue(v)
}

func (s *Serializer) writeValue(v any) error {
	if s.d.Placeholder() == dialect.PlaceholderInline {
		lit, err := s.d.Literal(v)
		if err != nil {
			return err
		}
		s.buf.WriteString(lit)
		return nil
	}
	s.buf.WriteString(s.d.PlaceholderFor(len(s.constants)))
	s.constants = append(s.constants, v)
	return nil
}

func isCollection(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.([]byte); ok {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// render writes tmpl with args substituted. parent is the operator the
// template belongs to and drives parenthesization of operation arguments.
// In path templates literal-text arguments are identifiers and are quoted
// when the dialect quotes identifiers.
func (s *Serializer) render(tmpl *template.Template, args []expr.Expression, parent expr.Operator, path bool) error {
	elems := tmpl.Elements()
	for i, el := range elems {
		if el.IsStatic() {
			s.buf.WriteString(el.Text)
			continue
		}
		if el.Index >= len(args) {
			return &template.MalformedError{
				Pattern: tmpl.Pattern(),
				Offset:  -1,
				Message: fmt.Sprintf("argument {%d} out of range for %d operand(s)", el.Index, len(args)),
			}
		}
		arg := args[el.Index]
		if el.AsText {
			text := s.literalText(arg)
			if path {
				text = s.d.QuoteIdentifier(text)
			}
			s.buf.WriteString(text)
			continue
		}

		prev, next := staticAround(elems, i)
		if sq, ok := arg.(*expr.SubQuery); ok {
			// "in ({1})" already supplies the parentheses.
			bare := strings.HasSuffix(prev, "(") && strings.HasPrefix(next, ")")
			if err := s.visitSubQuery(sq, bare); err != nil {
				return err
			}
			continue
		}
		wrap := needsParens(arg, parent, el.Index, prev, next, delimited(elems, i))
		if err := s.handleWrapped(arg, wrap); err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer) handleWrapped(e expr.Expression, wrap bool) error {
	if !wrap {
		return s.handle(e)
	}
	s.buf.WriteByte('(')
	if err := s.handle(e); err != nil {
		return err
	}
	s.buf.WriteByte(')')
	return nil
}

// handleReceiver renders e as the receiver of a member access.
func (s *Serializer) handleReceiver(e expr.Expression) error {
	op, ok := e.(*expr.Operation)
	return s.handleWrapped(e, ok && op.Operator().Precedence() > 0)
}

// literalText is the text a {N!} reference appends.
func (s *Serializer) literalText(e expr.Expression) string {
	if c, ok := e.(*expr.Constant); ok {
		if t, ok := c.Value().(*expr.Type); ok {
			return s.d.TypeName(t)
		}
	}
	return e.String()
}

func staticAround(elems []template.Element, i int) (prev, next string) {
	if i > 0 && elems[i-1].IsStatic() {
		prev = elems[i-1].Text
	}
	if i+1 < len(elems) && elems[i+1].IsStatic() {
		next = elems[i+1].Text
	}
	return prev, next
}

// delimited reports whether element i stands alone in an argument list:
// preceded by "(" or "," or the start of the template, and followed by ")"
// or "," or the end of the template.
func delimited(elems []template.Element, i int) bool {
	prev, next := staticAround(elems, i)
	left := strings.TrimRight(prev, " ")
	right := strings.TrimLeft(next, " ")
	opens := i == 0 || strings.HasSuffix(left, "(") || strings.HasSuffix(left, ",")
	closes := i == len(elems)-1 || strings.HasPrefix(right, ")") || strings.HasPrefix(right, ",")
	return opens && closes
}

// needsParens decides whether an argument in operand position index of
// parent must be parenthesized.
//
// Operations are wrapped when they bind looser than their parent, when
// they appear right of an operator of equal precedence (unless both are
// the same associative operator), when they are the receiver of a member
// access, and when they follow a prefix "!". Parents without a precedence
// (function-style operators and raw templates) wrap every operand that is
// not delimited like a function argument, since the surrounding text may
// be arithmetic or a prefix cast.
func needsParens(arg expr.Expression, parent expr.Operator, index int, prev, next string, delimited bool) bool {
	child, ok := arg.(*expr.Operation)
	if !ok {
		return false
	}
	cp := child.Operator().Precedence()
	if cp == 0 {
		return false
	}
	if strings.HasPrefix(next, ".") || strings.HasSuffix(prev, "!") {
		return true
	}
	pp := parent.Precedence()
	if pp == 0 {
		return !delimited
	}
	if cp < pp {
		return true
	}
	if cp == pp && index > 0 {
		return !(child.Operator() == parent && parent.Associative())
	}
	return false
}

// visitSubQuery renders a nested query. bare omits the surrounding
// parentheses when the template already provides them.
func (s *Serializer) visitSubQuery(sq *expr.SubQuery, bare bool) error {
	if !s.d.SubQueries() {
		return &UnsupportedFeatureError{Dialect: s.d.Name(), Feature: "sub-queries"}
	}
	if err := sq.Metadata().Validate(); err != nil {
		return err
	}
	if !bare {
		s.buf.WriteByte('(')
	}
	if err := s.writeMetadata(sq.Metadata(), false); err != nil {
		return err
	}
	if !bare {
		s.buf.WriteByte(')')
	}
	return nil
}

// visitFactory renders a projection or array constructor in the
// dialect's factory style.
func (s *Serializer) visitFactory(f expr.Factory) error {
	switch s.d.FactoryStyle() {
	case dialect.FactoryNewInstance:
		if err := s.writeValue(f); err != nil {
			return err
		}
		s.buf.WriteString(".newInstance(")
		if err := s.writeList(f.Args()); err != nil {
			return err
		}
		s.buf.WriteByte(')')
	case dialect.FactoryConstructor:
		if ac, ok := f.(*expr.ArrayConstructor); ok {
			s.buf.WriteString("new " + ac.ElementType().Name + "[]{")
			if err := s.writeList(f.Args()); err != nil {
				return err
			}
			s.buf.WriteByte('}')
			return nil
		}
		s.buf.WriteString("new " + f.ResultType().Name + "(")
		if err := s.writeList(f.Args()); err != nil {
			return err
		}
		s.buf.WriteByte(')')
	default:
		return s.writeList(f.Args())
	}
	return nil
}

func (s *Serializer) writeList(args []expr.Expression) error {
	for i, a := range args {
		if i > 0 {
			s.buf.WriteString(", ")
		}
		if err := s.handle(a); err != nil {
			return err
		}
	}
	return nil
}
