package expr

import (
	"fmt"
	"strings"

	"github.com/roach88/exprql/internal/template"
)

// Expression is a node of an expression tree.
//
// This is a sealed interface - only types in this package implement it.
// Renderers switch exhaustively over the concrete node types:
//
//	switch n := e.(type) {
//	case *Path:
//	case *Constant:
//	case *Operation:
//	case *TemplateExpr:
//	case *Projection:
//	case *ArrayConstructor:
//	case *SubQuery:
//	}
//
// Nodes are immutable once constructed and may be shared between trees
// and goroutines.
type Expression interface {
	// ResultType returns the static result type.
	ResultType() *Type

	// String returns the node's literal textual form. Templates append it
	// for {N!} references.
	String() string

	expressionNode() // Marker method - seals interface to this package
}

// Constant is a literal value. Serializers either bind it as a parameter
// or inline it, depending on dialect policy.
type Constant struct {
	typ   *Type
	value any
}

func (*Constant) expressionNode() {}

// NewConstant creates a constant whose type is inferred from v.
func NewConstant(v any) *Constant {
	return &Constant{typ: TypeOf(v), value: v}
}

// TypedConstant creates a constant with an explicit static type.
func TypedConstant(t *Type, v any) *Constant {
	if t == nil {
		t = TypeOf(v)
	}
	return &Constant{typ: t, value: v}
}

// Null creates a typed null constant.
func Null(t *Type) *Constant {
	return TypedConstant(t, nil)
}

// ResultType implements Expression.
func (c *Constant) ResultType() *Type { return c.typ }

// Value returns the constant's value.
func (c *Constant) Value() any { return c.value }

// String implements Expression. Types render as their name and factories
// as their target type name.
func (c *Constant) String() string {
	switch v := c.value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case *Type:
		return v.Name
	case Factory:
		return v.ResultType().Name
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(c.value)
}

// Operation applies an operator to an ordered operand list.
type Operation struct {
	typ  *Type
	op   Operator
	args []Expression
}

func (*Operation) expressionNode() {}

// NewOperation creates an operation after checking the operand count
// against the operator's arity class.
func NewOperation(t *Type, op Operator, args ...Expression) (*Operation, error) {
	if !op.Valid() || op.Virtual() {
		return nil, &ArityError{Operator: op, Got: len(args), Message: "operator cannot be used in an operation"}
	}
	if !op.AcceptsArity(len(args)) {
		min, max := op.Arity()
		return nil, &ArityError{Operator: op, Got: len(args), Min: min, Max: max}
	}
	for i, a := range args {
		if a == nil {
			return nil, &ArityError{Operator: op, Got: len(args), Message: fmt.Sprintf("operand %d is nil", i)}
		}
	}
	if t == nil {
		t = Object
	}
	return &Operation{typ: t, op: op, args: append([]Expression(nil), args...)}, nil
}

// MustOperation is like NewOperation but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustOperation(t *Type, op Operator, args ...Expression) *Operation {
	o, err := NewOperation(t, op, args...)
	if err != nil {
		panic(err)
	}
	return o
}

// Predicate creates a Boolean-typed operation, panicking on arity errors.
func Predicate(op Operator, args ...Expression) *Operation {
	return MustOperation(Boolean, op, args...)
}

// ResultType implements Expression.
func (o *Operation) ResultType() *Type { return o.typ }

// Operator returns the operation's operator.
func (o *Operation) Operator() Operator { return o.op }

// Args returns the operands. The returned slice must not be modified.
func (o *Operation) Args() []Expression { return o.args }

// Arg returns operand i.
func (o *Operation) Arg(i int) Expression { return o.args[i] }

// String implements Expression.
func (o *Operation) String() string {
	return o.op.String() + "(" + joinStrings(o.args) + ")"
}

// TemplateExpr is a custom fragment rendered from its own template with
// bound arguments.
type TemplateExpr struct {
	typ  *Type
	tmpl *template.Template
	args []Expression
}

func (*TemplateExpr) expressionNode() {}

// NewTemplate binds args to tmpl. Every argument index referenced by the
// template must exist.
func NewTemplate(t *Type, tmpl *template.Template, args ...Expression) (*TemplateExpr, error) {
	if err := tmpl.Bind(len(args)); err != nil {
		return nil, err
	}
	if t == nil {
		t = Object
	}
	return &TemplateExpr{typ: t, tmpl: tmpl, args: append([]Expression(nil), args...)}, nil
}

// MustTemplate parses pattern and binds args, panicking on error.
// Use only in tests or when inputs are known to be valid.
func MustTemplate(t *Type, pattern string, args ...Expression) *TemplateExpr {
	te, err := NewTemplate(t, template.MustParse(pattern), args...)
	if err != nil {
		panic(err)
	}
	return te
}

// ResultType implements Expression.
func (te *TemplateExpr) ResultType() *Type { return te.typ }

// Template returns the bound template.
func (te *TemplateExpr) Template() *template.Template { return te.tmpl }

// Args returns the bound arguments. The returned slice must not be modified.
func (te *TemplateExpr) Args() []Expression { return te.args }

// String implements Expression. Every reference renders as the argument's
// literal text.
func (te *TemplateExpr) String() string {
	var b strings.Builder
	for _, el := range te.tmpl.Elements() {
		if el.IsStatic() {
			b.WriteString(el.Text)
			continue
		}
		b.WriteString(te.args[el.Index].String())
	}
	return b.String()
}

func joinStrings(args []Expression) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}
