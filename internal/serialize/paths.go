package serialize

import (
	"unicode"

	"github.com/roach88/exprql/internal/dialect"
	"github.com/roach88/exprql/internal/entity"
	"github.com/roach88/exprql/internal/expr"
)

func (s *Serializer) visitPath(p *expr.Path) error {
	if p.PathType() == expr.PathProperty && s.d.PathStyle() == dialect.PathAccessor {
		return s.visitAccessor(p)
	}

	tmpl, err := s.d.Resolve(p.PathType().Operator())
	if err != nil {
		return err
	}
	args := []expr.Expression{p.Element()}
	if p.Parent() != nil {
		args = []expr.Expression{p.Parent(), p.Element()}
	}
	return s.render(tmpl, args, p.PathType().Operator(), true)
}

// visitAccessor renders a property path against the parent's declared
// members, trying in order:
//
//	parent.getName()               declared accessor ("is" for booleans)
//	parent.name                    declared field
//	Dynamic.getString(parent, "name")  runtime lookup
func (s *Serializer) visitAccessor(p *expr.Path) error {
	parent := p.Parent()
	name := p.Name()
	host := parent.ResultType().Host
	if host == nil {
		return &PathResolutionError{
			Dialect:  s.d.Name(),
			Path:     parent.String(),
			Property: name,
			Message:  "type " + parent.ResultType().Name + " has no member description",
		}
	}

	prefix := "get"
	if p.ResultType().Kind == expr.KindBoolean {
		prefix = "is"
	}
	accessor := prefix + entity.UpperFirst(name)

	switch {
	case host.HasAccessor(accessor):
		if err := s.handleReceiver(parent); err != nil {
			return err
		}
		s.buf.WriteString("." + accessor + "()")
	case host.HasField(name):
		if err := s.handleReceiver(parent); err != nil {
			return err
		}
		s.buf.WriteString("." + name)
	default:
		lit, err := s.d.Literal(name)
		if err != nil {
			return err
		}
		s.buf.WriteString(s.d.DynamicHelper() + "." + dynamicGetter(p.ResultType()) + "(")
		if err := s.handle(parent); err != nil {
			return err
		}
		s.buf.WriteString(", " + lit + ")")
	}
	return nil
}

// dynamicGetter names the reflective helper method for a property of type
// t: get<Type> for scalars and entities, plain get for containers and
// any type whose name is not an identifier.
func dynamicGetter(t *expr.Type) string {
	if t == nil || !isIdentifier(t.Name) {
		return "get"
	}
	switch t.Kind {
	case expr.KindArray, expr.KindCollection, expr.KindMap:
		return "get"
	}
	return "get" + t.Name
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if r != '_' && !unicode.IsLetter(r) && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}
	return s != ""
}
