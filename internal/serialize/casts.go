package serialize

import "github.com/roach88/exprql/internal/expr"

var castAccessors = map[expr.Kind]string{
	expr.KindByte:    "byteValue",
	expr.KindShort:   "shortValue",
	expr.KindInteger: "intValue",
	expr.KindLong:    "longValue",
	expr.KindFloat:   "floatValue",
	expr.KindDouble:  "doubleValue",
	expr.KindString:  "toString",
}

// visitCast synthesizes a host-language conversion. Numeric non-constant
// sources are boxed first so that the accessor exists on primitives.
//
//	STRING_CAST(cat.age)        -> new Integer(cat.getAge()).toString()
//	NUMCAST(cat.weight, Long)   -> new Double(cat.getWeight()).longValue()
func (s *Serializer) visitCast(o *expr.Operation) error {
	src := o.Arg(0)
	target := expr.String
	if o.Operator() == expr.OpNumCast {
		t, ok := castTarget(o.Arg(1))
		if !ok {
			return &UnsupportedCastError{Dialect: s.d.Name(), Target: o.Arg(1).String()}
		}
		target = t
	}
	accessor, ok := castAccessors[target.Kind]
	if !ok {
		return &UnsupportedCastError{Dialect: s.d.Name(), Target: target.Name}
	}

	_, constant := src.(*expr.Constant)
	if src.ResultType().IsNumeric() && !constant {
		s.buf.WriteString("new " + src.ResultType().Name + "(")
		if err := s.handle(src); err != nil {
			return err
		}
		s.buf.WriteByte(')')
	} else if err := s.handleReceiver(src); err != nil {
		return err
	}
	s.buf.WriteString("." + accessor + "()")
	return nil
}

func castTarget(e expr.Expression) (*expr.Type, bool) {
	c, ok := e.(*expr.Constant)
	if !ok {
		return nil, false
	}
	t, ok := c.Value().(*expr.Type)
	return t, ok && t != nil
}
