package serialize

import (
	"github.com/roach88/exprql/internal/expr"
)

// SerializeQuery renders a complete query. With forCount set the
// projection is replaced by the dialect's COUNT_ALL rendering and ordering
// and paging are dropped.
//
//	select c.name from cat c where c.age > ? order by c.name asc limit ?
func (s *Serializer) SerializeQuery(m *expr.Metadata, forCount bool) (string, []any, error) {
	s.reset()
	if err := m.Validate(); err != nil {
		return "", nil, err
	}
	if err := s.writeMetadata(m, forCount); err != nil {
		return "", nil, err
	}
	return s.finish("query")
}

func (s *Serializer) writeMetadata(m *expr.Metadata, forCount bool) error {
	s.buf.WriteString("select ")
	if err := s.writeProjection(m, forCount); err != nil {
		return err
	}

	s.buf.WriteString(" from ")
	for i, src := range m.Sources {
		if i > 0 {
			s.buf.WriteString(", ")
		}
		if err := s.writeSource(src); err != nil {
			return err
		}
	}

	if m.Where != nil {
		s.buf.WriteString(" where ")
		if err := s.handle(m.Where); err != nil {
			return err
		}
	}
	if len(m.GroupBy) > 0 {
		s.buf.WriteString(" group by ")
		if err := s.writeList(m.GroupBy); err != nil {
			return err
		}
	}
	if m.Having != nil {
		s.buf.WriteString(" having ")
		if err := s.handle(m.Having); err != nil {
			return err
		}
	}
	if forCount {
		return nil
	}

	if len(m.OrderBy) > 0 {
		s.buf.WriteString(" order by ")
		for i, o := range m.OrderBy {
			if i > 0 {
				s.buf.WriteString(", ")
			}
			if err := s.handle(o.Target); err != nil {
				return err
			}
			if o.Desc {
				s.buf.WriteString(" desc")
			} else {
				s.buf.WriteString(" asc")
			}
		}
	}
	if err := s.writeModifier(expr.OpLimit, m.Limit); err != nil {
		return err
	}
	return s.writeModifier(expr.OpOffset, m.Offset)
}

func (s *Serializer) writeProjection(m *expr.Metadata, forCount bool) error {
	if !forCount {
		if m.Distinct {
			s.buf.WriteString("distinct ")
		}
		return s.writeList(m.Projection)
	}

	if m.Distinct {
		s.buf.WriteString("count(distinct ")
		if err := s.writeList(m.Projection); err != nil {
			return err
		}
		s.buf.WriteByte(')')
		return nil
	}
	tmpl, err := s.d.Resolve(expr.OpCountAll)
	if err != nil {
		return err
	}
	var args []expr.Expression
	if tmpl.MaxIndex() >= 0 {
		args = []expr.Expression{m.Sources[0]}
	}
	return s.render(tmpl, args, expr.OpCountAll, false)
}

// writeSource renders "<entity> <alias>". Relational dialects name the
// table; object dialects name the entity type.
func (s *Serializer) writeSource(src *expr.Path) error {
	t := src.ResultType()
	if s.d.Relational() {
		table := t.Table
		if table == "" {
			table = t.Name
		}
		s.buf.WriteString(s.d.QuoteIdentifier(table))
	} else {
		s.buf.WriteString(t.Name)
	}
	s.buf.WriteByte(' ')
	return s.visitPath(src)
}

// writeModifier renders limit or offset when the dialect supports it.
func (s *Serializer) writeModifier(op expr.Operator, n *int64) error {
	if n == nil || !s.d.Supports(op) {
		return nil
	}
	tmpl, err := s.d.Resolve(op)
	if err != nil {
		return err
	}
	s.buf.WriteByte(' ')
	return s.render(tmpl, []expr.Expression{expr.NewConstant(*n)}, op, false)
}
