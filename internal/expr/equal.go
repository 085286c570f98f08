package expr

import "bytes"

// Equal reports whether a and b are structurally equal: same node kind,
// same static type, same operator or path metadata, and pairwise equal
// operands.
//
// Constants compare by their canonical value encoding: same Go type and
// same value, strings byte for byte. Factories embedded as constants
// compare by identity. Fingerprint agrees with Equal.
func Equal(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !sameType(a.ResultType(), b.ResultType()) {
		return false
	}

	switch x := a.(type) {
	case *Constant:
		y, ok := b.(*Constant)
		return ok && equalValues(x.value, y.value)
	case *Path:
		y, ok := b.(*Path)
		if !ok || x.meta.Type != y.meta.Type {
			return false
		}
		if x.meta.Type == PathDelegate {
			return Equal(x.meta.Parent, y.meta.Parent)
		}
		return Equal(x.meta.Parent, y.meta.Parent) && Equal(x.meta.Element, y.meta.Element)
	case *Operation:
		y, ok := b.(*Operation)
		return ok && x.op == y.op && equalAll(x.args, y.args)
	case *TemplateExpr:
		y, ok := b.(*TemplateExpr)
		return ok && x.tmpl.Pattern() == y.tmpl.Pattern() && equalAll(x.args, y.args)
	case *Projection:
		y, ok := b.(*Projection)
		return ok && equalAll(x.args, y.args)
	case *ArrayConstructor:
		y, ok := b.(*ArrayConstructor)
		return ok && equalAll(x.args, y.args)
	case *SubQuery:
		y, ok := b.(*SubQuery)
		return ok && equalMetadata(x.meta, y.meta)
	}
	return false
}

func equalAll(a, b []Expression) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalValues(a, b any) bool {
	return bytes.Equal(canonicalValue(a), canonicalValue(b))
}

func equalMetadata(a, b *Metadata) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Distinct != b.Distinct || !equalAll(a.Projection, b.Projection) || !equalAll(a.GroupBy, b.GroupBy) {
		return false
	}
	if len(a.Sources) != len(b.Sources) || len(a.OrderBy) != len(b.OrderBy) {
		return false
	}
	for i := range a.Sources {
		if !Equal(a.Sources[i], b.Sources[i]) {
			return false
		}
	}
	for i := range a.OrderBy {
		if a.OrderBy[i].Desc != b.OrderBy[i].Desc || !Equal(a.OrderBy[i].Target, b.OrderBy[i].Target) {
			return false
		}
	}
	return Equal(a.Where, b.Where) && Equal(a.Having, b.Having) &&
		equalInt64(a.Limit, b.Limit) && equalInt64(a.Offset, b.Offset)
}

func equalInt64(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
