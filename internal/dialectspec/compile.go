package dialectspec

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/exprql/internal/dialect"
	"github.com/roach88/exprql/internal/expr"
)

type definition struct {
	name  string
	base  string
	value cue.Value
}

// CompileString compiles CUE source and registers the dialects it
// defines.
func CompileString(src string, reg *dialect.Registry) ([]*dialect.Dialect, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	return Compile(v, reg)
}

// Compile builds every dialect under the top-level "dialect" struct of v
// and registers it in reg. A dialect may extend a built-in, an already
// registered dialect, or another dialect of the same document regardless
// of declaration order.
//
// Registration is all or nothing: if any dialect fails to build, reg is
// left unchanged. The returned dialects are in build order.
func Compile(v cue.Value, reg *dialect.Registry) ([]*dialect.Dialect, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	root := v.LookupPath(cue.ParsePath("dialect"))
	if !root.Exists() {
		return nil, &CompileError{Field: "dialect", Message: "no dialects defined", Pos: v.Pos()}
	}
	iter, err := root.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var pending []definition
	for iter.Next() {
		def := definition{name: iter.Selector().Unquoted(), value: iter.Value()}
		base, _, err := optionalString(def.value, def.name, "base")
		if err != nil {
			return nil, err
		}
		def.base = base
		pending = append(pending, def)
	}

	// Build in rounds: each round builds every definition whose base is
	// available. A round without progress means a missing base or a cycle.
	bases := &scope{reg: reg, built: make(map[string]*dialect.Dialect, len(pending))}
	var built []*dialect.Dialect
	for len(pending) > 0 {
		var next []definition
		for _, def := range pending {
			if def.base != "" && !bases.has(def.base) {
				next = append(next, def)
				continue
			}
			d, err := compileDialect(def, reg, bases)
			if err != nil {
				return nil, err
			}
			bases.built[def.name] = d
			built = append(built, d)
		}
		if len(next) == len(pending) {
			return nil, unresolvedBase(next)
		}
		pending = next
	}

	for _, d := range built {
		reg.Register(d)
	}
	return built, nil
}

// scope resolves base dialects: first among the dialects built from the
// current document, then in the registry.
type scope struct {
	reg   *dialect.Registry
	built map[string]*dialect.Dialect
}

func (s *scope) get(name string) (*dialect.Dialect, error) {
	if d, ok := s.built[name]; ok {
		return d, nil
	}
	return s.reg.Get(name)
}

func (s *scope) has(name string) bool {
	_, err := s.get(name)
	return err == nil
}

func unresolvedBase(defs []definition) error {
	sort.Slice(defs, func(i, j int) bool { return defs[i].name < defs[j].name })
	def := defs[0]
	return &CompileError{
		Field:   field(def.name, "base"),
		Message: fmt.Sprintf("unknown or cyclic base dialect %q", def.base),
		Pos:     def.value.LookupPath(cue.ParsePath("base")).Pos(),
	}
}

func compileDialect(def definition, reg *dialect.Registry, bases *scope) (*dialect.Dialect, error) {
	v := def.value
	b := reg.Builder(def.name)
	if def.base != "" {
		base, err := bases.get(def.base)
		if err != nil {
			return nil, err
		}
		b.Extend(base)
	}

	if s, ok, err := optionalString(v, def.name, "quote"); err != nil {
		return nil, err
	} else if ok {
		b.Quote(s)
	}
	if s, ok, err := optionalString(v, def.name, "escape"); err != nil {
		return nil, err
	} else if ok {
		r, err := escapeRune(s)
		if err != nil {
			return nil, fieldError(v, def.name, "escape", err)
		}
		b.Escape(r)
	}
	if s, ok, err := optionalString(v, def.name, "dynamic_helper"); err != nil {
		return nil, err
	} else if ok {
		b.DynamicHelper(s)
	}

	flags := []struct {
		name string
		set  func(bool) *dialect.Builder
	}{
		{"quote_identifiers", b.QuoteIdentifiers},
		{"native_merge", b.NativeMerge},
		{"sub_queries", b.SubQueries},
		{"host_casts", b.HostCasts},
	}
	for _, f := range flags {
		on, ok, err := optionalBool(v, def.name, f.name)
		if err != nil {
			return nil, err
		}
		if ok {
			f.set(on)
		}
	}

	if err := applyStyles(b, v, def.name); err != nil {
		return nil, err
	}
	if err := applyTypeNames(b, v, def.name); err != nil {
		return nil, err
	}
	if err := applyTemplates(b, v, def.name); err != nil {
		return nil, err
	}

	d, err := b.Build()
	if err != nil {
		return nil, &CompileError{Field: field(def.name, "templates"), Message: err.Error(), Pos: v.Pos()}
	}
	return d, nil
}

func applyStyles(b *dialect.Builder, v cue.Value, name string) error {
	if s, ok, err := optionalString(v, name, "path_style"); err != nil {
		return err
	} else if ok {
		style, err := dialect.ParsePathStyle(s)
		if err != nil {
			return fieldError(v, name, "path_style", err)
		}
		b.PathStyle(style)
	}
	if s, ok, err := optionalString(v, name, "factory_style"); err != nil {
		return err
	} else if ok {
		style, err := dialect.ParseFactoryStyle(s)
		if err != nil {
			return fieldError(v, name, "factory_style", err)
		}
		b.FactoryStyle(style)
	}
	if s, ok, err := optionalString(v, name, "placeholder"); err != nil {
		return err
	} else if ok {
		style, err := dialect.ParsePlaceholderStyle(s)
		if err != nil {
			return fieldError(v, name, "placeholder", err)
		}
		b.Placeholder(style)
	}
	if s, ok, err := optionalString(v, name, "literals"); err != nil {
		return err
	} else if ok {
		style, err := dialect.ParseLiteralStyle(s)
		if err != nil {
			return fieldError(v, name, "literals", err)
		}
		b.Literals(style)
	}
	return nil
}

func applyTypeNames(b *dialect.Builder, v cue.Value, name string) error {
	return eachString(v, name, "type_names", func(key, rendered string, _ cue.Value) error {
		b.TypeName(key, rendered)
		return nil
	})
}

func applyTemplates(b *dialect.Builder, v cue.Value, name string) error {
	return eachString(v, name, "templates", func(key, pattern string, fv cue.Value) error {
		op, ok := expr.LookupOperator(key)
		if !ok {
			return &CompileError{
				Field:   field(name, "templates."+key),
				Message: fmt.Sprintf("unknown operator %q", key),
				Pos:     fv.Pos(),
			}
		}
		b.Template(op, pattern)
		return nil
	})
}

// eachString calls fn for every string field of the struct at key.
func eachString(v cue.Value, name, key string, fn func(label, s string, fv cue.Value) error) error {
	sv := v.LookupPath(cue.ParsePath(key))
	if !sv.Exists() {
		return nil
	}
	iter, err := sv.Fields()
	if err != nil {
		return fieldError(sv, name, key, fmt.Errorf("must be a struct"))
	}
	for iter.Next() {
		label := iter.Selector().Unquoted()
		s, err := iter.Value().String()
		if err != nil {
			return fieldError(iter.Value(), name, key+"."+label, fmt.Errorf("must be a string"))
		}
		if err := fn(label, s, iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

func optionalString(v cue.Value, name, key string) (string, bool, error) {
	fv := v.LookupPath(cue.ParsePath(key))
	if !fv.Exists() {
		return "", false, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", false, fieldError(fv, name, key, fmt.Errorf("must be a string"))
	}
	return s, true, nil
}

func optionalBool(v cue.Value, name, key string) (bool, bool, error) {
	fv := v.LookupPath(cue.ParsePath(key))
	if !fv.Exists() {
		return false, false, nil
	}
	on, err := fv.Bool()
	if err != nil {
		return false, false, fieldError(fv, name, key, fmt.Errorf("must be a bool"))
	}
	return on, true, nil
}

// escapeRune accepts a single character, or "" to disable LIKE lowering.
func escapeRune(s string) (rune, error) {
	switch utf8.RuneCountInString(s) {
	case 0:
		return 0, nil
	case 1:
		r, _ := utf8.DecodeRuneInString(s)
		return r, nil
	default:
		return 0, fmt.Errorf("escape must be a single character, got %q", s)
	}
}

func field(name, key string) string {
	return "dialect." + name + "." + key
}

func fieldError(v cue.Value, name, key string, err error) error {
	pos := v.Pos()
	if fv := v.LookupPath(cue.ParsePath(key)); fv.Exists() {
		pos = fv.Pos()
	}
	return &CompileError{Field: field(name, key), Message: err.Error(), Pos: pos}
}
