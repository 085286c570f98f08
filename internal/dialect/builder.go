package dialect

import (
	"errors"
	"fmt"

	"github.com/roach88/exprql/internal/expr"
	"github.com/roach88/exprql/internal/template"
)

type override struct {
	op      expr.Operator
	pattern string
}

// Builder assembles an immutable Dialect from a base and a list of
// overrides. Setters return the builder for chaining; errors surface from
// Build.
//
//	d, err := NewBuilder("h2", cache).
//		Extend(sql).
//		NativeMerge(true).
//		Template(expr.OpRound, "round({0},0)").
//		Build()
type Builder struct {
	cache     *template.Cache
	d         Dialect
	overrides []override
	typeNames map[string]string
}

// NewBuilder starts a dialect with SQL-like defaults: "?" placeholders,
// dotted paths, flattened factories, no base. Patterns are parsed through
// cache; a nil cache parses without memoization.
func NewBuilder(name string, cache *template.Cache) *Builder {
	return &Builder{
		cache: cache,
		d: Dialect{
			name:          name,
			quote:         `"`,
			escape:        '\\',
			placeholder:   PlaceholderQuestion,
			pathStyle:     PathDotted,
			factoryStyle:  FactoryFlatten,
			literals:      LiteralSQL,
			dynamicHelper: "Dynamic",
		},
		typeNames: map[string]string{},
	}
}

// Extend makes base the fallback for unresolved operators and copies its
// settings as the starting point for this dialect.
func (b *Builder) Extend(base *Dialect) *Builder {
	if base == nil {
		b.d.base = nil
		return b
	}
	name := b.d.name
	b.d = *base
	b.d.name = name
	b.d.base = base
	b.d.templates = nil
	b.d.typeNames = nil
	return b
}

// Quote sets the identifier quote.
func (b *Builder) Quote(q string) *Builder { b.d.quote = q; return b }

// Escape sets the LIKE escape character; 0 disables LIKE pattern lowering.
func (b *Builder) Escape(r rune) *Builder { b.d.escape = r; return b }

// QuoteIdentifiers toggles identifier quoting.
func (b *Builder) QuoteIdentifiers(on bool) *Builder { b.d.quoteIdentifiers = on; return b }

// NativeMerge toggles native MERGE support.
func (b *Builder) NativeMerge(on bool) *Builder { b.d.nativeMerge = on; return b }

// SubQueries toggles sub-query support.
func (b *Builder) SubQueries(on bool) *Builder { b.d.subQueries = on; return b }

// HostCasts toggles host-language cast synthesis.
func (b *Builder) HostCasts(on bool) *Builder { b.d.hostCasts = on; return b }

// PathStyle sets the property path style.
func (b *Builder) PathStyle(s PathStyle) *Builder { b.d.pathStyle = s; return b }

// FactoryStyle sets the factory style.
func (b *Builder) FactoryStyle(s FactoryStyle) *Builder { b.d.factoryStyle = s; return b }

// Placeholder sets the placeholder style.
func (b *Builder) Placeholder(s PlaceholderStyle) *Builder { b.d.placeholder = s; return b }

// Literals sets the string literal style.
func (b *Builder) Literals(s LiteralStyle) *Builder { b.d.literals = s; return b }

// DynamicHelper sets the runtime helper name for dynamic property access.
func (b *Builder) DynamicHelper(name string) *Builder { b.d.dynamicHelper = name; return b }

// TypeName sets how the named type renders in casts.
func (b *Builder) TypeName(typeName, rendered string) *Builder {
	b.typeNames[typeName] = rendered
	return b
}

// TypeNames sets several type renderings.
func (b *Builder) TypeNames(names map[string]string) *Builder {
	for k, v := range names {
		b.TypeName(k, v)
	}
	return b
}

// Template adds or replaces the pattern for op. Later calls for the same
// operator win.
func (b *Builder) Template(op expr.Operator, pattern string) *Builder {
	b.overrides = append(b.overrides, override{op: op, pattern: pattern})
	return b
}

// Templates adds several patterns.
func (b *Builder) Templates(patterns map[expr.Operator]string) *Builder {
	for op, p := range patterns {
		b.Template(op, p)
	}
	return b
}

// Build parses every pattern and checks that no template references more
// operands than its operator accepts. All problems are reported together.
func (b *Builder) Build() (*Dialect, error) {
	d := b.d
	d.templates = make(map[expr.Operator]*template.Template, len(b.overrides))
	d.typeNames = make(map[string]string, len(b.typeNames))
	for k, v := range b.typeNames {
		d.typeNames[k] = v
	}

	var errs []error
	if d.name == "" {
		errs = append(errs, errors.New("dialect name is required"))
	}
	for _, o := range b.overrides {
		if !o.op.Valid() {
			errs = append(errs, fmt.Errorf("dialect %s: invalid operator %d", d.name, int(o.op)))
			continue
		}
		tmpl, err := b.parse(o.pattern)
		if err == nil {
			err = tmpl.Bind(operandLimit(o.op))
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("dialect %s: operator %s: %w", d.name, o.op, err))
			continue
		}
		d.templates[o.op] = tmpl
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &d, nil
}

// MustBuild is like Build but panics on error.
// Use only for built-in dialects.
func (b *Builder) MustBuild() *Dialect {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}

func (b *Builder) parse(pattern string) (*template.Template, error) {
	if b.cache == nil {
		return template.Parse(pattern)
	}
	return b.cache.Parse(pattern)
}

// operandLimit is the number of operands a template for op may reference.
// Variadic operators render through their binary template.
func operandLimit(op expr.Operator) int {
	min, max := op.Arity()
	if max == expr.Variadic {
		if min < 2 {
			return 2
		}
		return min
	}
	return max
}
