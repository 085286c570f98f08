package dialect

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mitranim/sqlp"

	"github.com/roach88/exprql/internal/expr"
	"github.com/roach88/exprql/internal/template"
)

// Dialect describes how operators and path kinds render for one target
// query language.
//
// A Dialect is immutable once built and safe for concurrent use. Templates
// resolve through the dialect's own table first, then through its base.
type Dialect struct {
	name             string
	base             *Dialect
	quote            string
	escape           rune
	quoteIdentifiers bool
	nativeMerge      bool
	subQueries       bool
	hostCasts        bool
	pathStyle        PathStyle
	factoryStyle     FactoryStyle
	placeholder      PlaceholderStyle
	literals         LiteralStyle
	dynamicHelper    string
	templates        map[expr.Operator]*template.Template
	typeNames        map[string]string
}

// Name returns the dialect name.
func (d *Dialect) Name() string { return d.name }

// Base returns the dialect this one extends, or nil.
func (d *Dialect) Base() *Dialect { return d.base }

// QuoteChar returns the identifier quote.
func (d *Dialect) QuoteChar() string { return d.quote }

// EscapeChar returns the LIKE escape character, or 0 when string
// predicates do not lower to LIKE patterns.
func (d *Dialect) EscapeChar() rune { return d.escape }

// QuoteIdentifiers reports whether identifiers are quoted.
func (d *Dialect) QuoteIdentifiers() bool { return d.quoteIdentifiers }

// NativeMerge reports whether the backend supports MERGE natively.
func (d *Dialect) NativeMerge() bool { return d.nativeMerge }

// SubQueries reports whether sub-query expressions can be rendered.
func (d *Dialect) SubQueries() bool { return d.subQueries }

// HostCasts reports whether casts render as host-language conversions
// rather than templates.
func (d *Dialect) HostCasts() bool { return d.hostCasts }

// PathStyle returns the property path rendering style.
func (d *Dialect) PathStyle() PathStyle { return d.pathStyle }

// FactoryStyle returns the factory rendering style.
func (d *Dialect) FactoryStyle() FactoryStyle { return d.factoryStyle }

// Placeholder returns the constant placeholder style.
func (d *Dialect) Placeholder() PlaceholderStyle { return d.placeholder }

// Literals returns the string literal style.
func (d *Dialect) Literals() LiteralStyle { return d.literals }

// DynamicHelper returns the name of the runtime helper used for dynamic
// property access.
func (d *Dialect) DynamicHelper() string { return d.dynamicHelper }

// Relational reports whether the dialect targets tables rather than
// entities: query sources render as table names and factories flatten.
func (d *Dialect) Relational() bool { return d.factoryStyle == FactoryFlatten }

// Resolve returns the template for op, looking in this dialect and then
// along the base chain.
func (d *Dialect) Resolve(op expr.Operator) (*template.Template, error) {
	for cur := d; cur != nil; cur = cur.base {
		if t, ok := cur.templates[op]; ok {
			return t, nil
		}
	}
	return nil, &UnsupportedOperatorError{Dialect: d.name, Operator: op}
}

// Supports reports whether op resolves.
func (d *Dialect) Supports(op expr.Operator) bool {
	_, err := d.Resolve(op)
	return err == nil
}

// Operators returns every operator that resolves, in declaration order.
func (d *Dialect) Operators() []expr.Operator {
	var ops []expr.Operator
	for _, op := range expr.Operators() {
		if d.Supports(op) {
			ops = append(ops, op)
		}
	}
	return ops
}

// Overrides returns the operators defined by this dialect itself, sorted.
func (d *Dialect) Overrides() []expr.Operator {
	ops := make([]expr.Operator, 0, len(d.templates))
	for op := range d.templates {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// TypeName returns the name t renders as in casts, falling back to the
// type's own name.
func (d *Dialect) TypeName(t *expr.Type) string {
	for cur := d; cur != nil; cur = cur.base {
		if n, ok := cur.typeNames[t.Name]; ok {
			return n
		}
	}
	return t.Name
}

// QuoteIdentifier quotes name when the dialect quotes identifiers.
// Embedded quote characters are doubled.
func (d *Dialect) QuoteIdentifier(name string) string {
	if !d.quoteIdentifiers || d.quote == "" {
		return name
	}
	return d.quote + strings.ReplaceAll(name, d.quote, d.quote+d.quote) + d.quote
}

// PlaceholderFor returns the placeholder for the constant at index i
// (zero-based) of the constants list. Inline dialects have none.
func (d *Dialect) PlaceholderFor(i int) string {
	switch d.placeholder {
	case PlaceholderQuestion:
		return "?"
	case PlaceholderDollar:
		return "$" + strconv.Itoa(i+1)
	case PlaceholderNumbered:
		return "?" + strconv.Itoa(i+1)
	case PlaceholderLabel:
		return "a" + strconv.Itoa(i+1)
	}
	return ""
}

// Literal renders v as an inline literal.
func (d *Dialect) Literal(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "null", nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int8:
		return strconv.FormatInt(int64(val), 10), nil
	case int16:
		return strconv.FormatInt(int64(val), 10), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	case *big.Float:
		return val.Text('f', -1), nil
	case string:
		return d.stringLiteral(val), nil
	case time.Time:
		return d.stringLiteral(val.Format("2006-01-02 15:04:05")), nil
	case *expr.Type:
		return d.TypeName(val), nil
	}
	return "", &UnsupportedLiteralError{Dialect: d.name, Value: v}
}

func (d *Dialect) stringLiteral(s string) string {
	if d.literals == LiteralHost {
		return strconv.Quote(s)
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// EscapeLike escapes LIKE wildcards in s with the dialect escape character.
func (d *Dialect) EscapeLike(s string) string {
	if d.escape == 0 {
		return s
	}
	esc := string(d.escape)
	r := strings.NewReplacer(esc, esc+esc, "%", esc+"%", "_", esc+"_")
	return r.Replace(s)
}

// CountPlaceholders counts the positional placeholders in text, skipping
// quoted strings and comments. It returns -1 for placeholder styles that
// cannot be counted from the text alone (labels and inline literals).
func (d *Dialect) CountPlaceholders(text string) int {
	if d.placeholder == PlaceholderLabel || d.placeholder == PlaceholderInline {
		return -1
	}
	tokenizer := sqlp.Tokenizer{Source: text}
	count := 0
	for {
		node := tokenizer.Next()
		if node == nil {
			break
		}
		switch node := node.(type) {
		case sqlp.NodeOrdinalParam:
			if d.placeholder == PlaceholderDollar {
				count++
			}
		case sqlp.NodeText:
			if d.placeholder != PlaceholderDollar {
				count += strings.Count(string(node), "?")
			}
		}
	}
	return count
}

// String returns a one-line summary.
func (d *Dialect) String() string {
	base := "-"
	if d.base != nil {
		base = d.base.name
	}
	return fmt.Sprintf("%s (base %s, placeholder %s, paths %s, factories %s)",
		d.name, base, d.placeholder, d.pathStyle, d.factoryStyle)
}
