package dialect

import (
	"fmt"
	"strings"
)

// PathStyle selects how PROPERTY paths render.
type PathStyle int

const (
	// PathDotted renders properties through the PATH_PROPERTY template.
	PathDotted PathStyle = iota
	// PathAccessor resolves properties against the parent's host type:
	// accessor call, then public field, then dynamic property access.
	PathAccessor
)

// FactoryStyle selects how factory expressions (projections and array
// constructors) render.
type FactoryStyle int

const (
	// FactoryFlatten renders only the comma-joined arguments, as relational
	// dialects select columns and construct results client side.
	FactoryFlatten FactoryStyle = iota
	// FactoryConstructor renders "new Type(args)".
	FactoryConstructor
	// FactoryNewInstance embeds the factory as a constant and renders
	// "<constant>.newInstance(args)".
	FactoryNewInstance
)

// PlaceholderStyle selects how extracted constants appear in the text.
type PlaceholderStyle int

const (
	PlaceholderQuestion PlaceholderStyle = iota // ?
	PlaceholderDollar                           // $1, $2, ...
	PlaceholderNumbered                         // ?1, ?2, ...
	PlaceholderLabel                            // a1, a2, ...
	PlaceholderInline                           // literal rendered in place, nothing extracted
)

// LiteralStyle selects how inlined string literals are quoted.
type LiteralStyle int

const (
	// LiteralSQL quotes with single quotes, doubling embedded quotes.
	LiteralSQL LiteralStyle = iota
	// LiteralHost quotes with double quotes and backslash escapes.
	LiteralHost
)

var (
	pathStyleNames        = []string{PathDotted: "dotted", PathAccessor: "accessor"}
	factoryStyleNames     = []string{FactoryFlatten: "flatten", FactoryConstructor: "constructor", FactoryNewInstance: "newinstance"}
	placeholderStyleNames = []string{PlaceholderQuestion: "question", PlaceholderDollar: "dollar", PlaceholderNumbered: "numbered", PlaceholderLabel: "label", PlaceholderInline: "inline"}
	literalStyleNames     = []string{LiteralSQL: "sql", LiteralHost: "host"}
)

func styleName(names []string, i int) string {
	if i >= 0 && i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("unknown(%d)", i)
}

func parseStyle(kind string, names []string, s string) (int, error) {
	for i, n := range names {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q (want one of %s)", kind, s, strings.Join(names, ", "))
}

func (s PathStyle) String() string        { return styleName(pathStyleNames, int(s)) }
func (s FactoryStyle) String() string     { return styleName(factoryStyleNames, int(s)) }
func (s PlaceholderStyle) String() string { return styleName(placeholderStyleNames, int(s)) }
func (s LiteralStyle) String() string     { return styleName(literalStyleNames, int(s)) }

// ParsePathStyle parses a path style name ("dotted", "accessor").
func ParsePathStyle(s string) (PathStyle, error) {
	i, err := parseStyle("path style", pathStyleNames, s)
	return PathStyle(i), err
}

// ParseFactoryStyle parses a factory style name.
func ParseFactoryStyle(s string) (FactoryStyle, error) {
	i, err := parseStyle("factory style", factoryStyleNames, s)
	return FactoryStyle(i), err
}

// ParsePlaceholderStyle parses a placeholder style name.
func ParsePlaceholderStyle(s string) (PlaceholderStyle, error) {
	i, err := parseStyle("placeholder style", placeholderStyleNames, s)
	return PlaceholderStyle(i), err
}

// ParseLiteralStyle parses a literal style name.
func ParseLiteralStyle(s string) (LiteralStyle, error) {
	i, err := parseStyle("literal style", literalStyleNames, s)
	return LiteralStyle(i), err
}
