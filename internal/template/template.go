package template

import (
	"fmt"
	"strconv"
	"strings"
)

// Element is one piece of a parsed Template.
//
// An element is either static text copied verbatim, or a reference to a
// positional argument. Argument references render the argument as an
// expression, unless AsText is set, in which case the argument's literal
// textual form is appended instead.
type Element struct {
	Text   string // Static text (empty for argument references)
	Index  int    // Argument index (-1 for static text)
	AsText bool   // Render the argument's literal text ({N!})
}

// IsStatic reports whether the element is static text.
func (e Element) IsStatic() bool {
	return e.Index < 0
}

// String returns the element in pattern syntax.
func (e Element) String() string {
	switch {
	case e.IsStatic():
		return e.Text
	case e.AsText:
		return fmt.Sprintf("{%d!}", e.Index)
	default:
		return fmt.Sprintf("{%d}", e.Index)
	}
}

// Template is a parsed rendering pattern.
//
// Templates are immutable once parsed and safe to share between goroutines.
type Template struct {
	pattern  string
	elements []Element
	maxIndex int
}

// Parse parses a pattern into a Template.
//
// Grammar:
//
//	pattern  = { text | arg }
//	arg      = "{" digits [ "!" ] "}"
//
// A lone "}" is treated as static text. An unclosed "{", an empty index or
// a non-numeric index is a MalformedError.
//
// Example:
//
//	t, _ := Parse("{0} = {1}")
//	// elements: {0}, " = ", {1}
func Parse(pattern string) (*Template, error) {
	t := &Template{pattern: pattern, maxIndex: -1}

	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			t.elements = append(t.elements, Element{Text: text.String(), Index: -1})
			text.Reset()
		}
	}

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '{' {
			text.WriteByte(c)
			continue
		}

		end := strings.IndexByte(pattern[i+1:], '}')
		if end < 0 {
			return nil, &MalformedError{
				Pattern: pattern,
				Offset:  i,
				Message: "unclosed brace",
			}
		}
		body := pattern[i+1 : i+1+end]

		asText := strings.HasSuffix(body, "!")
		if asText {
			body = body[:len(body)-1]
		}
		if body == "" {
			return nil, &MalformedError{
				Pattern: pattern,
				Offset:  i,
				Message: "empty argument index",
			}
		}

		index, err := strconv.Atoi(body)
		if err != nil || index < 0 || body[0] == '+' || body[0] == '-' {
			return nil, &MalformedError{
				Pattern: pattern,
				Offset:  i,
				Message: fmt.Sprintf("non-numeric argument index %q", body),
			}
		}

		flush()
		t.elements = append(t.elements, Element{Index: index, AsText: asText})
		if index > t.maxIndex {
			t.maxIndex = index
		}
		i += end + 1
	}
	flush()

	return t, nil
}

// MustParse is like Parse but panics on error.
// Use only for built-in tables and tests.
func MustParse(pattern string) *Template {
	t, err := Parse(pattern)
	if err != nil {
		panic(err)
	}
	return t
}

// Elements returns the template elements in pattern order.
// The returned slice must not be modified.
func (t *Template) Elements() []Element {
	return t.elements
}

// Pattern returns the source pattern.
func (t *Template) Pattern() string {
	return t.pattern
}

// MaxIndex returns the highest argument index referenced, or -1 when the
// template references no arguments.
func (t *Template) MaxIndex() int {
	return t.maxIndex
}

// Bind checks that every argument reference fits an argument list of the
// given length.
func (t *Template) Bind(argCount int) error {
	if t.maxIndex >= argCount {
		return &MalformedError{
			Pattern: t.pattern,
			Offset:  -1,
			Message: fmt.Sprintf("argument index %d out of range for %d argument(s)", t.maxIndex, argCount),
		}
	}
	return nil
}

// StaticText returns the static fragments in order.
func (t *Template) StaticText() []string {
	var out []string
	for _, e := range t.elements {
		if e.IsStatic() {
			out = append(out, e.Text)
		}
	}
	return out
}

// String returns the source pattern.
func (t *Template) String() string {
	return t.pattern
}
