package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario describes one expression or query, the dialect to render it
// in, and the expected outcome.
type Scenario struct {
	// Name identifies the scenario and its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario covers.
	Description string `yaml:"description"`

	// Dialect is the registry name to render with. Defaults to "sql".
	Dialect string `yaml:"dialect,omitempty"`

	// Entities describes the entity types the scenario refers to.
	Entities map[string]Entity `yaml:"entities,omitempty"`

	// Vars maps root variable names to entity or scalar type names.
	Vars map[string]string `yaml:"vars,omitempty"`

	// Expression is the tree to serialize. Exactly one of Expression and
	// Query is set.
	Expression *Node `yaml:"expression,omitempty"`

	// Query is a complete query to serialize.
	Query *Query `yaml:"query,omitempty"`

	// Expect is the expected rendering.
	Expect Expect `yaml:"expect"`
}

// Entity describes an entity type.
type Entity struct {
	// Table is the relational table name.
	Table string `yaml:"table,omitempty"`

	// Accessors are declared accessor names ("getName", "isAlive").
	Accessors []string `yaml:"accessors,omitempty"`

	// Fields are declared field names.
	Fields []string `yaml:"fields,omitempty"`

	// Properties maps property names to type names. Properties not listed
	// have type Object.
	Properties map[string]string `yaml:"properties,omitempty"`
}

// Node is one expression node. Exactly one form key is set:
//
//	path:     cat.name
//	const:    Tom          (optional type: Integer)
//	null:     true         (optional type: String)
//	class:    Long
//	op:       EQ           (args, optional type)
//	template: "{0} = {1}"  (args, optional type)
//	factory:  PersonDTO    (args)
//	array:    String       (args)
//	elem:     {of, index, kind: list|map|array}
//	any:      <node>
//	subquery: <query>
type Node struct {
	Path     string     `yaml:"path,omitempty"`
	Const    *yaml.Node `yaml:"const,omitempty"`
	Null     bool       `yaml:"null,omitempty"`
	Class    string     `yaml:"class,omitempty"`
	Op       string     `yaml:"op,omitempty"`
	Template string     `yaml:"template,omitempty"`
	Factory  string     `yaml:"factory,omitempty"`
	Array    string     `yaml:"array,omitempty"`
	Elem     *Elem      `yaml:"elem,omitempty"`
	Any      *Node      `yaml:"any,omitempty"`
	SubQuery *Query     `yaml:"subquery,omitempty"`
	Type     string     `yaml:"type,omitempty"`
	Args     []*Node    `yaml:"args,omitempty"`
}

// Elem indexes into a list, map or array.
type Elem struct {
	Of    *Node  `yaml:"of"`
	Index *Node  `yaml:"index"`
	Kind  string `yaml:"kind"`
	Type  string `yaml:"type,omitempty"`
}

// Query describes query metadata.
type Query struct {
	Distinct bool        `yaml:"distinct,omitempty"`
	Select   []*Node     `yaml:"select"`
	From     []string    `yaml:"from"`
	Where    *Node       `yaml:"where,omitempty"`
	GroupBy  []*Node     `yaml:"group_by,omitempty"`
	Having   *Node       `yaml:"having,omitempty"`
	OrderBy  []OrderTerm `yaml:"order_by,omitempty"`
	Limit    *int64      `yaml:"limit,omitempty"`
	Offset   *int64      `yaml:"offset,omitempty"`

	// Count renders the count form of the query.
	Count bool `yaml:"count,omitempty"`
}

// OrderTerm is one ordering term.
type OrderTerm struct {
	Expr *Node `yaml:"expr"`
	Desc bool  `yaml:"desc,omitempty"`
}

// Expect is the expected outcome. Error, when set, is a substring of the
// expected error message and Text and Constants are ignored.
type Expect struct {
	Text      string `yaml:"text,omitempty"`
	Constants []any  `yaml:"constants,omitempty"`
	Error     string `yaml:"error,omitempty"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	out := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := Load(p)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Parse decodes a scenario document. Unknown fields are rejected.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validate(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validate(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if (s.Expression == nil) == (s.Query == nil) {
		return fmt.Errorf("exactly one of expression and query is required")
	}
	for v, typ := range s.Vars {
		if typ == "" {
			return fmt.Errorf("var %s: type is required", v)
		}
	}
	return nil
}

// DialectName returns the dialect the scenario renders with.
func (s *Scenario) DialectName() string {
	if s.Dialect == "" {
		return "sql"
	}
	return s.Dialect
}
