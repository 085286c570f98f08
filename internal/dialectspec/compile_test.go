package dialectspec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/exprql/internal/dialect"
	"github.com/roach88/exprql/internal/expr"
	"github.com/roach88/exprql/internal/serialize"
)

const oracleSpec = `
dialect: {
	"oracle-lite": {
		base:   "oracle"
		escape: "!"
		templates: LIKE: "{0} like {1} escape '!'"
	}
	oracle: {
		base:              "sql"
		placeholder:       "numbered"
		quote_identifiers: true
		type_names: String: "varchar2"
		templates: {
			CONCAT:  "concat({0},{1})"
			matches: "regexp_like({0},{1})"
		}
	}
}
`

func TestCompileString(t *testing.T) {
	reg := dialect.NewRegistry()

	built, err := CompileString(oracleSpec, reg)
	require.NoError(t, err)
	require.Len(t, built, 2)
	assert.Equal(t, "oracle", built[0].Name())
	assert.Equal(t, "oracle-lite", built[1].Name())

	oracle := reg.MustGet("oracle")
	assert.Same(t, reg.MustGet(dialect.SQL), oracle.Base())
	assert.Equal(t, dialect.PlaceholderNumbered, oracle.Placeholder())
	assert.True(t, oracle.QuoteIdentifiers())
	assert.Equal(t, "varchar2", oracle.TypeName(expr.String))
	assert.Equal(t, "bigint", oracle.TypeName(expr.Long))
	assert.Equal(t, []expr.Operator{expr.OpConcat, expr.OpMatches}, oracle.Overrides())

	lite := reg.MustGet("oracle-lite")
	assert.Same(t, oracle, lite.Base())
	assert.Equal(t, '!', lite.EscapeChar())
	assert.Equal(t, dialect.PlaceholderNumbered, lite.Placeholder())
	concat, err := lite.Resolve(expr.OpConcat)
	require.NoError(t, err)
	assert.Equal(t, "concat({0},{1})", concat.Pattern())
}

func TestCompileString_RendersThroughSerializer(t *testing.T) {
	reg := dialect.NewRegistry()
	_, err := CompileString(oracleSpec, reg)
	require.NoError(t, err)

	name := expr.Property(expr.Root(expr.Object, "c"), "name", expr.String)
	e := expr.MustOperation(expr.String, expr.OpConcat, name, expr.NewConstant("x"))

	text, constants, err := serialize.New(reg.MustGet("oracle")).Serialize(e)
	require.NoError(t, err)
	assert.Equal(t, `concat("c"."name",?1)`, text)
	assert.Equal(t, []any{"x"}, constants)
}

func TestCompileString_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{"unknown operator", `dialect: bad: templates: NOPE: "x"`, "dialect.bad.templates.NOPE"},
		{"malformed template", `dialect: bad: templates: EQ: "{0} = {1"`, "operator EQ"},
		{"template exceeds arity", `dialect: bad: templates: NOT: "not {0} {1}"`, "operator NOT"},
		{"unknown base", `dialect: bad: base: "nope"`, `unknown or cyclic base dialect "nope"`},
		{"cyclic base", `dialect: {a: base: "b", b: base: "a"}`, "unknown or cyclic base dialect"},
		{"bad style", `dialect: bad: path_style: "weird"`, "dialect.bad.path_style"},
		{"long escape", `dialect: bad: escape: "ab"`, "single character"},
		{"wrong type", `dialect: bad: native_merge: "yes"`, "must be a bool"},
		{"template not a string", `dialect: bad: templates: EQ: 1`, "must be a string"},
		{"no dialects", `other: 1`, "no dialects defined"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CompileString(tc.src, dialect.NewRegistry())
			require.Error(t, err)
			assert.True(t, IsCompileError(err), "got %T: %v", err, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestCompileString_FailureRegistersNothing(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{"malformed template", `dialect: {
	good:  base: "sql"
	child: base: "good"
	sqlite: templates: CONCAT: "concat({0},{1})"
	bad: templates: EQ: "{0} = {1"
}`},
		{"unknown base", `dialect: {
	good: base: "sql"
	bad:  base: "nope"
}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reg := dialect.NewRegistry()
			before := reg.Names()
			sqlite := reg.MustGet(dialect.SQLite)

			built, err := CompileString(tc.src, reg)
			require.Error(t, err)
			assert.Nil(t, built)

			assert.Equal(t, before, reg.Names())
			_, err = reg.Get("good")
			assert.True(t, dialect.IsUnknownDialect(err), "got %v", err)
			assert.Same(t, sqlite, reg.MustGet(dialect.SQLite))
		})
	}
}

func TestCompileString_SyntaxError(t *testing.T) {
	_, err := CompileString(`dialect: {`, dialect.NewRegistry())
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	src := "package dialects\n" + oracleSpec
	require.NoError(t, os.WriteFile(filepath.Join(dir, "oracle.cue"), []byte(src), 0o644))

	reg := dialect.NewRegistry()
	built, err := LoadDir(dir, reg)
	require.NoError(t, err)
	assert.Len(t, built, 2)
	assert.Contains(t, reg.Names(), "oracle-lite")
}

func TestLoadDir_Errors(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "missing"), dialect.NewRegistry())
	assert.Error(t, err)

	_, err = LoadDir(t.TempDir(), dialect.NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no CUE files")
}
