package dialect

import (
	"github.com/roach88/exprql/internal/expr"
	"github.com/roach88/exprql/internal/template"
)

// Built-in dialect names.
const (
	SQL         = "sql"
	H2          = "h2"
	HSQLDB      = "hsqldb"
	SQLite      = "sqlite"
	Postgres    = "postgres"
	MySQL       = "mysql"
	JPQL        = "jpql"
	JDOQL       = "jdoql"
	Collections = "collections"
)

var sqlTemplates = map[expr.Operator]string{
	expr.OpEq:        "{0} = {1}",
	expr.OpNe:        "{0} <> {1}",
	expr.OpLt:        "{0} < {1}",
	expr.OpGt:        "{0} > {1}",
	expr.OpLoe:       "{0} <= {1}",
	expr.OpGoe:       "{0} >= {1}",
	expr.OpAfter:     "{0} > {1}",
	expr.OpBefore:    "{0} < {1}",
	expr.OpAoe:       "{0} >= {1}",
	expr.OpBoe:       "{0} <= {1}",
	expr.OpBetween:   "{0} between {1} and {2}",
	expr.OpAnd:       "{0} and {1}",
	expr.OpOr:        "{0} or {1}",
	expr.OpNot:       "not {0}",
	expr.OpIsNull:    "{0} is null",
	expr.OpIsNotNull: "{0} is not null",

	expr.OpAdd:    "{0} + {1}",
	expr.OpSub:    "{0} - {1}",
	expr.OpMult:   "{0} * {1}",
	expr.OpDiv:    "{0} / {1}",
	expr.OpMod:    "mod({0},{1})",
	expr.OpNegate: "-{0}",

	expr.OpConcat:         "{0} || {1}",
	expr.OpLower:          "lower({0})",
	expr.OpUpper:          "upper({0})",
	expr.OpTrim:           "trim({0})",
	expr.OpLength:         "length({0})",
	expr.OpSubstr1Arg:     "substr({0},{1}+1)",
	expr.OpSubstr2Args:    "substr({0},{1}+1,{2}-{1})",
	expr.OpLike:           `{0} like {1} escape '\'`,
	expr.OpStartsWith:     `{0} like {1} escape '\'`,
	expr.OpEndsWith:       `{0} like {1} escape '\'`,
	expr.OpStringContains: `{0} like {1} escape '\'`,

	expr.OpIn:         "{0} in ({1})",
	expr.OpList:       "{0}, {1}",
	expr.OpStringCast: "cast({0} as varchar)",
	expr.OpNumCast:    "cast({0} as {1!})",

	expr.OpRound: "round({0})",
	expr.OpAbs:   "abs({0})",
	expr.OpSqrt:  "sqrt({0})",
	expr.OpFloor: "floor({0})",
	expr.OpCeil:  "ceiling({0})",

	expr.OpExists:   "exists {0}",
	expr.OpCount:    "count({0})",
	expr.OpSum:      "sum({0})",
	expr.OpAvg:      "avg({0})",
	expr.OpMin:      "min({0})",
	expr.OpMax:      "max({0})",
	expr.OpCountAll: "count(*)",
	expr.OpAlias:    "{0} as {1!}",
	expr.OpLimit:    "limit {0}",
	expr.OpOffset:   "offset {0}",

	expr.OpPathVariable: "{0!}",
	expr.OpPathProperty: "{0}.{1!}",
	expr.OpPathDelegate: "{0}",
}

var sqlTypeNames = map[string]string{
	"Byte":       "tinyint",
	"Short":      "smallint",
	"Integer":    "integer",
	"Long":       "bigint",
	"Float":      "real",
	"Double":     "double",
	"BigDecimal": "decimal",
	"String":     "varchar",
}

// hostTemplates render host-language expressions over in-memory objects.
var hostTemplates = map[expr.Operator]string{
	expr.OpEq:        "{0}.equals({1})",
	expr.OpNe:        "!{0}.equals({1})",
	expr.OpLt:        "{0} < {1}",
	expr.OpGt:        "{0} > {1}",
	expr.OpLoe:       "{0} <= {1}",
	expr.OpGoe:       "{0} >= {1}",
	expr.OpAfter:     "{0}.after({1})",
	expr.OpBefore:    "{0}.before({1})",
	expr.OpAoe:       "{0}.compareTo({1}) >= 0",
	expr.OpBoe:       "{0}.compareTo({1}) <= 0",
	expr.OpBetween:   "{0} >= {1} && {0} <= {2}",
	expr.OpAnd:       "{0} && {1}",
	expr.OpOr:        "{0} || {1}",
	expr.OpNot:       "!{0}",
	expr.OpIsNull:    "{0} == null",
	expr.OpIsNotNull: "{0} != null",

	expr.OpAdd:    "{0} + {1}",
	expr.OpSub:    "{0} - {1}",
	expr.OpMult:   "{0} * {1}",
	expr.OpDiv:    "{0} / {1}",
	expr.OpMod:    "{0} % {1}",
	expr.OpNegate: "-{0}",

	expr.OpConcat:         "{0} + {1}",
	expr.OpLower:          "{0}.toLowerCase()",
	expr.OpUpper:          "{0}.toUpperCase()",
	expr.OpTrim:           "{0}.trim()",
	expr.OpLength:         "{0}.length()",
	expr.OpSubstr1Arg:     "{0}.substring({1})",
	expr.OpSubstr2Args:    "{0}.substring({1},{2})",
	expr.OpLike:           "{0}.matches({1})",
	expr.OpStartsWith:     "{0}.startsWith({1})",
	expr.OpEndsWith:       "{0}.endsWith({1})",
	expr.OpStringContains: "{0}.contains({1})",
	expr.OpMatches:        "{0}.matches({1})",

	expr.OpIn:         "{1}.contains({0})",
	expr.OpList:       "{0}, {1}",
	expr.OpColIsEmpty: "{0}.isEmpty()",
	expr.OpColSize:    "{0}.size()",
	expr.OpStringCast: "String.valueOf({0})",

	expr.OpRound: "Math.round({0})",
	expr.OpAbs:   "Math.abs({0})",
	expr.OpSqrt:  "Math.sqrt({0})",
	expr.OpFloor: "Math.floor({0})",
	expr.OpCeil:  "Math.ceil({0})",

	expr.OpPathVariable:           "{0!}",
	expr.OpPathProperty:           "{0}.{1!}",
	expr.OpPathCollectionAny:      "{0}",
	expr.OpPathListValue:          "{0}.get({1})",
	expr.OpPathListValueConstant:  "{0}.get({1})",
	expr.OpPathMapValue:           "{0}.get({1})",
	expr.OpPathMapValueConstant:   "{0}.get({1})",
	expr.OpPathArrayValue:         "{0}[{1}]",
	expr.OpPathArrayValueConstant: "{0}[{1}]",
	expr.OpPathDelegate:           "{0}",
}

// builtins builds the built-in dialects in dependency order.
func builtins(cache *template.Cache) []*Dialect {
	sql := NewBuilder(SQL, cache).
		SubQueries(true).
		Templates(sqlTemplates).
		TypeNames(sqlTypeNames).
		MustBuild()

	h2 := NewBuilder(H2, cache).Extend(sql).
		NativeMerge(true).
		Template(expr.OpRound, "round({0},0)").
		Template(expr.OpTrim, "trim(both from {0})").
		Template(expr.OpConcat, "concat({0},{1})").
		Template(expr.OpMatches, "regexp_like({0},{1})").
		MustBuild()

	hsqldb := NewBuilder(HSQLDB, cache).Extend(sql).
		Template(expr.OpRound, "round({0},0)").
		Template(expr.OpTrim, "trim(both from {0})").
		Template(expr.OpMatches, "regexp_matches({0},{1})").
		MustBuild()

	sqlite := NewBuilder(SQLite, cache).Extend(sql).
		Template(expr.OpMod, "{0} % {1}").
		Template(expr.OpStringCast, "cast({0} as text)").
		Template(expr.OpMatches, "{0} regexp {1}").
		TypeName("String", "text").
		MustBuild()

	postgres := NewBuilder(Postgres, cache).Extend(sql).
		Placeholder(PlaceholderDollar).
		QuoteIdentifiers(true).
		Template(expr.OpMatches, "{0} ~ {1}").
		Template(expr.OpCeil, "ceil({0})").
		TypeName("Double", "double precision").
		MustBuild()

	mysql := NewBuilder(MySQL, cache).Extend(sql).
		Quote("`").
		QuoteIdentifiers(true).
		Template(expr.OpConcat, "concat({0},{1})").
		Template(expr.OpMatches, "{0} regexp {1}").
		Template(expr.OpStringCast, "cast({0} as char)").
		TypeName("Integer", "signed").
		TypeName("Long", "signed").
		TypeName("String", "char").
		MustBuild()

	jpql := NewBuilder(JPQL, cache).Extend(sql).
		Placeholder(PlaceholderNumbered).
		Escape('!').
		FactoryStyle(FactoryConstructor).
		Template(expr.OpConcat, "concat({0},{1})").
		Template(expr.OpSubstr1Arg, "substring({0},{1}+1)").
		Template(expr.OpSubstr2Args, "substring({0},{1}+1,{2}-{1})").
		Template(expr.OpLike, "{0} like {1} escape '!'").
		Template(expr.OpStartsWith, "{0} like {1} escape '!'").
		Template(expr.OpEndsWith, "{0} like {1} escape '!'").
		Template(expr.OpStringContains, "{0} like {1} escape '!'").
		Template(expr.OpColIsEmpty, "{0} is empty").
		Template(expr.OpColSize, "size({0})").
		Template(expr.OpStringCast, "str({0})").
		Template(expr.OpCountAll, "count({0})").
		MustBuild()

	collections := NewBuilder(Collections, cache).
		Escape(0).
		Placeholder(PlaceholderLabel).
		PathStyle(PathAccessor).
		FactoryStyle(FactoryNewInstance).
		Literals(LiteralHost).
		HostCasts(true).
		Templates(hostTemplates).
		MustBuild()

	jdoql := NewBuilder(JDOQL, cache).Extend(collections).
		PathStyle(PathDotted).
		FactoryStyle(FactoryConstructor).
		HostCasts(false).
		SubQueries(true).
		Template(expr.OpEq, "{0} == {1}").
		Template(expr.OpNe, "{0} != {1}").
		Template(expr.OpAfter, "{0} > {1}").
		Template(expr.OpBefore, "{0} < {1}").
		Template(expr.OpAoe, "{0} >= {1}").
		Template(expr.OpBoe, "{0} <= {1}").
		Template(expr.OpStringContains, "{0}.indexOf({1}) > -1").
		Template(expr.OpStringCast, "{0}.toString()").
		Template(expr.OpNumCast, "({1!}){0}").
		Template(expr.OpCount, "count({0})").
		Template(expr.OpSum, "sum({0})").
		Template(expr.OpAvg, "avg({0})").
		Template(expr.OpMin, "min({0})").
		Template(expr.OpMax, "max({0})").
		Template(expr.OpCountAll, "count(this)").
		Template(expr.OpExists, "{0}.size() > 0").
		Template(expr.OpAlias, "{0} as {1!}").
		TypeName("Integer", "int").
		TypeName("Long", "long").
		TypeName("Short", "short").
		TypeName("Byte", "byte").
		TypeName("Float", "float").
		TypeName("Double", "double").
		MustBuild()

	return []*Dialect{sql, h2, hsqldb, sqlite, postgres, mysql, jpql, collections, jdoql}
}
