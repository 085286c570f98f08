package expr

import "strings"

// Operator identifies an operation. Operator identity, not its name,
// drives rendering.
type Operator int

const (
	OpInvalid Operator = iota

	// Comparison
	OpEq
	OpNe
	OpLt
	OpGt
	OpLoe
	OpGoe
	OpAfter
	OpBefore
	OpAoe
	OpBoe
	OpBetween

	// Boolean
	OpAnd
	OpOr
	OpNot
	OpIsNull
	OpIsNotNull

	// Arithmetic
	OpAdd
	OpSub
	OpMult
	OpDiv
	OpMod
	OpNegate

	// String
	OpConcat
	OpLower
	OpUpper
	OpTrim
	OpLength
	OpSubstr1Arg
	OpSubstr2Args
	OpLike
	OpStartsWith
	OpEndsWith
	OpStringContains
	OpMatches

	// Collection
	OpIn
	OpList
	OpColIsEmpty
	OpColSize

	// Casts
	OpStringCast
	OpNumCast

	// Math
	OpRound
	OpAbs
	OpSqrt
	OpFloor
	OpCeil

	// Sub-queries and aggregates
	OpExists
	OpCount
	OpSum
	OpAvg
	OpMin
	OpMax
	OpCountAll
	OpAlias
	OpLimit
	OpOffset

	// Path rendering
	OpPathVariable
	OpPathProperty
	OpPathCollectionAny
	OpPathListValue
	OpPathListValueConstant
	OpPathMapValue
	OpPathMapValueConstant
	OpPathArrayValue
	OpPathArrayValueConstant
	OpPathDelegate

	opCount
)

// Variadic is the maximum arity of operators accepting any number of
// operands.
const Variadic = -1

// Operator precedence levels. Zero means function-call style: operands
// are delimited by the template and never need parentheses.
const (
	precNone    = 0
	precOr      = 10
	precAnd     = 20
	precNot     = 30
	precCompare = 40
	precAdd     = 50
	precMult    = 60
	precUnary   = 70
)

type opInfo struct {
	name        string
	min, max    int
	prec        int
	associative bool
	virtual     bool
}

var operators = [opCount]opInfo{
	OpInvalid: {name: "INVALID"},

	OpEq:      {name: "EQ", min: 2, max: 2, prec: precCompare},
	OpNe:      {name: "NE", min: 2, max: 2, prec: precCompare},
	OpLt:      {name: "LT", min: 2, max: 2, prec: precCompare},
	OpGt:      {name: "GT", min: 2, max: 2, prec: precCompare},
	OpLoe:     {name: "LOE", min: 2, max: 2, prec: precCompare},
	OpGoe:     {name: "GOE", min: 2, max: 2, prec: precCompare},
	OpAfter:   {name: "AFTER", min: 2, max: 2, prec: precCompare},
	OpBefore:  {name: "BEFORE", min: 2, max: 2, prec: precCompare},
	OpAoe:     {name: "AOE", min: 2, max: 2, prec: precCompare},
	OpBoe:     {name: "BOE", min: 2, max: 2, prec: precCompare},
	OpBetween: {name: "BETWEEN", min: 3, max: 3, prec: precCompare},

	OpAnd:       {name: "AND", min: 2, max: Variadic, prec: precAnd, associative: true},
	OpOr:        {name: "OR", min: 2, max: Variadic, prec: precOr, associative: true},
	OpNot:       {name: "NOT", min: 1, max: 1, prec: precNot},
	OpIsNull:    {name: "IS_NULL", min: 1, max: 1, prec: precCompare},
	OpIsNotNull: {name: "IS_NOT_NULL", min: 1, max: 1, prec: precCompare},

	OpAdd:    {name: "ADD", min: 2, max: 2, prec: precAdd, associative: true},
	OpSub:    {name: "SUB", min: 2, max: 2, prec: precAdd},
	OpMult:   {name: "MULT", min: 2, max: 2, prec: precMult, associative: true},
	OpDiv:    {name: "DIV", min: 2, max: 2, prec: precMult},
	OpMod:    {name: "MOD", min: 2, max: 2, prec: precMult},
	OpNegate: {name: "NEGATE", min: 1, max: 1, prec: precUnary},

	OpConcat:         {name: "CONCAT", min: 2, max: 2, prec: precAdd, associative: true},
	OpLower:          {name: "LOWER", min: 1, max: 1},
	OpUpper:          {name: "UPPER", min: 1, max: 1},
	OpTrim:           {name: "TRIM", min: 1, max: 1},
	OpLength:         {name: "LENGTH", min: 1, max: 1},
	OpSubstr1Arg:     {name: "SUBSTR_1ARG", min: 2, max: 2},
	OpSubstr2Args:    {name: "SUBSTR_2ARGS", min: 3, max: 3},
	OpLike:           {name: "LIKE", min: 2, max: 2, prec: precCompare},
	OpStartsWith:     {name: "STARTS_WITH", min: 2, max: 2, prec: precCompare},
	OpEndsWith:       {name: "ENDS_WITH", min: 2, max: 2, prec: precCompare},
	OpStringContains: {name: "STRING_CONTAINS", min: 2, max: 2, prec: precCompare},
	OpMatches:        {name: "MATCHES", min: 2, max: 2, prec: precCompare},

	OpIn:         {name: "IN", min: 2, max: 2, prec: precCompare},
	OpList:       {name: "LIST", min: 2, max: Variadic, associative: true},
	OpColIsEmpty: {name: "COL_IS_EMPTY", min: 1, max: 1, prec: precCompare},
	OpColSize:    {name: "COL_SIZE", min: 1, max: 1},

	OpStringCast: {name: "STRING_CAST", min: 1, max: 1},
	OpNumCast:    {name: "NUMCAST", min: 2, max: 2},

	OpRound: {name: "ROUND", min: 1, max: 1},
	OpAbs:   {name: "ABS", min: 1, max: 1},
	OpSqrt:  {name: "SQRT", min: 1, max: 1},
	OpFloor: {name: "FLOOR", min: 1, max: 1},
	OpCeil:  {name: "CEIL", min: 1, max: 1},

	OpExists:   {name: "EXISTS", min: 1, max: 1},
	OpCount:    {name: "COUNT", min: 1, max: 1},
	OpSum:      {name: "SUM", min: 1, max: 1},
	OpAvg:      {name: "AVG", min: 1, max: 1},
	OpMin:      {name: "MIN", min: 1, max: 1},
	OpMax:      {name: "MAX", min: 1, max: 1},
	OpCountAll: {name: "COUNT_ALL", min: 0, max: 1},
	OpAlias:    {name: "ALIAS", min: 2, max: 2},
	OpLimit:    {name: "LIMIT", min: 1, max: 1},
	OpOffset:   {name: "OFFSET", min: 1, max: 1},

	OpPathVariable:           {name: "PATH_VARIABLE", min: 1, max: 1, virtual: true},
	OpPathProperty:           {name: "PATH_PROPERTY", min: 2, max: 2, virtual: true},
	OpPathCollectionAny:      {name: "PATH_COLLECTION_ANY", min: 2, max: 2, virtual: true},
	OpPathListValue:          {name: "PATH_LISTVALUE", min: 2, max: 2, virtual: true},
	OpPathListValueConstant:  {name: "PATH_LISTVALUE_CONSTANT", min: 2, max: 2, virtual: true},
	OpPathMapValue:           {name: "PATH_MAPVALUE", min: 2, max: 2, virtual: true},
	OpPathMapValueConstant:   {name: "PATH_MAPVALUE_CONSTANT", min: 2, max: 2, virtual: true},
	OpPathArrayValue:         {name: "PATH_ARRAYVALUE", min: 2, max: 2, virtual: true},
	OpPathArrayValueConstant: {name: "PATH_ARRAYVALUE_CONSTANT", min: 2, max: 2, virtual: true},
	OpPathDelegate:           {name: "PATH_DELEGATE", min: 2, max: 2, virtual: true},
}

var operatorsByName = func() map[string]Operator {
	m := make(map[string]Operator, opCount)
	for op := OpInvalid + 1; op < opCount; op++ {
		m[operators[op].name] = op
	}
	return m
}()

func (op Operator) info() opInfo {
	if op < 0 || op >= opCount {
		return operators[OpInvalid]
	}
	return operators[op]
}

// String returns the operator name ("EQ", "PATH_MAPVALUE").
func (op Operator) String() string {
	return op.info().name
}

// Valid reports whether op is a defined operator.
func (op Operator) Valid() bool {
	return op > OpInvalid && op < opCount
}

// Arity returns the accepted operand count range. max is Variadic for
// operators accepting any number of operands from min upward.
func (op Operator) Arity() (min, max int) {
	i := op.info()
	return i.min, i.max
}

// Precedence returns the binding strength used to parenthesise nested
// operations. Zero means the operator renders function-call style.
func (op Operator) Precedence() int {
	return op.info().prec
}

// Associative reports whether a nested operation of the same operator
// renders identically with or without parentheses.
func (op Operator) Associative() bool {
	return op.info().associative
}

// Virtual reports whether op only exists to key path renderings in a
// dialect table. Virtual operators cannot appear in an Operation.
func (op Operator) Virtual() bool {
	return op.info().virtual
}

// AcceptsArity reports whether n operands satisfy op's arity class.
func (op Operator) AcceptsArity(n int) bool {
	min, max := op.Arity()
	return n >= min && (max == Variadic || n <= max)
}

// LookupOperator maps an operator name to its identity. Matching is
// case-insensitive.
func LookupOperator(name string) (Operator, bool) {
	op, ok := operatorsByName[strings.ToUpper(strings.TrimSpace(name))]
	return op, ok
}

// Operators returns every defined operator in declaration order.
func Operators() []Operator {
	ops := make([]Operator, 0, opCount-1)
	for op := OpInvalid + 1; op < opCount; op++ {
		ops = append(ops, op)
	}
	return ops
}

// PathType classifies how a path is derived from its parent.
type PathType int

const (
	PathVariable PathType = iota
	PathProperty
	PathCollectionAny
	PathListValue
	PathListValueConstant
	PathMapValue
	PathMapValueConstant
	PathArrayValue
	PathArrayValueConstant
	PathDelegate
)

var pathTypeOps = [...]Operator{
	PathVariable:           OpPathVariable,
	PathProperty:           OpPathProperty,
	PathCollectionAny:      OpPathCollectionAny,
	PathListValue:          OpPathListValue,
	PathListValueConstant:  OpPathListValueConstant,
	PathMapValue:           OpPathMapValue,
	PathMapValueConstant:   OpPathMapValueConstant,
	PathArrayValue:         OpPathArrayValue,
	PathArrayValueConstant: OpPathArrayValueConstant,
	PathDelegate:           OpPathDelegate,
}

// Operator returns the virtual operator that keys this path type's
// rendering in a dialect table.
func (pt PathType) Operator() Operator {
	if pt < 0 || int(pt) >= len(pathTypeOps) {
		return OpInvalid
	}
	return pathTypeOps[pt]
}

func (pt PathType) String() string {
	op := pt.Operator()
	if op == OpInvalid {
		return "INVALID"
	}
	return strings.TrimPrefix(op.String(), "PATH_")
}
