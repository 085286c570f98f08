// Package expr provides the expression intermediate representation (IR)
// lowered by dialect serializers.
//
// An expression tree is built from a closed set of node types:
//
//	Path              root variables, properties, collection/map/array access
//	Constant          literal values (bound as parameters or inlined)
//	Operation         operator + ordered operands
//	TemplateExpr      custom fragment with its own template and arguments
//	Projection        "construct T from these arguments" (a Factory)
//	ArrayConstructor  "build a T[] from these arguments" (a Factory)
//	SubQuery          nested query over Metadata
//
// Expression is a sealed interface using the marker method pattern, so
// serializers can switch exhaustively over node types.
//
// CONSTRUCTION INVARIANTS:
//
// Constructors check invariants and return errors rather than building
// invalid trees:
//   - NewOperation: operand count matches the operator's arity class
//   - NewPath: PROPERTY (and every non-root) path has a parent
//   - NewTemplate: every referenced argument index exists
//   - NewArrayConstructor: the element type derives from the array type
//
// The Must* variants panic and are meant for fixtures and tests.
//
// IDENTITY:
//
// Nodes are immutable. Equal compares trees structurally; Fingerprint
// hashes a canonical encoding of the same structure, so it can key maps.
package expr
