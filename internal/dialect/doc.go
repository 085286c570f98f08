// Package dialect provides the per-backend rendering tables used by the
// serializer.
//
// A Dialect maps operators (including the virtual path operators) to
// parsed templates and carries the rendering policies that differ between
// backends: identifier quoting, placeholder style, path and factory
// styles, cast synthesis, and sub-query support.
//
// DIALECT INHERITANCE:
//
// Dialects are built once by a Builder from an optional base plus a list
// of overrides and are immutable afterwards:
//
//	sql ──┬── h2, hsqldb, sqlite, postgres, mysql
//	      └── jpql
//	collections ── jdoql
//
// Resolve looks in the dialect's own table, then along the base chain. A
// miss is an UnsupportedOperatorError; there is no silent fallback.
//
// REGISTRY:
//
// A Registry owns the template cache the built-in dialects are parsed
// through and maps names to dialects. Dialects defined in configuration
// are built with Registry.Builder and added with Register.
package dialect
