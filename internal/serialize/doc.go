// Package serialize renders expression trees to query text.
//
// A Serializer walks an expression tree once, left to right, resolving
// each operator and path kind to a template of its dialect and appending
// the rendered text. Constants are replaced by placeholders and returned
// in the order their placeholders appear, so the caller can bind them
// positionally:
//
//	s := serialize.New(reg.MustGet(dialect.Postgres))
//	text, constants, err := s.Serialize(e)
//	// text:      "c"."age" > $1 and "c"."name" like $2 escape '\'
//	// constants: [3 "Tom%"]
//
// Rendering policies come from the dialect: property paths render dotted
// or through accessors, factories flatten or render as constructor calls,
// casts use templates or synthesized host conversions. A template the
// dialect lacks is an error; nothing falls back silently.
package serialize
