// Package template implements the rendering mini-language used by dialects.
//
// A pattern is literal text interleaved with positional placeholders:
//
//	{N}   render argument N through normal expression rendering
//	{N!}  append argument N's literal textual form
//
// Patterns are parsed once into an ordered list of Elements. Element order
// follows the pattern, not the arguments: an argument may be referenced
// zero, one, or many times.
//
// Parsed templates are immutable. Cache memoizes parsing by exact pattern
// string and is owned by whichever component builds dialects.
package template
