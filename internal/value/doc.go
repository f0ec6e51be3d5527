// Package value defines the JSON-like value domain shared by the resolver,
// the transform modes and the filter compiler.
//
// A value is one of nil, bool, float64, string, []any or map[string]any.
// Inputs decoded elsewhere (YAML, Go literals with int fields) are accepted by
// KindOf and brought into the canonical form with Normalize.
//
// The package also owns the reference path grammar used by variable tokens
// and by key paths in the utility library:
//
//	scope.segment[0].other[1][2]
package value
