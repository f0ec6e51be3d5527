// Package variables substitutes `{{scope.path[index]}}` references in
// configuration trees and validates template variable values against their
// definitions.
//
// A reference names a scope (a template variable or a step id) followed by
// optional dotted keys, each of which may be indexed:
//
//	{{region}}
//	{{fetch_logs.output.events[0].message}}
//
// When a string leaf is exactly one token the looked-up value replaces it
// with its original type. Tokens embedded in longer text are spliced in as
// text, with objects and arrays rendered as canonical JSON. References that
// cannot be resolved are left in place and reported as warnings.
package variables
