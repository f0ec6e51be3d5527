// Package transform reshapes the output of one workflow step into the input
// of the next.
//
// Three modes are supported:
//
//   - procedural: a JavaScript function body run in a fresh otto VM with
//     `data` bound to a copy of the input and the utility library as globals.
//   - path-query: a JSONPath query such as `$.events[*].message`.
//   - pattern-extraction: a regular expression applied to a text field.
//
// Failures are *api.Error values whose kind tells compile errors, runtime
// errors, timeouts, unsupported modes and non-text extraction targets apart.
package transform
