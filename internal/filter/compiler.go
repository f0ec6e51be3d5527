package filter

import (
	"flewid/internal/api"
	"flewid/pkg/logging"
)

const (
	namePlaceholderPrefix  = "#attr"
	valuePlaceholderPrefix = ":val"
)

// Compile parses raw and renders it as a parameterized expression.
func Compile(raw string) api.FilterResult {
	pred, err := Parse(raw)
	if err != nil {
		logging.Debug("FilterCompiler", "Rejected filter %q: %s", raw, err.Kind)
		return api.FilterResult{IsValid: false, Error: err.Message, ErrorKind: err.Kind}
	}
	return api.FilterResult{IsValid: true, Compiled: Render(pred)}
}

// Render turns a predicate into its placeholder form.
func Render(pred Predicate) *api.CompiledFilter {
	name := namePlaceholderPrefix + "0"
	compiled := &api.CompiledFilter{
		Predicate:      string(pred.Kind()),
		AttributeNames: map[string]string{name: pred.Attribute()},
	}

	val := ""
	if v, ok := pred.Value(); ok {
		val = valuePlaceholderPrefix + "0"
		compiled.AttributeValues = map[string]interface{}{val: v}
	}
	compiled.Expression = pred.Template(name, val)
	return compiled
}

// APIAdapter exposes the compiler through the api registry.
type APIAdapter struct{}

// NewAPIAdapter creates a new API adapter for the filter compiler
func NewAPIAdapter() *APIAdapter {
	return &APIAdapter{}
}

// Register registers this adapter with the API package
func (a *APIAdapter) Register() {
	api.RegisterFilter(a)
}

// Compile compiles a raw filter expression.
func (a *APIAdapter) Compile(raw string) api.FilterResult {
	return Compile(raw)
}
