package variables

import (
	"fmt"
	"regexp"

	"flewid/internal/value"
)

// tokenPattern matches `{{ ... }}` with the inner text captured without its
// surrounding whitespace.
var tokenPattern = regexp.MustCompile(`\{\{\s*([^{}]*?)\s*\}\}`)

// Reference is a parsed variable token.
type Reference struct {
	Path value.Path
}

// ParseReference parses the inner text of a token, e.g. `step1.items[0]`.
func ParseReference(raw string) (Reference, error) {
	p, err := value.ParsePath(raw)
	if err != nil {
		return Reference{}, fmt.Errorf("invalid variable reference %q: %w", raw, err)
	}
	return Reference{Path: p}, nil
}

// Scope is the first segment name of the reference.
func (r Reference) Scope() string {
	if len(r.Path) == 0 {
		return ""
	}
	return r.Path[0].Name
}

// String returns the canonical text of the reference without braces.
func (r Reference) String() string {
	return r.Path.String()
}

// Token returns the reference wrapped in braces.
func (r Reference) Token() string {
	return "{{" + r.String() + "}}"
}

// Store maps a scope to its value.
type Store map[string]interface{}

// lookup returns the value of r in the store, or a reason why it is missing.
func (s Store) lookup(r Reference) (interface{}, string) {
	root := map[string]interface{}(s)
	if _, ok := root[r.Scope()]; !ok {
		return nil, fmt.Sprintf("scope %q is not in the variable store", r.Scope())
	}
	for i := 1; i <= len(r.Path); i++ {
		v, ok := value.Get(root, r.Path[:i])
		if !ok {
			return nil, fmt.Sprintf("path %q not found", r.Path[:i].String())
		}
		if i == len(r.Path) {
			return v, ""
		}
	}
	return nil, "empty reference"
}
