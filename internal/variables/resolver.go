package variables

import (
	"fmt"
	"sort"
	"strings"

	"flewid/internal/api"
	"flewid/internal/value"
	"flewid/pkg/logging"
)

// Resolver walks configuration trees and substitutes variable tokens.
// A Resolver holds no state and is safe for concurrent use.
type Resolver struct{}

// NewResolver creates a new variable resolver
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns a copy of tree with every resolvable token substituted.
// The input is never modified. Unresolvable tokens stay verbatim and are
// listed in the result.
func (r *Resolver) Resolve(tree interface{}, store Store) api.ResolveResult {
	var unresolved []api.UnresolvedReference
	out := r.resolveValue(tree, store, "", &unresolved)
	for _, u := range unresolved {
		logging.Warn("VariableResolver", "Unresolved variable reference {{%s}} at %s: %s", u.Reference, locationOrRoot(u.Location), u.Reason)
	}
	return api.ResolveResult{Value: out, Unresolved: unresolved}
}

func (r *Resolver) resolveValue(v interface{}, store Store, loc string, unresolved *[]api.UnresolvedReference) interface{} {
	switch node := v.(type) {
	case string:
		return r.resolveString(node, store, loc, unresolved)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(node))
		for _, key := range value.SortedKeys(node) {
			out[key] = r.resolveValue(node[key], store, joinLocation(loc, key), unresolved)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(node))
		for i, item := range node {
			out[i] = r.resolveValue(item, store, fmt.Sprintf("%s[%d]", loc, i), unresolved)
		}
		return out
	default:
		// Numbers, booleans and nil pass through untouched
		return v
	}
}

func (r *Resolver) resolveString(s string, store Store, loc string, unresolved *[]api.UnresolvedReference) interface{} {
	matches := tokenPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	// A leaf that is exactly one token keeps the looked-up value's type.
	if len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(s) {
		ref, err := ParseReference(s[matches[0][2]:matches[0][3]])
		if err != nil {
			return s
		}
		val, reason := store.lookup(ref)
		if reason != "" {
			*unresolved = append(*unresolved, api.UnresolvedReference{Reference: ref.String(), Location: loc, Reason: reason})
			return s
		}
		return value.Clone(val)
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(s[last:m[0]])
		last = m[1]

		token := s[m[0]:m[1]]
		ref, err := ParseReference(s[m[2]:m[3]])
		if err != nil {
			sb.WriteString(token)
			continue
		}
		val, reason := store.lookup(ref)
		if reason != "" {
			*unresolved = append(*unresolved, api.UnresolvedReference{Reference: ref.String(), Location: loc, Reason: reason})
			sb.WriteString(token)
			continue
		}
		sb.WriteString(value.Stringify(val))
	}
	sb.WriteString(s[last:])
	return sb.String()
}

// ExtractReferences returns every distinct reference in tree, sorted.
func (r *Resolver) ExtractReferences(tree interface{}) []string {
	set := make(map[string]struct{})
	for _, ref := range r.references(tree) {
		set[ref.String()] = struct{}{}
	}

	refs := make([]string, 0, len(set))
	for ref := range set {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

// ValidateReferences checks that the scope of every reference in tree is one
// of the declared names.
func (r *Resolver) ValidateReferences(tree interface{}, declared []string) api.ValidationResult {
	known := make(map[string]struct{}, len(declared))
	for _, name := range declared {
		known[name] = struct{}{}
	}
	declaredList := append([]string(nil), declared...)
	sort.Strings(declaredList)

	var errs api.Errors
	for _, raw := range r.ExtractReferences(tree) {
		ref, err := ParseReference(raw)
		if err != nil {
			continue
		}
		if _, ok := known[ref.Scope()]; ok {
			continue
		}
		errs = append(errs, api.NewError(api.KindUndeclaredVariableReference, raw,
			"reference {{%s}} uses undeclared name %q (declared: %s)", raw, ref.Scope(), formatDeclared(declaredList)))
	}
	return api.NewValidationResult(errs)
}

func (r *Resolver) references(v interface{}) []Reference {
	var refs []Reference
	switch node := v.(type) {
	case string:
		for _, m := range tokenPattern.FindAllStringSubmatch(node, -1) {
			ref, err := ParseReference(m[1])
			if err != nil {
				continue
			}
			refs = append(refs, ref)
		}
	case map[string]interface{}:
		for _, item := range node {
			refs = append(refs, r.references(item)...)
		}
	case []interface{}:
		for _, item := range node {
			refs = append(refs, r.references(item)...)
		}
	}
	return refs
}

// ContainsTokens reports whether s holds at least one parseable reference.
func ContainsTokens(s string) bool {
	for _, m := range tokenPattern.FindAllStringSubmatch(s, -1) {
		if _, err := ParseReference(m[1]); err == nil {
			return true
		}
	}
	return false
}

func joinLocation(loc, key string) string {
	if loc == "" {
		return key
	}
	return loc + "." + key
}

func locationOrRoot(loc string) string {
	if loc == "" {
		return "<root>"
	}
	return loc
}

func formatDeclared(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
