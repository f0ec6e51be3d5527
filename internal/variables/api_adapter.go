package variables

import (
	"flewid/internal/api"
)

// APIAdapter exposes the resolver and validator through the api registry.
type APIAdapter struct {
	resolver *Resolver
}

// NewAPIAdapter creates a new API adapter for variable handling
func NewAPIAdapter(resolver *Resolver) *APIAdapter {
	if resolver == nil {
		resolver = NewResolver()
	}
	return &APIAdapter{resolver: resolver}
}

// Register registers this adapter with the API package
func (a *APIAdapter) Register() {
	api.RegisterVariables(a)
}

// Resolve substitutes references in tree using store.
func (a *APIAdapter) Resolve(tree interface{}, store map[string]interface{}) api.ResolveResult {
	return a.resolver.Resolve(tree, Store(store))
}

// ExtractReferences lists the distinct references in tree.
func (a *APIAdapter) ExtractReferences(tree interface{}) []string {
	return a.resolver.ExtractReferences(tree)
}

// ValidateReferences checks reference scopes against the declared names.
func (a *APIAdapter) ValidateReferences(tree interface{}, declared []string) api.ValidationResult {
	return a.resolver.ValidateReferences(tree, declared)
}

// ValidateValues checks values against variable definitions.
func (a *APIAdapter) ValidateValues(values map[string]interface{}, defs []api.VariableDefinition) api.ValidationResult {
	if errs := ValidateDefinitions(defs); len(errs) > 0 {
		return api.NewValidationResult(errs)
	}
	return Validate(values, defs)
}
