package templates

import (
	"flewid/internal/api"
	"flewid/internal/variables"
	"flewid/pkg/logging"
)

// Catalog supplies templates by id.
type Catalog interface {
	GetTemplate(id string) (*api.Template, error)
}

// Instantiator turns catalog templates into concrete step and edge lists.
type Instantiator struct {
	catalog  Catalog
	resolver *variables.Resolver
}

// NewInstantiator creates an instantiator reading from catalog.
func NewInstantiator(catalog Catalog, resolver *variables.Resolver) *Instantiator {
	if resolver == nil {
		resolver = variables.NewResolver()
	}
	return &Instantiator{catalog: catalog, resolver: resolver}
}

// Instantiate applies defaults to supplied, validates every variable and
// substitutes the result into each step configuration. Validation failures
// are returned together as one VariableValidationFailed error and nothing is
// substituted. References to other steps are left for the executor and
// listed in the result.
func (in *Instantiator) Instantiate(id string, supplied map[string]interface{}) (*api.Instantiation, error) {
	tmpl, err := in.catalog.GetTemplate(id)
	if err != nil {
		return nil, err
	}

	merged := variables.ApplyDefaults(normalizeValues(supplied), tmpl.Variables)
	if result := variables.Validate(merged, tmpl.Variables); !result.IsValid {
		verr := api.NewError(api.KindVariableValidationFailed, id,
			"template %q: %d variable(s) failed validation", id, len(result.Errors))
		verr.Violations = result.Errors
		return nil, verr
	}

	out := &api.Instantiation{
		TemplateID: tmpl.ID,
		Variables:  merged,
		Steps:      make([]api.TemplateStep, 0, len(tmpl.Steps)),
		Edges:      append([]api.TemplateEdge{}, tmpl.Edges...),
	}

	for _, step := range tmpl.Steps {
		resolved := step
		if step.Config != nil {
			res := in.resolver.Resolve(step.Config, variables.Store(merged))
			resolved.Config, _ = res.Value.(map[string]interface{})
			for _, u := range res.Unresolved {
				u.Location = joinStepLocation(step.ID, u.Location)
				out.Unresolved = append(out.Unresolved, u)
			}
		}
		out.Steps = append(out.Steps, resolved)
	}

	logging.Debug("TemplateInstantiator", "Instantiated template %s with %d steps (%d references left for runtime)",
		id, len(out.Steps), len(out.Unresolved))
	return out, nil
}

func joinStepLocation(stepID, loc string) string {
	if loc == "" {
		return stepID
	}
	return stepID + "." + loc
}

// normalizeValues brings caller-supplied values into the canonical value
// domain. Explicit nulls are dropped so defaults apply to them.
func normalizeValues(values map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		if v == nil {
			continue
		}
		out[k] = normalized(v)
	}
	return out
}
