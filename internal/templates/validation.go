package templates

import (
	"fmt"

	"flewid/internal/api"
	"flewid/internal/variables"
)

// ValidateTemplate checks the structure of a template: identity fields, step
// ids, edge endpoints, variable definitions and that every reference in a
// step configuration names either a declared variable or another step.
// All problems are reported together.
func ValidateTemplate(tmpl api.Template) api.ValidationResult {
	var errs api.Errors

	if tmpl.ID == "" {
		errs = append(errs, api.NewError(api.KindInvalidTemplate, "id", "template id is required"))
	}
	if tmpl.Name == "" {
		errs = append(errs, api.NewError(api.KindInvalidTemplate, "name", "template name is required"))
	}
	if len(tmpl.Steps) == 0 {
		errs = append(errs, api.NewError(api.KindInvalidTemplate, "steps", "template must have at least one step"))
	}

	variableNames := make(map[string]bool, len(tmpl.Variables))
	for _, def := range tmpl.Variables {
		variableNames[def.Name] = true
	}

	stepIDs := make(map[string]bool, len(tmpl.Steps))
	for i, step := range tmpl.Steps {
		subject := fmt.Sprintf("steps[%d]", i)
		switch {
		case step.ID == "":
			errs = append(errs, api.NewError(api.KindInvalidTemplate, subject, "step %d: id is required", i))
			continue
		case stepIDs[step.ID]:
			errs = append(errs, api.NewError(api.KindInvalidTemplate, step.ID, "step id %q is used more than once", step.ID))
		case variableNames[step.ID]:
			errs = append(errs, api.NewError(api.KindInvalidTemplate, step.ID, "step id %q collides with a variable of the same name", step.ID))
		}
		if step.Type == "" {
			errs = append(errs, api.NewError(api.KindInvalidTemplate, step.ID, "step %q: type is required", step.ID))
		}
		stepIDs[step.ID] = true
	}

	for i, edge := range tmpl.Edges {
		subject := edge.ID
		if subject == "" {
			subject = fmt.Sprintf("edges[%d]", i)
		}
		if !stepIDs[edge.Source] {
			errs = append(errs, api.NewError(api.KindInvalidTemplate, subject, "edge %s: unknown source step %q", subject, edge.Source))
		}
		if !stepIDs[edge.Target] {
			errs = append(errs, api.NewError(api.KindInvalidTemplate, subject, "edge %s: unknown target step %q", subject, edge.Target))
		}
	}

	errs = append(errs, variables.ValidateDefinitions(tmpl.Variables)...)

	declared := make([]string, 0, len(variableNames)+len(stepIDs))
	for name := range variableNames {
		declared = append(declared, name)
	}
	for id := range stepIDs {
		declared = append(declared, id)
	}
	refs := variables.NewResolver().ValidateReferences(stepConfigs(tmpl.Steps), declared)
	errs = append(errs, refs.Errors...)

	return api.NewValidationResult(errs)
}

// stepConfigs collects step configurations keyed by step id so reference
// errors carry a readable location.
func stepConfigs(steps []api.TemplateStep) map[string]interface{} {
	tree := make(map[string]interface{}, len(steps))
	for i, step := range steps {
		key := step.ID
		if key == "" {
			key = fmt.Sprintf("steps[%d]", i)
		}
		tree[key] = step.Config
	}
	return tree
}

// validationError wraps a failed result as a single InvalidTemplate error.
func validationError(id string, result api.ValidationResult) *api.Error {
	err := api.NewError(api.KindInvalidTemplate, id, "template %q is invalid", id)
	err.Violations = result.Errors
	return err
}
