package variables

import (
	"fmt"
	"regexp"
	"strings"

	"flewid/internal/api"
	"flewid/internal/value"
)

// ApplyDefaults returns a new map holding the supplied values plus the
// default of every declared variable the caller omitted.
func ApplyDefaults(values map[string]interface{}, defs []api.VariableDefinition) map[string]interface{} {
	merged := make(map[string]interface{}, len(values)+len(defs))
	for k, v := range values {
		merged[k] = v
	}
	for _, def := range defs {
		if _, ok := merged[def.Name]; ok {
			continue
		}
		if def.Default != nil {
			merged[def.Name] = value.Clone(def.Default)
		}
	}
	return merged
}

// Validate checks values against their definitions. Every applicable check
// runs and all violations are returned together. A required variable that is
// absent is reported once and its other checks are skipped.
func Validate(values map[string]interface{}, defs []api.VariableDefinition) api.ValidationResult {
	var errs api.Errors
	for _, def := range defs {
		v, present := values[def.Name]
		if !present || v == nil {
			if def.Required {
				errs = append(errs, api.NewError(api.KindMissingRequiredVariable, def.Name,
					"variable %q is required", def.Name))
			}
			continue
		}
		errs = append(errs, CheckValue(def, v)...)
	}
	return api.NewValidationResult(errs)
}

// CheckValue validates a single present value against its definition.
func CheckValue(def api.VariableDefinition, v interface{}) api.Errors {
	var errs api.Errors

	kind := value.KindOf(v)
	if want, ok := kindForType(def.Type); !ok {
		errs = append(errs, api.NewError(api.KindInvalidVariableDefinition, def.Name,
			"variable %q declares unknown type %q (expected one of: string, number, boolean, array, object)", def.Name, def.Type))
	} else if kind != want {
		errs = append(errs, api.NewError(api.KindVariableTypeMismatch, def.Name,
			"variable %q must be of type %s, got %s", def.Name, def.Type, kind))
	}

	rules := def.Validation
	if rules == nil {
		return errs
	}

	if rules.Pattern != "" && kind == value.KindString {
		re, err := regexp.Compile(rules.Pattern)
		switch {
		case err != nil:
			errs = append(errs, api.NewError(api.KindInvalidVariableDefinition, def.Name,
				"variable %q has an invalid pattern %q: %v", def.Name, rules.Pattern, err))
		case !re.MatchString(v.(string)):
			errs = append(errs, api.NewError(api.KindVariablePatternMismatch, def.Name,
				"variable %q value %q does not match pattern %s", def.Name, v, rules.Pattern))
		}
	}

	if n, ok := value.AsFloat(v); ok {
		if rules.Min != nil && n < *rules.Min {
			errs = append(errs, api.NewError(api.KindVariableRangeViolation, def.Name,
				"variable %q value %s is below the minimum %s", def.Name, value.FormatNumber(n), value.FormatNumber(*rules.Min)))
		}
		if rules.Max != nil && n > *rules.Max {
			errs = append(errs, api.NewError(api.KindVariableRangeViolation, def.Name,
				"variable %q value %s is above the maximum %s", def.Name, value.FormatNumber(n), value.FormatNumber(*rules.Max)))
		}
	}

	if len(rules.Options) > 0 && !containsValue(rules.Options, v) {
		errs = append(errs, api.NewError(api.KindVariableEnumViolation, def.Name,
			"variable %q value %s is not one of the allowed options: %s", def.Name, value.Stringify(v), formatOptions(rules.Options)))
	}

	return errs
}

// ValidateDefinitions checks the definitions themselves: names are present
// and unique, types are known, patterns compile, bounds are ordered and any
// default satisfies its own definition.
func ValidateDefinitions(defs []api.VariableDefinition) api.Errors {
	var errs api.Errors
	seen := make(map[string]bool, len(defs))
	for i, def := range defs {
		if def.Name == "" {
			errs = append(errs, api.NewError(api.KindInvalidVariableDefinition, fmt.Sprintf("variables[%d]", i),
				"variable at position %d has no name", i))
			continue
		}
		if seen[def.Name] {
			errs = append(errs, api.NewError(api.KindInvalidVariableDefinition, def.Name,
				"variable %q is declared more than once", def.Name))
		}
		seen[def.Name] = true

		if _, ok := kindForType(def.Type); !ok {
			errs = append(errs, api.NewError(api.KindInvalidVariableDefinition, def.Name,
				"variable %q declares unknown type %q (expected one of: string, number, boolean, array, object)", def.Name, def.Type))
			continue
		}

		if rules := def.Validation; rules != nil {
			if rules.Pattern != "" {
				if _, err := regexp.Compile(rules.Pattern); err != nil {
					errs = append(errs, api.NewError(api.KindInvalidVariableDefinition, def.Name,
						"variable %q has an invalid pattern %q: %v", def.Name, rules.Pattern, err))
					continue
				}
			}
			if rules.Min != nil && rules.Max != nil && *rules.Min > *rules.Max {
				errs = append(errs, api.NewError(api.KindInvalidVariableDefinition, def.Name,
					"variable %q has min %s greater than max %s", def.Name, value.FormatNumber(*rules.Min), value.FormatNumber(*rules.Max)))
			}
		}

		if def.Default != nil {
			for _, e := range CheckValue(def, def.Default) {
				errs = append(errs, api.NewError(api.KindInvalidVariableDefinition, def.Name,
					"default of variable %q is invalid: %s", def.Name, e.Message))
			}
		}
	}
	return errs
}

func kindForType(t api.VariableType) (value.Kind, bool) {
	switch t {
	case api.VariableTypeString:
		return value.KindString, true
	case api.VariableTypeNumber:
		return value.KindNumber, true
	case api.VariableTypeBoolean:
		return value.KindBool, true
	case api.VariableTypeArray:
		return value.KindArray, true
	case api.VariableTypeObject:
		return value.KindObject, true
	default:
		return value.KindUnknown, false
	}
}

func containsValue(options []interface{}, v interface{}) bool {
	for _, opt := range options {
		if value.Equal(opt, v) {
			return true
		}
	}
	return false
}

func formatOptions(options []interface{}) string {
	parts := make([]string, 0, len(options))
	for _, opt := range options {
		parts = append(parts, value.Stringify(opt))
	}
	return strings.Join(parts, ", ")
}
