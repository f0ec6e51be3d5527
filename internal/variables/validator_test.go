package variables

import (
	"testing"

	"flewid/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestValidate(t *testing.T) {
	defs := []api.VariableDefinition{
		{Name: "logGroup", Type: api.VariableTypeString, Required: true,
			Validation: &api.ValidationRules{Pattern: `^/aws/`}},
		{Name: "limit", Type: api.VariableTypeNumber,
			Validation: &api.ValidationRules{Min: ptr(0), Max: ptr(100)}},
		{Name: "level", Type: api.VariableTypeString,
			Validation: &api.ValidationRules{Options: []interface{}{"ERROR", "WARN"}}},
		{Name: "tags", Type: api.VariableTypeArray},
		{Name: "verbose", Type: api.VariableTypeBoolean},
	}

	tests := []struct {
		name      string
		values    map[string]interface{}
		wantKinds []api.ErrorKind
	}{
		{
			name:   "all valid",
			values: map[string]interface{}{"logGroup": "/aws/lambda/x", "limit": 10.0, "level": "WARN", "tags": []interface{}{"a"}, "verbose": true},
		},
		{
			name:   "integer accepted as number",
			values: map[string]interface{}{"logGroup": "/aws/x", "limit": 10},
		},
		{
			name:      "range violation only",
			values:    map[string]interface{}{"logGroup": "/aws/x", "limit": 150.0},
			wantKinds: []api.ErrorKind{api.KindVariableRangeViolation},
		},
		{
			name:      "range plus missing required accumulate",
			values:    map[string]interface{}{"limit": 150.0},
			wantKinds: []api.ErrorKind{api.KindMissingRequiredVariable, api.KindVariableRangeViolation},
		},
		{
			name:      "pattern mismatch",
			values:    map[string]interface{}{"logGroup": "lambda/x"},
			wantKinds: []api.ErrorKind{api.KindVariablePatternMismatch},
		},
		{
			name:      "enum violation",
			values:    map[string]interface{}{"logGroup": "/aws/x", "level": "DEBUG"},
			wantKinds: []api.ErrorKind{api.KindVariableEnumViolation},
		},
		{
			name:      "type mismatches",
			values:    map[string]interface{}{"logGroup": 5.0, "tags": "a,b", "verbose": "yes"},
			wantKinds: []api.ErrorKind{api.KindVariableTypeMismatch, api.KindVariableTypeMismatch, api.KindVariableTypeMismatch},
		},
		{
			name:      "nil counts as missing",
			values:    map[string]interface{}{"logGroup": nil},
			wantKinds: []api.ErrorKind{api.KindMissingRequiredVariable},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.values, defs)
			assert.Equal(t, len(tt.wantKinds) == 0, res.IsValid)
			assert.Equal(t, tt.wantKinds, nilIfEmpty(res.Errors.Kinds()))
		})
	}
}

func TestValidate_MinAndMaxIndependent(t *testing.T) {
	// An inverted range lets both bounds fire for a single value.
	def := api.VariableDefinition{Name: "n", Type: api.VariableTypeNumber,
		Validation: &api.ValidationRules{Min: ptr(10), Max: ptr(5)}}

	errs := CheckValue(def, 7.0)
	assert.Equal(t, []api.ErrorKind{api.KindVariableRangeViolation, api.KindVariableRangeViolation}, errs.Kinds())

	errs = CheckValue(def, 20.0)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "above the maximum 5")

	errs = CheckValue(def, 1.0)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "below the minimum 10")
}

func TestValidate_ErrorNamesVariable(t *testing.T) {
	defs := []api.VariableDefinition{{Name: "limit", Type: api.VariableTypeNumber,
		Validation: &api.ValidationRules{Max: ptr(100)}}}
	res := Validate(map[string]interface{}{"limit": 150.0}, defs)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "limit", res.Errors[0].Subject)
	assert.Contains(t, res.Errors[0].Message, `"limit"`)
	assert.Contains(t, res.Errors[0].Message, "150")
}

func TestApplyDefaults(t *testing.T) {
	defs := []api.VariableDefinition{
		{Name: "region", Type: api.VariableTypeString, Default: "us-east-1"},
		{Name: "limit", Type: api.VariableTypeNumber, Default: 25},
		{Name: "tags", Type: api.VariableTypeArray, Default: []interface{}{"a"}},
		{Name: "noDefault", Type: api.VariableTypeString},
	}
	supplied := map[string]interface{}{"region": "eu-west-1"}

	merged := ApplyDefaults(supplied, defs)
	assert.Equal(t, map[string]interface{}{
		"region": "eu-west-1",
		"limit":  25,
		"tags":   []interface{}{"a"},
	}, merged)
	assert.Len(t, supplied, 1, "supplied map must not be modified")

	merged["tags"].([]interface{})[0] = "changed"
	assert.Equal(t, "a", defs[2].Default.([]interface{})[0])
}

func TestValidateDefinitions(t *testing.T) {
	tests := []struct {
		name    string
		defs    []api.VariableDefinition
		wantErr int
	}{
		{"valid", []api.VariableDefinition{{Name: "a", Type: api.VariableTypeString, Default: "x"}}, 0},
		{"missing name", []api.VariableDefinition{{Type: api.VariableTypeString}}, 1},
		{"duplicate", []api.VariableDefinition{{Name: "a", Type: api.VariableTypeString}, {Name: "a", Type: api.VariableTypeNumber}}, 1},
		{"unknown type", []api.VariableDefinition{{Name: "a", Type: "date"}}, 1},
		{"bad pattern", []api.VariableDefinition{{Name: "a", Type: api.VariableTypeString, Validation: &api.ValidationRules{Pattern: "("}}}, 1},
		{"inverted bounds", []api.VariableDefinition{{Name: "a", Type: api.VariableTypeNumber, Validation: &api.ValidationRules{Min: ptr(5), Max: ptr(1)}}}, 1},
		{"default wrong type", []api.VariableDefinition{{Name: "a", Type: api.VariableTypeNumber, Default: "ten"}}, 1},
		{"default outside options", []api.VariableDefinition{{Name: "a", Type: api.VariableTypeString, Default: "c",
			Validation: &api.ValidationRules{Options: []interface{}{"a", "b"}}}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateDefinitions(tt.defs)
			assert.Len(t, errs, tt.wantErr)
			for _, e := range errs {
				assert.Equal(t, api.KindInvalidVariableDefinition, e.Kind)
			}
		})
	}
}

func TestAPIAdapter(t *testing.T) {
	adapter := NewAPIAdapter(nil)
	adapter.Register()
	t.Cleanup(func() { api.RegisterVariables(nil) })

	h := api.GetVariables()
	require.NotNil(t, h)

	res := h.Resolve("{{a.b}}", map[string]interface{}{"a": map[string]interface{}{"b": 1.0}})
	assert.Equal(t, 1.0, res.Value)

	bad := h.ValidateValues(nil, []api.VariableDefinition{{Name: "x", Type: "weird"}})
	assert.False(t, bad.IsValid)
	assert.Equal(t, api.KindInvalidVariableDefinition, bad.Errors[0].Kind)
}

func nilIfEmpty(k []api.ErrorKind) []api.ErrorKind {
	if len(k) == 0 {
		return nil
	}
	return k
}
