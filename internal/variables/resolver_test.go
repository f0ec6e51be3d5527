package variables

import (
	"strings"
	"testing"

	"flewid/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore() Store {
	return Store{
		"region": "us-east-1",
		"fetch_logs": map[string]interface{}{
			"output": map[string]interface{}{
				"events": []interface{}{
					map[string]interface{}{"message": "ERROR timeout", "ts": 1700000000000.0},
					map[string]interface{}{"message": "ERROR oom", "ts": 1700000001000.0},
				},
				"count": 2.0,
				"ok":    true,
			},
		},
		"matrix": []interface{}{[]interface{}{1.0, 2.0}, []interface{}{3.0, 4.0}},
	}
}

func TestResolver_ResolveString(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name string
		in   interface{}
		want interface{}
	}{
		{"plain text", "no tokens here", "no tokens here"},
		{"scope only", "{{region}}", "us-east-1"},
		{"whitespace inside braces", "{{  region  }}", "us-east-1"},
		{"exact token keeps number", "{{fetch_logs.output.count}}", 2.0},
		{"exact token keeps bool", "{{fetch_logs.output.ok}}", true},
		{"indexed path", "{{fetch_logs.output.events[1].message}}", "ERROR oom"},
		{"embedded token", "/aws/lambda/{{region}}/fn", "/aws/lambda/us-east-1/fn"},
		{"embedded number", "count={{fetch_logs.output.count}}", "count=2"},
		{"embedded object is canonical json", "first: {{fetch_logs.output.events[0]}}",
			`first: {"message":"ERROR timeout","ts":1700000000000}`},
		{"multiple tokens", "{{region}}-{{fetch_logs.output.count}}", "us-east-1-2"},
		{"nested index", "{{matrix[1][0]}}", 3.0},
		{"invalid token text left alone", "{{ not valid! }}", "{{ not valid! }}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(tt.in, testStore())
			assert.Equal(t, tt.want, res.Value)
			assert.Empty(t, res.Unresolved)
		})
	}
}

func TestResolver_ExactTokenPreservesStructure(t *testing.T) {
	res := NewResolver().Resolve("{{fetch_logs.output.events}}", testStore())
	events, ok := res.Value.([]interface{})
	require.True(t, ok, "expected an array, got %T", res.Value)
	assert.Len(t, events, 2)
}

func TestResolver_ResolveTree(t *testing.T) {
	tree := map[string]interface{}{
		"logGroup": "/aws/lambda/{{region}}",
		"limit":    50,
		"filters": []interface{}{
			"{{fetch_logs.output.count}}",
			map[string]interface{}{"enabled": "{{fetch_logs.output.ok}}"},
		},
		"nothing": nil,
	}

	res := NewResolver().Resolve(tree, testStore())
	require.Empty(t, res.Unresolved)

	assert.Equal(t, map[string]interface{}{
		"logGroup": "/aws/lambda/us-east-1",
		"limit":    50,
		"filters": []interface{}{
			2.0,
			map[string]interface{}{"enabled": true},
		},
		"nothing": nil,
	}, res.Value)

	// input is untouched
	assert.Equal(t, "/aws/lambda/{{region}}", tree["logGroup"])
	assert.Equal(t, "{{fetch_logs.output.count}}", tree["filters"].([]interface{})[0])
}

func TestResolver_ResolvedValueIsACopy(t *testing.T) {
	store := testStore()
	res := NewResolver().Resolve("{{fetch_logs.output}}", store)
	out := res.Value.(map[string]interface{})
	out["count"] = 99.0

	assert.Equal(t, 2.0, store["fetch_logs"].(map[string]interface{})["output"].(map[string]interface{})["count"])
}

func TestResolver_Unresolved(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name       string
		in         interface{}
		wantRef    string
		wantReason string
	}{
		{"missing scope", "{{missing.value}}", "missing.value", "scope"},
		{"missing key", "{{fetch_logs.output.nope}}", "fetch_logs.output.nope", "not found"},
		{"index out of range", "prefix {{fetch_logs.output.events[9].message}}", "fetch_logs.output.events[9].message", "not found"},
		{"descend into scalar", "{{region.name}}", "region.name", "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(tt.in, testStore())
			assert.Equal(t, tt.in, res.Value, "token must be left verbatim")
			require.Len(t, res.Unresolved, 1)
			assert.Equal(t, tt.wantRef, res.Unresolved[0].Reference)
			assert.Contains(t, res.Unresolved[0].Reason, tt.wantReason)
		})
	}
}

func TestResolver_UnresolvedLocation(t *testing.T) {
	tree := map[string]interface{}{
		"query": map[string]interface{}{"items": []interface{}{"ok", "{{nope}}"}},
	}
	res := NewResolver().Resolve(tree, Store{})
	require.Len(t, res.Unresolved, 1)
	assert.Equal(t, "query.items[1]", res.Unresolved[0].Location)
}

func TestResolver_FullStoreLeavesNoTokens(t *testing.T) {
	tree := map[string]interface{}{
		"a": "{{region}}",
		"b": []interface{}{"x {{fetch_logs.output.count}} y", "{{matrix[0]}}"},
		"c": map[string]interface{}{"d": "{{fetch_logs.output.events[0].message}}", "n": 3},
	}
	res := NewResolver().Resolve(tree, testStore())
	require.Empty(t, res.Unresolved)
	assert.Empty(t, NewResolver().ExtractReferences(res.Value))

	out := res.Value.(map[string]interface{})
	assert.Len(t, out, 3)
	assert.Len(t, out["b"], 2)
	assert.Equal(t, 3, out["c"].(map[string]interface{})["n"])
}

func TestResolver_UnresolvedIsIdempotent(t *testing.T) {
	r := NewResolver()
	tree := map[string]interface{}{
		"a": "{{ghost.value}} and {{region}}",
		"b": []interface{}{"{{other[2]}}"},
	}

	once := r.Resolve(tree, testStore())
	twice := r.Resolve(once.Value, testStore())

	assert.Equal(t, once.Value, twice.Value)
	assert.Equal(t, "{{ghost.value}} and us-east-1", once.Value.(map[string]interface{})["a"])
}

func TestResolver_ExtractReferences(t *testing.T) {
	tree := map[string]interface{}{
		"a": "{{step1.output.items[0]}} and {{ region }}",
		"b": []interface{}{"{{region}}", "{{step2.count}}", 5, true},
		"c": map[string]interface{}{"d": "{{bad token!}}", "e": "plain"},
	}

	refs := NewResolver().ExtractReferences(tree)
	assert.Equal(t, []string{"region", "step1.output.items[0]", "step2.count"}, refs)
	assert.Empty(t, NewResolver().ExtractReferences("none"))
}

func TestResolver_ValidateReferences(t *testing.T) {
	r := NewResolver()
	tree := map[string]interface{}{
		"a": "{{region}}",
		"b": "{{fetch_logs.output.events}}",
		"c": "{{ghost.x}}",
	}

	tests := []struct {
		name      string
		declared  []string
		wantValid bool
		wantRefs  []string
	}{
		{"all declared", []string{"region", "fetch_logs", "ghost"}, true, nil},
		{"one undeclared", []string{"region", "fetch_logs"}, false, []string{"ghost.x"}},
		{"nothing declared", nil, false, []string{"fetch_logs.output.events", "ghost.x", "region"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.ValidateReferences(tree, tt.declared)
			assert.Equal(t, tt.wantValid, res.IsValid)
			require.Len(t, res.Errors, len(tt.wantRefs))
			for i, e := range res.Errors {
				assert.Equal(t, api.KindUndeclaredVariableReference, e.Kind)
				assert.Equal(t, tt.wantRefs[i], e.Subject)
			}
		})
	}
}

func TestResolver_ValidateReferencesMessageListsDeclared(t *testing.T) {
	res := NewResolver().ValidateReferences("{{x.y}}", []string{"b", "a"})
	require.Len(t, res.Errors, 1)
	assert.True(t, strings.Contains(res.Errors[0].Message, "declared: a, b"), res.Errors[0].Message)
}

func TestContainsTokens(t *testing.T) {
	assert.True(t, ContainsTokens("x {{a.b}}"))
	assert.False(t, ContainsTokens("x {{ a b }}"))
	assert.False(t, ContainsTokens("plain"))
}
