package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItems() []interface{} {
	return []interface{}{
		map[string]interface{}{"status": "active", "n": 1.0, "meta": map[string]interface{}{"region": "us"}},
		map[string]interface{}{"status": "idle", "n": 2.0, "meta": map[string]interface{}{"region": "eu"}},
		map[string]interface{}{"status": "active", "n": 3.0, "tags": []interface{}{"x", "y"}, "meta": map[string]interface{}{"region": "us"}},
	}
}

func TestUtilities_ClosedSet(t *testing.T) {
	var names []string
	for _, u := range Utilities() {
		names = append(names, u.Name)
		assert.NotEmpty(t, u.Signature)
		assert.NotEmpty(t, u.Description)
	}
	assert.Equal(t, []string{
		"extractPattern", "parseJSON", "formatDate", "filterArray", "groupBy", "sortBy",
		"unique", "sum", "count", "flatten", "slugify", "capitalize",
	}, names)

	_, err := CallUtility("eval", "1+1")
	assert.Error(t, err)
}

func TestCallUtility(t *testing.T) {
	tests := []struct {
		name string
		fn   string
		args []interface{}
		want interface{}
	}{
		{"extract global", "extractPattern", []interface{}{"a1b22", `\d+`, "g"}, []interface{}{"1", "22"}},
		{"extract first", "extractPattern", []interface{}{"a1b22", `\d+`}, "1"},
		{"extract group", "extractPattern", []interface{}{"id=ABC", `id=(\w+)`}, "ABC"},
		{"extract case insensitive", "extractPattern", []interface{}{"Error: x", `error`, "gi"}, []interface{}{"Error"}},
		{"extract no match", "extractPattern", []interface{}{"abc", `\d`}, nil},
		{"extract groups", "extractPattern", []interface{}{"a=1 b=2", `(\w)=(\d)`, "g"},
			[]interface{}{[]interface{}{"a", "1"}, []interface{}{"b", "2"}}},

		{"parse json", "parseJSON", []interface{}{`{"a":[1,2]}`}, map[string]interface{}{"a": []interface{}{1.0, 2.0}}},
		{"parse json failure is null", "parseJSON", []interface{}{`{oops`}, nil},
		{"parse json passes values through", "parseJSON", []interface{}{[]interface{}{1}}, []interface{}{1.0}},

		{"format iso", "formatDate", []interface{}{"2024-03-05T10:20:30Z"}, "2024-03-05T10:20:30.000Z"},
		{"format offset to utc", "formatDate", []interface{}{"2024-03-05T10:20:30+02:00", "iso"}, "2024-03-05T08:20:30.000Z"},
		{"format date", "formatDate", []interface{}{"2024-03-05T10:20:30Z", "date"}, "2024-03-05"},
		{"format time", "formatDate", []interface{}{"2024-03-05T10:20:30Z", "time"}, "10:20:30"},
		{"format epoch ms", "formatDate", []interface{}{0}, "1970-01-01T00:00:00.000Z"},
		{"format epoch ms string", "formatDate", []interface{}{"1700000000000", "date"}, "2023-11-14"},
		{"format date only input", "formatDate", []interface{}{"2024-12-31", "date"}, "2024-12-31"},
		{"format invalid is null", "formatDate", []interface{}{"not a date"}, nil},

		{"filter equal", "filterArray", []interface{}{sampleItems(), "status==active"}, []interface{}{sampleItems()[0], sampleItems()[2]}},
		{"filter not equal", "filterArray", []interface{}{sampleItems(), "status != active"}, []interface{}{sampleItems()[1]}},
		{"filter contains", "filterArray", []interface{}{sampleItems(), `status contains "dl"`}, []interface{}{sampleItems()[1]}},
		{"filter number", "filterArray", []interface{}{sampleItems(), "n==2"}, []interface{}{sampleItems()[1]}},
		{"filter number as text", "filterArray", []interface{}{sampleItems(), `n=="3"`}, []interface{}{sampleItems()[2]}},
		{"filter array contains", "filterArray", []interface{}{sampleItems(), "tags contains y"}, []interface{}{sampleItems()[2]}},
		{"filter nested path", "filterArray", []interface{}{sampleItems(), "meta.region==eu"}, []interface{}{sampleItems()[1]}},

		{"group by", "groupBy", []interface{}{sampleItems(), "status"}, map[string]interface{}{
			"active": []interface{}{sampleItems()[0], sampleItems()[2]},
			"idle":   []interface{}{sampleItems()[1]},
		}},
		{"group by nested", "groupBy", []interface{}{sampleItems(), "meta.region"}, map[string]interface{}{
			"us": []interface{}{sampleItems()[0], sampleItems()[2]},
			"eu": []interface{}{sampleItems()[1]},
		}},
		{"group by value", "groupBy", []interface{}{[]interface{}{"a", "b", "a"}}, map[string]interface{}{
			"a": []interface{}{"a", "a"},
			"b": []interface{}{"b"},
		}},
		{"group by missing key", "groupBy", []interface{}{[]interface{}{map[string]interface{}{}}, "x"}, map[string]interface{}{
			"undefined": []interface{}{map[string]interface{}{}},
		}},

		{"sort desc", "sortBy", []interface{}{sampleItems(), "n", "desc"}, []interface{}{sampleItems()[2], sampleItems()[1], sampleItems()[0]}},
		{"sort asc strings", "sortBy", []interface{}{sampleItems(), "status"}, []interface{}{sampleItems()[0], sampleItems()[2], sampleItems()[1]}},
		{"sort values", "sortBy", []interface{}{[]interface{}{3, 1, 2}}, []interface{}{1.0, 2.0, 3.0}},
		{"sort values desc", "sortBy", []interface{}{[]interface{}{"b", "c", "a"}, "", "desc"}, []interface{}{"c", "b", "a"}},
		{"sort missing keys last", "sortBy", []interface{}{
			[]interface{}{map[string]interface{}{}, map[string]interface{}{"k": 2}, map[string]interface{}{"k": 1}}, "k", "desc"},
			[]interface{}{map[string]interface{}{"k": 2.0}, map[string]interface{}{"k": 1.0}, map[string]interface{}{}}},

		{"unique values", "unique", []interface{}{[]interface{}{1, 1, 2, "1"}}, []interface{}{1.0, 2.0, "1"}},
		{"unique by key", "unique", []interface{}{sampleItems(), "status"}, []interface{}{sampleItems()[0], sampleItems()[1]}},

		{"sum values", "sum", []interface{}{[]interface{}{1, 2, "3", nil, "x"}}, 6.0},
		{"sum by key", "sum", []interface{}{sampleItems(), "n"}, 6.0},
		{"sum empty", "sum", []interface{}{[]interface{}{}}, 0.0},

		{"count all", "count", []interface{}{sampleItems()}, 3.0},
		{"count matching", "count", []interface{}{sampleItems(), "status==active"}, 2.0},

		{"flatten one level", "flatten", []interface{}{[]interface{}{[]interface{}{1, []interface{}{2}}, 3}}, []interface{}{1.0, []interface{}{2.0}, 3.0}},
		{"flatten two levels", "flatten", []interface{}{[]interface{}{[]interface{}{1, []interface{}{2}}, 3}, 2}, []interface{}{1.0, 2.0, 3.0}},
		{"flatten unbounded", "flatten", []interface{}{[]interface{}{1, []interface{}{2, []interface{}{3, []interface{}{4}}}}, math.MaxFloat64},
			[]interface{}{1.0, 2.0, 3.0, 4.0}},
		{"flatten negative", "flatten", []interface{}{[]interface{}{[]interface{}{1}}, -1}, []interface{}{[]interface{}{1.0}}},
		{"flatten zero", "flatten", []interface{}{[]interface{}{[]interface{}{1}}, 0}, []interface{}{[]interface{}{1.0}}},

		{"slugify", "slugify", []interface{}{"  Héllo, Wörld!  2024 "}, "hello-world-2024"},
		{"slugify empty", "slugify", []interface{}{"!!!"}, ""},
		{"capitalize", "capitalize", []interface{}{"hELLO world"}, "Hello world"},
		{"capitalize unicode", "capitalize", []interface{}{"éclair"}, "Éclair"},
		{"capitalize empty", "capitalize", []interface{}{""}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CallUtility(tt.fn, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCallUtility_Errors(t *testing.T) {
	tests := []struct {
		name string
		fn   string
		args []interface{}
		msg  string
	}{
		{"bad pattern", "extractPattern", []interface{}{"x", "("}, "extractPattern"},
		{"bad flag", "extractPattern", []interface{}{"x", "x", "q"}, "unsupported regular expression flag"},
		{"bad date format", "formatDate", []interface{}{"2024-01-01", "weekday"}, "unsupported format"},
		{"filter non array", "filterArray", []interface{}{"text", "a==b"}, "expects an array"},
		{"filter bad condition", "filterArray", []interface{}{[]interface{}{}, "status"}, "invalid condition"},
		{"sort bad order", "sortBy", []interface{}{[]interface{}{}, "k", "sideways"}, "unsupported order"},
		{"count bad condition", "count", []interface{}{[]interface{}{}, "??"}, "invalid condition"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CallUtility(tt.fn, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestCallUtility_DoesNotMutateInput(t *testing.T) {
	items := sampleItems()
	_, err := CallUtility("sortBy", items, "n", "desc")
	require.NoError(t, err)
	assert.Equal(t, sampleItems(), items)
}
