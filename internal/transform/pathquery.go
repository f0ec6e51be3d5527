package transform

import (
	"strings"

	"github.com/ohler55/ojg/jp"

	"flewid/internal/api"
)

// runPathQuery evaluates a JSONPath query. Queries without the `$` root
// marker are taken relative to the root. A query that fans out (wildcard,
// descent, union, slice or filter) returns every match as an array; a plain
// descent returns the single match or null.
func runPathQuery(query string, input interface{}) (interface{}, error) {
	q := strings.TrimSpace(query)
	switch {
	case q == "":
		return nil, api.NewError(api.KindSnippetCompileError, "", "path query is empty; start it with the root marker, for example: $.items[*].name")
	case strings.HasPrefix(q, "$"):
	case strings.HasPrefix(q, "."), strings.HasPrefix(q, "["):
		q = "$" + q
	default:
		q = "$." + q
	}

	x, err := jp.ParseString(q)
	if err != nil {
		return nil, api.NewError(api.KindSnippetCompileError, query, "invalid path query %q: %v", query, err)
	}

	results := x.Get(input)
	if broadcasts(x) {
		if results == nil {
			results = []interface{}{}
		}
		return results, nil
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func broadcasts(x jp.Expr) bool {
	for _, frag := range x {
		switch frag.(type) {
		case jp.Wildcard, jp.Descent, jp.Union, jp.Slice, *jp.Filter:
			return true
		}
	}
	return false
}
