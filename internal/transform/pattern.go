package transform

import (
	"regexp"
	"strings"

	"flewid/internal/api"
	"flewid/internal/value"
)

// literalPattern matches the `/pattern/flags` notation.
var literalPattern = regexp.MustCompile(`^/(.*)/([a-z]*)$`)

// runPattern applies pattern globally to the selected text: the named field
// of the input, the input itself when it is text, or its canonical JSON.
func runPattern(pattern string, input interface{}, field string) (interface{}, error) {
	re, err := compilePattern(pattern)
	if err != nil {
		return nil, api.NewError(api.KindSnippetCompileError, pattern, "invalid pattern %q: %v", pattern, err)
	}

	var text string
	switch {
	case field != "":
		v, ok := value.Lookup(input, field)
		if !ok {
			return nil, api.NewError(api.KindNonStringExtractionTarget, field, "field %q does not exist in the input", field)
		}
		s, isString := v.(string)
		if !isString {
			return nil, api.NewError(api.KindNonStringExtractionTarget, field, "field %q is %s, pattern extraction needs a string", field, value.KindOf(v))
		}
		text = s
	default:
		if s, ok := input.(string); ok {
			text = s
		} else if text, err = value.CanonicalJSON(input); err != nil {
			return nil, api.NewError(api.KindNonStringExtractionTarget, "", "input cannot be rendered as text: %v", err)
		}
	}

	matches := matchValues(re, text, -1)
	return map[string]interface{}{
		"matches":      matches,
		"matchCount":   float64(len(matches)),
		"originalText": text,
		"pattern":      pattern,
	}, nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if m := literalPattern.FindStringSubmatch(pattern); m != nil && strings.Trim(m[2], "gimsuy") == "" {
		re, _, err := compileFlags(m[1], m[2])
		return re, err
	}
	return regexp.Compile(pattern)
}
