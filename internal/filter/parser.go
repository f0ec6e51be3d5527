package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"flewid/internal/api"
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	functionPattern   = regexp.MustCompile(`(?s)^([A-Za-z_][A-Za-z0-9_]*)\s*\((.*)\)$`)
	numberPattern     = regexp.MustCompile(`^-?\d+(\.\d+)?([eE][+-]?\d+)?$`)
)

// form describes one supported syntax for help messages.
type form struct {
	syntax  string
	example string
}

var supportedForms = []form{
	{"attribute = value", "Status=ACTIVE"},
	{"attribute_exists(attribute)", "attribute_exists(Email)"},
	{"contains(attribute, value)", "contains(Name, John)"},
	{"begins_with(attribute, value)", `begins_with(OrderId, "2024-")`},
}

// functionArity is the number of arguments each function form takes.
var functionArity = map[PredicateKind]int{
	KindAttributeExists: 1,
	KindContains:        2,
	KindBeginsWith:      2,
}

// Parse turns raw filter text into a Predicate. Function forms are
// recognized by their name first so that values containing `=` inside a
// function call are not mistaken for an equality.
func Parse(raw string) (Predicate, *api.Error) {
	expr := strings.TrimSpace(raw)
	if expr == "" {
		return nil, syntaxError(raw)
	}

	if m := functionPattern.FindStringSubmatch(expr); m != nil {
		kind := PredicateKind(m[1])
		if arity, ok := functionArity[kind]; ok {
			return parseFunction(raw, kind, arity, m[2])
		}
	}

	if idx := strings.Index(expr, "="); idx >= 0 {
		return parseEquality(expr[:idx], strings.TrimPrefix(expr[idx+1:], "="))
	}

	return nil, syntaxError(raw)
}

func parseEquality(rawName, rawValue string) (Predicate, *api.Error) {
	name := strings.TrimSpace(rawName)
	if name == "" {
		return nil, api.NewError(api.KindEmptyFilterValue, "",
			"attribute name is missing before '='; write the attribute first, for example: Status=ACTIVE")
	}
	if err := checkIdentifier(name); err != nil {
		return nil, err
	}
	val, err := parseValue(name, rawValue)
	if err != nil {
		return nil, err
	}
	return Equals{Name: name, Val: val}, nil
}

func parseFunction(raw string, kind PredicateKind, arity int, argText string) (Predicate, *api.Error) {
	args := splitArgs(argText)
	if len(args) != arity {
		return nil, api.NewError(api.KindInvalidFilterSyntax, raw,
			"%s takes %d argument(s), got %d. %s", kind, arity, len(args), formsHelp())
	}

	name := strings.TrimSpace(args[0])
	if name == "" {
		return nil, api.NewError(api.KindEmptyFilterValue, "",
			"%s is missing its attribute name, for example: %s", kind, exampleFor(kind))
	}
	if err := checkIdentifier(name); err != nil {
		return nil, err
	}

	if kind == KindAttributeExists {
		return AttributeExists{Name: name}, nil
	}

	val, err := parseValue(name, args[1])
	if err != nil {
		return nil, err
	}
	if kind == KindContains {
		return Contains{Name: name, Val: val}, nil
	}
	return BeginsWith{Name: name, Val: val}, nil
}

func checkIdentifier(name string) *api.Error {
	if identifierPattern.MatchString(name) {
		return nil
	}
	return api.NewError(api.KindInvalidIdentifier, name,
		"invalid attribute name %q: names must start with a letter or underscore and contain only letters, digits and underscores (for example: Status)", name)
}

// parseValue strips matching quotes. Quoted text is always a string;
// unquoted booleans and numbers that print back unchanged keep their type,
// so codes like 007 stay text.
func parseValue(name, raw string) (interface{}, *api.Error) {
	text := strings.TrimSpace(raw)
	quoted := false
	if len(text) >= 2 {
		first, last := text[0], text[len(text)-1]
		if (first == '"' || first == '\'') && first == last {
			text = text[1 : len(text)-1]
			quoted = true
		}
	}
	if text == "" {
		return nil, api.NewError(api.KindEmptyFilterValue, name,
			"value for attribute %q is empty; provide a value, for example: %s=ACTIVE", name, name)
	}
	if quoted {
		return text, nil
	}
	if numberPattern.MatchString(text) {
		if f, err := strconv.ParseFloat(text, 64); err == nil && strconv.FormatFloat(f, 'f', -1, 64) == text {
			return f, nil
		}
	}
	switch text {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return text, nil
}

// splitArgs splits on commas that are not inside quotes.
func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var args []string
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ',':
			args = append(args, s[start:i])
			start = i + 1
		}
	}
	return append(args, s[start:])
}

func syntaxError(raw string) *api.Error {
	return api.NewError(api.KindInvalidFilterSyntax, raw,
		"unsupported filter expression %q. %s", strings.TrimSpace(raw), formsHelp())
}

func formsHelp() string {
	var sb strings.Builder
	sb.WriteString("Supported forms:")
	for _, f := range supportedForms {
		fmt.Fprintf(&sb, "\n  %-31s e.g. %s", f.syntax, f.example)
	}
	return sb.String()
}

func exampleFor(kind PredicateKind) string {
	for _, f := range supportedForms {
		if strings.HasPrefix(f.syntax, string(kind)+"(") {
			return f.example
		}
	}
	return supportedForms[0].example
}
