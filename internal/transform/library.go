package transform

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	xtransform "golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"flewid/internal/api"
	"flewid/internal/value"
)

// utilityFunc is the Go implementation of a library function. Arguments are
// canonical values; missing trailing arguments are absent from args.
type utilityFunc func(args []interface{}) (interface{}, error)

type utility struct {
	info api.UtilityFunction
	fn   utilityFunc
}

// library is the closed set of helpers available to transform snippets.
var library = []utility{
	{api.UtilityFunction{Name: "extractPattern", Signature: "extractPattern(text, pattern, flags?)",
		Description: "Regular expression match. Flag g returns every match; i, m and s set matching modes."}, extractPattern},
	{api.UtilityFunction{Name: "parseJSON", Signature: "parseJSON(text)",
		Description: "Parses JSON text, returning null when the text is not valid JSON."}, parseJSON},
	{api.UtilityFunction{Name: "formatDate", Signature: "formatDate(value, format?)",
		Description: "Formats a timestamp or epoch milliseconds as iso (default), date or time. Returns null for invalid dates."}, formatDate},
	{api.UtilityFunction{Name: "filterArray", Signature: "filterArray(array, condition)",
		Description: `Keeps items matching field==value, field!=value or field contains "text".`}, filterArray},
	{api.UtilityFunction{Name: "groupBy", Signature: "groupBy(array, keyPath)",
		Description: "Groups items into an object keyed by the value at keyPath."}, groupBy},
	{api.UtilityFunction{Name: "sortBy", Signature: "sortBy(array, keyPath, order?)",
		Description: "Stable sort by the value at keyPath, order asc (default) or desc."}, sortBy},
	{api.UtilityFunction{Name: "unique", Signature: "unique(array, keyPath?)",
		Description: "Removes duplicates, comparing whole items or the value at keyPath. The first occurrence wins."}, unique},
	{api.UtilityFunction{Name: "sum", Signature: "sum(array, keyPath?)",
		Description: "Adds up numbers, or the numbers at keyPath. Numeric strings count, other values are ignored."}, sum},
	{api.UtilityFunction{Name: "count", Signature: "count(array, condition?)",
		Description: "Number of items, or of items matching a filterArray condition."}, count},
	{api.UtilityFunction{Name: "flatten", Signature: "flatten(array, depth?)",
		Description: "Flattens nested arrays up to depth levels (default 1)."}, flatten},
	{api.UtilityFunction{Name: "slugify", Signature: "slugify(text)",
		Description: "Lower-case, accent-free, dash-separated form of text."}, slugify},
	{api.UtilityFunction{Name: "capitalize", Signature: "capitalize(text)",
		Description: "Upper-cases the first letter and lower-cases the rest."}, capitalize},
}

var libraryIndex = func() map[string]utility {
	idx := make(map[string]utility, len(library))
	for _, u := range library {
		idx[u.info.Name] = u
	}
	return idx
}()

// Utilities lists the library functions in a stable order.
func Utilities() []api.UtilityFunction {
	out := make([]api.UtilityFunction, 0, len(library))
	for _, u := range library {
		out = append(out, u.info)
	}
	return out
}

// CallUtility invokes a library function by name. Arguments are normalized
// into the canonical value domain first.
func CallUtility(name string, args ...interface{}) (interface{}, error) {
	u, ok := libraryIndex[name]
	if !ok {
		return nil, fmt.Errorf("unknown utility function %q", name)
	}
	normalized := make([]interface{}, len(args))
	for i, a := range args {
		v, err := value.Normalize(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", name, i+1, err)
		}
		normalized[i] = v
	}
	return u.fn(normalized)
}

func arg(args []interface{}, i int) interface{} {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func stringArg(args []interface{}, i int, def string) string {
	v := arg(args, i)
	if v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return value.Stringify(v)
}

func arrayArg(fn string, args []interface{}) ([]interface{}, error) {
	arr, ok := arg(args, 0).([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s expects an array as its first argument, got %s", fn, value.KindOf(arg(args, 0)))
	}
	return arr, nil
}

func keyOf(item interface{}, keyPath string) interface{} {
	if keyPath == "" {
		return item
	}
	v, ok := value.Lookup(item, keyPath)
	if !ok {
		return nil
	}
	return v
}

// compileFlags builds a regexp from a pattern and JavaScript-style flags.
func compileFlags(pattern, flags string) (*regexp.Regexp, bool, error) {
	global := false
	var inline strings.Builder
	for _, f := range flags {
		switch f {
		case 'g':
			global = true
		case 'i', 'm', 's':
			inline.WriteRune(f)
		case 'u', 'y':
			// accepted for compatibility, no effect
		default:
			return nil, false, fmt.Errorf("unsupported regular expression flag %q", f)
		}
	}
	if inline.Len() > 0 {
		pattern = "(?" + inline.String() + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, false, err
	}
	return re, global, nil
}

// matchValues shapes regexp matches: full matches when the pattern has no
// groups, the group value with one group, and the group list otherwise.
func matchValues(re *regexp.Regexp, text string, limit int) []interface{} {
	groups := re.NumSubexp()
	out := []interface{}{}
	for _, m := range re.FindAllStringSubmatch(text, limit) {
		switch groups {
		case 0:
			out = append(out, m[0])
		case 1:
			out = append(out, m[1])
		default:
			row := make([]interface{}, 0, groups)
			for _, g := range m[1:] {
				row = append(row, g)
			}
			out = append(out, row)
		}
	}
	return out
}

func extractPattern(args []interface{}) (interface{}, error) {
	text := stringArg(args, 0, "")
	re, global, err := compileFlags(stringArg(args, 1, ""), stringArg(args, 2, ""))
	if err != nil {
		return nil, fmt.Errorf("extractPattern: %w", err)
	}
	if global {
		return matchValues(re, text, -1), nil
	}
	matches := matchValues(re, text, 1)
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func parseJSON(args []interface{}) (interface{}, error) {
	s, ok := arg(args, 0).(string)
	if !ok {
		return arg(args, 0), nil
	}
	var out interface{}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, nil
	}
	return out, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

func parseTime(v interface{}) (time.Time, bool) {
	if f, ok := value.AsFloat(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(f)).UTC(), true
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func formatDate(args []interface{}) (interface{}, error) {
	t, ok := parseTime(arg(args, 0))
	if !ok {
		return nil, nil
	}
	switch format := stringArg(args, 1, "iso"); format {
	case "iso":
		return t.Format("2006-01-02T15:04:05.000Z"), nil
	case "date":
		return t.Format("2006-01-02"), nil
	case "time":
		return t.Format("15:04:05"), nil
	default:
		return nil, fmt.Errorf("formatDate: unsupported format %q (expected iso, date or time)", format)
	}
}

// condition is a parsed filterArray comparator.
type condition struct {
	field string
	op    string
	want  interface{}
}

var (
	comparePattern  = regexp.MustCompile(`^\s*([A-Za-z0-9_$.\[\]-]+)\s*(==|!=)\s*(.*?)\s*$`)
	containsPattern = regexp.MustCompile(`^\s*([A-Za-z0-9_$.\[\]-]+)\s+contains\s+(.*?)\s*$`)
)

func parseCondition(raw string) (condition, error) {
	if m := containsPattern.FindStringSubmatch(raw); m != nil {
		return condition{field: m[1], op: "contains", want: literal(m[2])}, nil
	}
	if m := comparePattern.FindStringSubmatch(raw); m != nil {
		return condition{field: m[1], op: m[2], want: literal(m[3])}, nil
	}
	return condition{}, fmt.Errorf(`invalid condition %q (expected field==value, field!=value or field contains "text")`, raw)
}

// literal interprets the right-hand side of a condition.
func literal(raw string) interface{} {
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0] {
		return raw[1 : len(raw)-1]
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return raw
}

func (c condition) matches(item interface{}) bool {
	got := keyOf(item, c.field)
	switch c.op {
	case "==":
		return looseEqual(got, c.want)
	case "!=":
		return !looseEqual(got, c.want)
	default:
		switch g := got.(type) {
		case string:
			return strings.Contains(g, value.Stringify(c.want))
		case []interface{}:
			for _, el := range g {
				if looseEqual(el, c.want) {
					return true
				}
			}
		}
		return false
	}
}

// looseEqual compares scalars by text as well, so `code==200` matches both
// 200 and "200".
func looseEqual(a, b interface{}) bool {
	if value.Equal(a, b) {
		return true
	}
	ka, kb := value.KindOf(a), value.KindOf(b)
	if ka == value.KindArray || ka == value.KindObject || kb == value.KindArray || kb == value.KindObject {
		return false
	}
	if ka == value.KindNull || kb == value.KindNull {
		return false
	}
	return value.Stringify(a) == value.Stringify(b)
}

func filterArray(args []interface{}) (interface{}, error) {
	arr, err := arrayArg("filterArray", args)
	if err != nil {
		return nil, err
	}
	cond, err := parseCondition(stringArg(args, 1, ""))
	if err != nil {
		return nil, fmt.Errorf("filterArray: %w", err)
	}
	out := []interface{}{}
	for _, item := range arr {
		if cond.matches(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

func groupBy(args []interface{}) (interface{}, error) {
	arr, err := arrayArg("groupBy", args)
	if err != nil {
		return nil, err
	}
	keyPath := stringArg(args, 1, "")
	groups := map[string]interface{}{}
	for _, item := range arr {
		k := "undefined"
		if keyPath == "" {
			k = value.Stringify(item)
		} else if v, ok := value.Lookup(item, keyPath); ok {
			k = value.Stringify(v)
		}
		list, _ := groups[k].([]interface{})
		groups[k] = append(list, item)
	}
	return groups, nil
}

func sortBy(args []interface{}) (interface{}, error) {
	arr, err := arrayArg("sortBy", args)
	if err != nil {
		return nil, err
	}
	keyPath := stringArg(args, 1, "")
	order := strings.ToLower(stringArg(args, 2, "asc"))
	if order != "asc" && order != "desc" {
		return nil, fmt.Errorf("sortBy: unsupported order %q (expected asc or desc)", order)
	}

	out := append([]interface{}(nil), arr...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := keyOf(out[i], keyPath), keyOf(out[j], keyPath)
		// Missing keys sink to the end in both directions.
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		if order == "desc" {
			return value.Compare(a, b) > 0
		}
		return value.Compare(a, b) < 0
	})
	return out, nil
}

func unique(args []interface{}) (interface{}, error) {
	arr, err := arrayArg("unique", args)
	if err != nil {
		return nil, err
	}
	keyPath := stringArg(args, 1, "")
	seen := map[string]bool{}
	out := []interface{}{}
	for _, item := range arr {
		k := item
		if keyPath != "" {
			k = keyOf(item, keyPath)
		}
		sig, err := value.CanonicalJSON(k)
		if err != nil {
			sig = value.Stringify(k)
		}
		if seen[sig] {
			continue
		}
		seen[sig] = true
		out = append(out, item)
	}
	return out, nil
}

func sum(args []interface{}) (interface{}, error) {
	arr, err := arrayArg("sum", args)
	if err != nil {
		return nil, err
	}
	keyPath := stringArg(args, 1, "")
	total := 0.0
	for _, item := range arr {
		v := item
		if keyPath != "" {
			v = keyOf(item, keyPath)
		}
		if f, ok := value.AsFloat(v); ok {
			total += f
			continue
		}
		if s, ok := v.(string); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				total += f
			}
		}
	}
	return total, nil
}

func count(args []interface{}) (interface{}, error) {
	arr, err := arrayArg("count", args)
	if err != nil {
		return nil, err
	}
	raw := stringArg(args, 1, "")
	if raw == "" {
		return float64(len(arr)), nil
	}
	cond, err := parseCondition(raw)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	n := 0
	for _, item := range arr {
		if cond.matches(item) {
			n++
		}
	}
	return float64(n), nil
}

func flatten(args []interface{}) (interface{}, error) {
	arr, err := arrayArg("flatten", args)
	if err != nil {
		return nil, err
	}
	depth := 1
	if f, ok := value.AsFloat(arg(args, 1)); ok {
		switch {
		case f >= math.MaxInt32:
			depth = -1
		case f < 0:
			depth = 0
		default:
			depth = int(f)
		}
	}
	return flattenDepth(arr, depth), nil
}

// flattenDepth flattens nested arrays depth levels deep; a negative depth
// flattens completely.
func flattenDepth(arr []interface{}, depth int) []interface{} {
	out := []interface{}{}
	for _, item := range arr {
		if nested, ok := item.([]interface{}); ok && depth != 0 {
			next := depth - 1
			if depth < 0 {
				next = depth
			}
			out = append(out, flattenDepth(nested, next)...)
			continue
		}
		out = append(out, item)
	}
	return out
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(args []interface{}) (interface{}, error) {
	text := stringArg(args, 0, "")
	folded, _, err := xtransform.String(xtransform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), text)
	if err != nil {
		folded = text
	}
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(slug, "-"), nil
}

func capitalize(args []interface{}) (interface{}, error) {
	text := stringArg(args, 0, "")
	if text == "" {
		return "", nil
	}
	r := []rune(strings.ToLower(text))
	r[0] = unicode.ToUpper(r[0])
	return string(r), nil
}
