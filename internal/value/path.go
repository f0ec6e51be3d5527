package value

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Segment is one dotted part of a Path: a name followed by zero or more
// array indices, e.g. `items[0][1]`.
type Segment struct {
	Name    string
	Indices []int
}

// Path is an ordered list of segments. The first segment of a variable
// reference is its scope.
type Path []Segment

var (
	segmentNameRegex = regexp.MustCompile(`^[A-Za-z0-9_$-]+`)
	indexRegex       = regexp.MustCompile(`^\[(\d+)\]`)
)

// ParsePath parses `a.b[0].c` into a Path. Whitespace around the whole
// expression is ignored; whitespace inside it is not allowed.
func ParsePath(raw string) (Path, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	var path Path
	for _, part := range strings.Split(raw, ".") {
		if part == "" {
			return nil, fmt.Errorf("path %q contains an empty segment", raw)
		}
		name := segmentNameRegex.FindString(part)
		if name == "" {
			return nil, fmt.Errorf("invalid path segment %q in %q", part, raw)
		}
		seg := Segment{Name: name}
		rest := part[len(name):]
		for rest != "" {
			m := indexRegex.FindStringSubmatch(rest)
			if m == nil {
				return nil, fmt.Errorf("invalid index %q in segment %q", rest, part)
			}
			idx, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, fmt.Errorf("invalid index %q in segment %q: %w", m[1], part, err)
			}
			seg.Indices = append(seg.Indices, idx)
			rest = rest[len(m[0]):]
		}
		path = append(path, seg)
	}
	return path, nil
}

// String renders the canonical form of the path.
func (p Path) String() string {
	var sb strings.Builder
	for i, seg := range p {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(seg.Name)
		for _, idx := range seg.Indices {
			fmt.Fprintf(&sb, "[%d]", idx)
		}
	}
	return sb.String()
}

// Get walks root along the path. Objects are descended by key and arrays by
// index; a segment name that is a decimal number also indexes into an array,
// so `items.0` and `items[0]` are equivalent. The boolean is false when any
// step is missing.
func Get(root any, p Path) (any, bool) {
	cur := root
	for _, seg := range p {
		next, ok := child(cur, seg.Name)
		if !ok {
			return nil, false
		}
		cur = next
		for _, idx := range seg.Indices {
			arr, ok := cur.([]any)
			if !ok || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			cur = arr[idx]
		}
	}
	return cur, true
}

// Lookup parses raw and walks root along it. An unparseable path is treated
// as missing.
func Lookup(root any, raw string) (any, bool) {
	p, err := ParsePath(raw)
	if err != nil {
		return nil, false
	}
	return Get(root, p)
}

func child(cur any, name string) (any, bool) {
	switch node := cur.(type) {
	case map[string]any:
		v, ok := node[name]
		return v, ok
	case []any:
		idx, err := strconv.Atoi(name)
		if err != nil || idx < 0 || idx >= len(node) {
			return nil, false
		}
		return node[idx], true
	default:
		return nil, false
	}
}
