package transform

import (
	"strings"

	"flewid/internal/api"
)

// modeAliases maps the names accepted from callers onto the canonical modes.
var modeAliases = map[string]api.TransformMode{
	"procedural":         api.TransformModeProcedural,
	"javascript":         api.TransformModeProcedural,
	"js":                 api.TransformModeProcedural,
	"code":               api.TransformModeProcedural,
	"path-query":         api.TransformModePathQuery,
	"pathquery":          api.TransformModePathQuery,
	"jsonpath":           api.TransformModePathQuery,
	"path":               api.TransformModePathQuery,
	"pattern-extraction": api.TransformModePatternExtraction,
	"pattern":            api.TransformModePatternExtraction,
	"regex":              api.TransformModePatternExtraction,
}

// ParseMode resolves a mode name or alias, case-insensitively.
func ParseMode(name string) (api.TransformMode, bool) {
	m, ok := modeAliases[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// Modes lists the canonical mode names.
func Modes() []api.TransformMode {
	return []api.TransformMode{
		api.TransformModeProcedural,
		api.TransformModePathQuery,
		api.TransformModePatternExtraction,
	}
}
