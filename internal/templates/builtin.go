package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"flewid/internal/api"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// loadBuiltinTemplates parses the templates shipped with the binary.
func loadBuiltinTemplates() ([]api.Template, error) {
	files, err := fs.Glob(builtinFS, "builtin/*.yaml")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	templates := make([]api.Template, 0, len(files))
	for _, file := range files {
		data, err := builtinFS.ReadFile(file)
		if err != nil {
			return nil, err
		}
		var tmpl api.Template
		if err := yaml.Unmarshal(data, &tmpl); err != nil {
			return nil, fmt.Errorf("builtin template %s: %w", path.Base(file), err)
		}
		tmpl.CreatedBy = api.TemplateCreatorBuiltin
		tmpl.Modifiable = false
		if tmpl.Version == 0 {
			tmpl.Version = 1
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
