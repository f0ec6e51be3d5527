package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"flewid/internal/api"
	"flewid/internal/config"
	"flewid/internal/value"
	"flewid/pkg/logging"
)

// templatesSubDir is the directory under each configuration layer that
// holds one template per YAML file.
const templatesSubDir = "templates"

// ConfigurationLoader interface for testing
type ConfigurationLoader interface {
	LoadAndParseYAML(subDir string, validator func(api.Template) error) ([]api.Template, *config.ConfigurationErrorCollection, error)
}

// defaultConfigurationLoader wraps the config package loader
type defaultConfigurationLoader struct {
	configPath string
}

func (d *defaultConfigurationLoader) LoadAndParseYAML(subDir string, validator func(api.Template) error) ([]api.Template, *config.ConfigurationErrorCollection, error) {
	return config.LoadAndParseYAMLWithConfig[api.Template](d.configPath, subDir, validator)
}

// Options controls how the catalog is assembled.
type Options struct {
	// ConfigDir is where authored templates are persisted.
	ConfigDir string
	// ConfigPath restricts directory loading to a single configuration
	// directory. Empty means the layered user and project directories.
	ConfigPath string
	// IncludeBuiltin loads the templates embedded in the binary.
	IncludeBuiltin bool
}

// TemplateStorage holds the template catalog and persists authored templates.
type TemplateStorage struct {
	mu             sync.RWMutex
	loader         ConfigurationLoader
	configDir      string
	includeBuiltin bool
	templates      map[string]*api.Template
	loadErrors     *config.ConfigurationErrorCollection
	changeNotify   chan struct{}
}

// NewTemplateStorage creates a template catalog and loads all layers.
func NewTemplateStorage(opts Options) (*TemplateStorage, error) {
	return NewTemplateStorageWithLoader(opts, &defaultConfigurationLoader{configPath: opts.ConfigPath})
}

// NewTemplateStorageWithLoader creates a template catalog with a custom loader (for testing)
func NewTemplateStorageWithLoader(opts Options, loader ConfigurationLoader) (*TemplateStorage, error) {
	ts := &TemplateStorage{
		loader:         loader,
		configDir:      opts.ConfigDir,
		includeBuiltin: opts.IncludeBuiltin,
		templates:      make(map[string]*api.Template),
		changeNotify:   make(chan struct{}, 1),
	}

	if err := ts.LoadTemplates(); err != nil {
		return nil, err
	}

	return ts, nil
}

// LoadTemplates rebuilds the catalog from built-in, directory and authored templates.
func (ts *TemplateStorage) LoadTemplates() error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.templates = make(map[string]*api.Template)

	if ts.includeBuiltin {
		builtins, err := loadBuiltinTemplates()
		if err != nil {
			return fmt.Errorf("failed to load builtin templates: %w", err)
		}
		for _, tmpl := range builtins {
			ts.put(tmpl)
		}
		logging.Debug("TemplateStorage", "Loaded %d builtin templates", len(builtins))
	}

	definitions, loadErrors, err := ts.loader.LoadAndParseYAML(templatesSubDir, func(tmpl api.Template) error {
		if result := ValidateTemplate(normalizeTemplate(tmpl)); !result.IsValid {
			return result.Errors
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to load template definitions: %w", err)
	}
	ts.loadErrors = loadErrors
	if loadErrors.HasErrors() {
		logging.Warn("TemplateStorage", "Some template files could not be loaded: %v", loadErrors)
	}

	logging.Info("TemplateStorage", "Loading %d template definitions", len(definitions))
	for _, tmpl := range definitions {
		tmpl.Modifiable = false
		if tmpl.Version == 0 {
			tmpl.Version = 1
		}
		if existing, ok := ts.templates[tmpl.ID]; ok {
			logging.Info("TemplateStorage", "Template %s overrides %s template", tmpl.ID, existing.CreatedBy)
		}
		ts.put(tmpl)
	}

	if err := ts.loadAuthoredTemplates(); err != nil {
		logging.Warn("TemplateStorage", "Failed to load authored templates: %v", err)
	}

	return nil
}

// LoadErrors returns the per-file errors of the last directory load.
func (ts *TemplateStorage) LoadErrors() *config.ConfigurationErrorCollection {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.loadErrors
}

// loadAuthoredTemplates reads templates created through the API.
func (ts *TemplateStorage) loadAuthoredTemplates() error {
	if ts.configDir == "" {
		return nil
	}
	data, err := os.ReadFile(ts.authoredFile())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var tmplConfig api.TemplateConfig
	if err := yaml.Unmarshal(data, &tmplConfig); err != nil {
		return err
	}

	for _, tmpl := range tmplConfig.Templates {
		// Directory templates take precedence
		if _, exists := ts.templates[tmpl.ID]; exists {
			logging.Warn("TemplateStorage", "Ignoring authored template %s: id already defined", tmpl.ID)
			continue
		}
		tmpl.Modifiable = true
		tmpl.CreatedBy = api.TemplateCreatorUser
		ts.put(tmpl)
		logging.Info("TemplateStorage", "Loaded authored template: %s", tmpl.ID)
	}
	return nil
}

func (ts *TemplateStorage) put(tmpl api.Template) {
	t := normalizeTemplate(tmpl)
	ts.templates[t.ID] = &t
}

// GetTemplate retrieves a template by id
func (ts *TemplateStorage) GetTemplate(id string) (*api.Template, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	tmpl, exists := ts.templates[id]
	if !exists {
		return nil, notFound(id)
	}

	// Return a copy to prevent external modification
	c := cloneTemplate(*tmpl)
	return &c, nil
}

// ListTemplates returns all templates ordered by id
func (ts *TemplateStorage) ListTemplates() []api.Template {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	templates := make([]api.Template, 0, len(ts.templates))
	for _, tmpl := range ts.templates {
		templates = append(templates, cloneTemplate(*tmpl))
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates
}

// CreateTemplate validates and stores a new authored template
func (ts *TemplateStorage) CreateTemplate(tmpl api.Template) error {
	tmpl = normalizeTemplate(tmpl)
	if result := ValidateTemplate(tmpl); !result.IsValid {
		return validationError(tmpl.ID, result)
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, exists := ts.templates[tmpl.ID]; exists {
		return api.NewError(api.KindTemplateAlreadyExists, tmpl.ID, "template %q already exists", tmpl.ID)
	}

	now := time.Now().UTC()
	tmpl.CreatedBy = api.TemplateCreatorUser
	tmpl.CreatedAt = now
	tmpl.LastModified = now
	tmpl.Version = 1
	tmpl.Modifiable = true

	ts.templates[tmpl.ID] = &tmpl

	if err := ts.saveAuthoredTemplates(); err != nil {
		delete(ts.templates, tmpl.ID) // Rollback
		return err
	}

	ts.notifyChange()
	return nil
}

// UpdateTemplate replaces an authored template after re-validating it
func (ts *TemplateStorage) UpdateTemplate(id string, updates api.Template) error {
	updates = normalizeTemplate(updates)
	updates.ID = id // Ensure id doesn't change
	if result := ValidateTemplate(updates); !result.IsValid {
		return validationError(id, result)
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	existing, exists := ts.templates[id]
	if !exists {
		return notFound(id)
	}
	if !existing.Modifiable {
		return api.NewError(api.KindTemplateNotModifiable, id, "template %q is %s and cannot be modified", id, originOf(existing))
	}

	// Preserve metadata
	updates.CreatedBy = existing.CreatedBy
	updates.CreatedAt = existing.CreatedAt
	updates.LastModified = time.Now().UTC()
	updates.Version = existing.Version + 1
	updates.Modifiable = true

	ts.templates[id] = &updates

	if err := ts.saveAuthoredTemplates(); err != nil {
		ts.templates[id] = existing // Rollback
		return err
	}

	ts.notifyChange()
	return nil
}

// DeleteTemplate removes an authored template
func (ts *TemplateStorage) DeleteTemplate(id string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	existing, exists := ts.templates[id]
	if !exists {
		return notFound(id)
	}
	if !existing.Modifiable {
		return api.NewError(api.KindTemplateNotModifiable, id, "template %q is %s and cannot be deleted", id, originOf(existing))
	}

	delete(ts.templates, id)

	if err := ts.saveAuthoredTemplates(); err != nil {
		ts.templates[id] = existing // Rollback
		return err
	}

	ts.notifyChange()
	return nil
}

func (ts *TemplateStorage) authoredFile() string {
	return filepath.Join(ts.configDir, api.AuthoredTemplatesFile)
}

// saveAuthoredTemplates persists authored templates to disk
func (ts *TemplateStorage) saveAuthoredTemplates() error {
	if ts.configDir == "" {
		return fmt.Errorf("no configuration directory set for authored templates")
	}

	authored := make([]api.Template, 0)
	for _, tmpl := range ts.templates {
		if tmpl.CreatedBy == api.TemplateCreatorUser {
			authored = append(authored, *tmpl)
		}
	}
	sort.Slice(authored, func(i, j int) bool { return authored[i].ID < authored[j].ID })

	data, err := yaml.Marshal(api.TemplateConfig{Templates: authored})
	if err != nil {
		return err
	}

	file := ts.authoredFile()
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return err
	}

	// Write atomically
	tempFile := file + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return err
	}
	return os.Rename(tempFile, file)
}

// GetChangeChannel returns a channel that notifies of catalog changes
func (ts *TemplateStorage) GetChangeChannel() <-chan struct{} {
	return ts.changeNotify
}

// notifyChange sends a notification that templates have changed
func (ts *TemplateStorage) notifyChange() {
	select {
	case ts.changeNotify <- struct{}{}:
		logging.Debug("TemplateStorage", "Template change notification sent")
	default:
		// Channel already has a notification pending
		logging.Debug("TemplateStorage", "Template change notification already pending")
	}
}

func notFound(id string) *api.Error {
	return api.NewError(api.KindTemplateNotFound, id, "template %q not found", id)
}

func originOf(tmpl *api.Template) string {
	if tmpl.CreatedBy == api.TemplateCreatorBuiltin {
		return "built in"
	}
	return "loaded from a template file"
}

// normalizeTemplate converts YAML-decoded integers and nested values into
// the same shapes JSON decoding produces, so configs and defaults compare
// and resolve identically regardless of their source.
func normalizeTemplate(tmpl api.Template) api.Template {
	out := cloneTemplate(tmpl)
	for i := range out.Variables {
		out.Variables[i].Default = normalized(out.Variables[i].Default)
		if rules := out.Variables[i].Validation; rules != nil {
			for j := range rules.Options {
				rules.Options[j] = normalized(rules.Options[j])
			}
		}
	}
	for i := range out.Steps {
		if cfg, ok := normalized(out.Steps[i].Config).(map[string]interface{}); ok {
			out.Steps[i].Config = cfg
		}
	}
	return out
}

func normalized(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	n, err := value.Normalize(v)
	if err != nil {
		return v
	}
	return n
}

// cloneTemplate deep-copies everything a caller could mutate.
func cloneTemplate(tmpl api.Template) api.Template {
	out := tmpl
	if tmpl.Variables != nil {
		out.Variables = make([]api.VariableDefinition, len(tmpl.Variables))
		for i, def := range tmpl.Variables {
			def.Default = value.Clone(def.Default)
			if def.Validation != nil {
				rules := *def.Validation
				rules.Options = append([]interface{}(nil), rules.Options...)
				def.Validation = &rules
			}
			out.Variables[i] = def
		}
	}
	if tmpl.Steps != nil {
		out.Steps = make([]api.TemplateStep, len(tmpl.Steps))
		for i, step := range tmpl.Steps {
			if step.Config != nil {
				step.Config = value.Clone(step.Config).(map[string]interface{})
			}
			out.Steps[i] = step
		}
	}
	out.Edges = append([]api.TemplateEdge(nil), tmpl.Edges...)
	return out
}
