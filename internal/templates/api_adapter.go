package templates

import (
	"flewid/internal/api"
)

// APIAdapter adapts the template catalog and instantiator to the api.TemplateHandler interface
type APIAdapter struct {
	storage      *TemplateStorage
	instantiator *Instantiator
}

// NewAPIAdapter creates a new API adapter for templates
func NewAPIAdapter(storage *TemplateStorage, instantiator *Instantiator) *APIAdapter {
	if instantiator == nil {
		instantiator = NewInstantiator(storage, nil)
	}
	return &APIAdapter{storage: storage, instantiator: instantiator}
}

// Register registers this adapter with the API package
func (a *APIAdapter) Register() {
	api.RegisterTemplate(a)
}

// ListTemplates returns every template in the catalog.
func (a *APIAdapter) ListTemplates() []api.Template {
	return a.storage.ListTemplates()
}

// GetTemplate returns a copy of one template.
func (a *APIAdapter) GetTemplate(id string) (*api.Template, error) {
	return a.storage.GetTemplate(id)
}

// CreateTemplate stores a new authored template.
func (a *APIAdapter) CreateTemplate(tmpl api.Template) error {
	return a.storage.CreateTemplate(tmpl)
}

// UpdateTemplate replaces an authored template.
func (a *APIAdapter) UpdateTemplate(id string, tmpl api.Template) error {
	return a.storage.UpdateTemplate(id, tmpl)
}

// DeleteTemplate removes an authored template.
func (a *APIAdapter) DeleteTemplate(id string) error {
	return a.storage.DeleteTemplate(id)
}

// ValidateTemplate checks a template without storing it.
func (a *APIAdapter) ValidateTemplate(tmpl api.Template) api.ValidationResult {
	return ValidateTemplate(normalizeTemplate(tmpl))
}

// Instantiate produces the concrete steps and edges of a template.
func (a *APIAdapter) Instantiate(id string, values map[string]interface{}) (*api.Instantiation, error) {
	return a.instantiator.Instantiate(id, values)
}
