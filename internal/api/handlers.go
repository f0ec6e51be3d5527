package api

import (
	"context"
	"sync"

	"flewid/pkg/logging"
)

// TransformHandler executes transform snippets.
type TransformHandler interface {
	Execute(ctx context.Context, req TransformRequest) (interface{}, error)
	ListUtilities() []UtilityFunction
}

// FilterHandler compiles filter expressions.
type FilterHandler interface {
	Compile(raw string) FilterResult
}

// VariablesHandler resolves and validates variable references.
type VariablesHandler interface {
	Resolve(tree interface{}, store map[string]interface{}) ResolveResult
	ExtractReferences(tree interface{}) []string
	ValidateReferences(tree interface{}, declared []string) ValidationResult
	ValidateValues(values map[string]interface{}, defs []VariableDefinition) ValidationResult
}

// TemplateHandler manages the template catalog and instantiates templates.
type TemplateHandler interface {
	ListTemplates() []Template
	GetTemplate(id string) (*Template, error)
	CreateTemplate(tmpl Template) error
	UpdateTemplate(id string, tmpl Template) error
	DeleteTemplate(id string) error
	ValidateTemplate(tmpl Template) ValidationResult
	Instantiate(id string, values map[string]interface{}) (*Instantiation, error)
}

var (
	transformHandler TransformHandler
	filterHandler    FilterHandler
	variablesHandler VariablesHandler
	templateHandler  TemplateHandler

	handlerMutex sync.RWMutex
)

// RegisterTransform registers the transform handler
func RegisterTransform(h TransformHandler) {
	handlerMutex.Lock()
	defer handlerMutex.Unlock()
	logging.Debug("API", "Registering transform handler: %v", h != nil)
	transformHandler = h
}

// RegisterFilter registers the filter handler
func RegisterFilter(h FilterHandler) {
	handlerMutex.Lock()
	defer handlerMutex.Unlock()
	logging.Debug("API", "Registering filter handler: %v", h != nil)
	filterHandler = h
}

// RegisterVariables registers the variables handler
func RegisterVariables(h VariablesHandler) {
	handlerMutex.Lock()
	defer handlerMutex.Unlock()
	logging.Debug("API", "Registering variables handler: %v", h != nil)
	variablesHandler = h
}

// RegisterTemplate registers the template handler
func RegisterTemplate(h TemplateHandler) {
	handlerMutex.Lock()
	defer handlerMutex.Unlock()
	logging.Debug("API", "Registering template handler: %v", h != nil)
	templateHandler = h
}

// GetTransform returns the registered transform handler
func GetTransform() TransformHandler {
	handlerMutex.RLock()
	defer handlerMutex.RUnlock()
	return transformHandler
}

// GetFilter returns the registered filter handler
func GetFilter() FilterHandler {
	handlerMutex.RLock()
	defer handlerMutex.RUnlock()
	return filterHandler
}

// GetVariables returns the registered variables handler
func GetVariables() VariablesHandler {
	handlerMutex.RLock()
	defer handlerMutex.RUnlock()
	return variablesHandler
}

// GetTemplate returns the registered template handler
func GetTemplate() TemplateHandler {
	handlerMutex.RLock()
	defer handlerMutex.RUnlock()
	return templateHandler
}
