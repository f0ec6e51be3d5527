package api

import (
	"errors"
	"time"
)

// VariableType is the declared type of a template variable.
type VariableType string

const (
	VariableTypeString  VariableType = "string"
	VariableTypeNumber  VariableType = "number"
	VariableTypeBoolean VariableType = "boolean"
	VariableTypeArray   VariableType = "array"
	VariableTypeObject  VariableType = "object"
)

// ValidationRules constrain the value supplied for a variable. Every rule is
// optional and min/max are checked independently of each other.
type ValidationRules struct {
	Pattern string        `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Min     *float64      `yaml:"min,omitempty" json:"min,omitempty"`
	Max     *float64      `yaml:"max,omitempty" json:"max,omitempty"`
	Options []interface{} `yaml:"options,omitempty" json:"options,omitempty"`
}

// VariableDefinition declares an input of a workflow template.
type VariableDefinition struct {
	Name        string           `yaml:"name" json:"name"`
	Type        VariableType     `yaml:"type" json:"type"`
	Required    bool             `yaml:"required,omitempty" json:"required,omitempty"`
	Default     interface{}      `yaml:"default,omitempty" json:"default,omitempty"`
	Description string           `yaml:"description,omitempty" json:"description,omitempty"`
	Validation  *ValidationRules `yaml:"validation,omitempty" json:"validation,omitempty"`
}

// ValidationResult is the outcome of a batch validation. IsValid is true
// exactly when Errors is empty.
type ValidationResult struct {
	IsValid bool   `json:"isValid" yaml:"isValid"`
	Errors  Errors `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// NewValidationResult builds a result from the collected errors.
func NewValidationResult(errs Errors) ValidationResult {
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// UnresolvedReference records a token that was left in place during
// substitution because its value could not be found.
type UnresolvedReference struct {
	Reference string `json:"reference" yaml:"reference"`
	Location  string `json:"location,omitempty" yaml:"location,omitempty"`
	Reason    string `json:"reason" yaml:"reason"`
}

// ResolveResult is the output of a substitution pass.
type ResolveResult struct {
	Value      interface{}           `json:"value" yaml:"value"`
	Unresolved []UnresolvedReference `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
}

// TransformMode selects how a transform snippet is interpreted.
type TransformMode string

const (
	TransformModeProcedural        TransformMode = "procedural"
	TransformModePathQuery         TransformMode = "path-query"
	TransformModePatternExtraction TransformMode = "pattern-extraction"
)

// TransformRequest describes one transform invocation. Variables, when set,
// are substituted into the snippet and field before execution so snippets
// can refer to outputs of earlier steps.
type TransformRequest struct {
	Mode      TransformMode          `json:"mode" yaml:"mode"`
	Snippet   string                 `json:"snippet" yaml:"snippet"`
	Input     interface{}            `json:"input" yaml:"input"`
	Field     string                 `json:"field,omitempty" yaml:"field,omitempty"`
	Variables map[string]interface{} `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// TransformResponse is the caller-facing shape of a transform outcome.
type TransformResponse struct {
	Success   bool        `json:"success" yaml:"success"`
	Result    interface{} `json:"result,omitempty" yaml:"result,omitempty"`
	ErrorKind ErrorKind   `json:"errorKind,omitempty" yaml:"errorKind,omitempty"`
	Message   string      `json:"message,omitempty" yaml:"message,omitempty"`
}

// NewTransformResponse converts a transform outcome into a TransformResponse.
// Errors that carry no kind are reported as runtime errors.
func NewTransformResponse(result interface{}, err error) TransformResponse {
	if err == nil {
		return TransformResponse{Success: true, Result: result}
	}
	kind, ok := KindOf(err)
	if !ok {
		kind = KindSnippetRuntimeError
	}
	msg := err.Error()
	var apiErr *Error
	if errors.As(err, &apiErr) {
		msg = apiErr.Message
	}
	return TransformResponse{Success: false, ErrorKind: kind, Message: msg}
}

// UtilityFunction documents one member of the transform utility library.
type UtilityFunction struct {
	Name        string `json:"name" yaml:"name"`
	Signature   string `json:"signature" yaml:"signature"`
	Description string `json:"description" yaml:"description"`
}

// CompiledFilter is a parameterized key-value-store predicate. Expression
// contains placeholders only; the real names and values live in the maps.
type CompiledFilter struct {
	Predicate       string                 `json:"predicate" yaml:"predicate"`
	Expression      string                 `json:"expression" yaml:"expression"`
	AttributeNames  map[string]string      `json:"attributeNames" yaml:"attributeNames"`
	AttributeValues map[string]interface{} `json:"attributeValues,omitempty" yaml:"attributeValues,omitempty"`
}

// FilterResult is the caller-facing outcome of a filter compilation.
type FilterResult struct {
	IsValid   bool            `json:"isValid" yaml:"isValid"`
	Error     string          `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind ErrorKind       `json:"errorKind,omitempty" yaml:"errorKind,omitempty"`
	Compiled  *CompiledFilter `json:"compiled,omitempty" yaml:"compiled,omitempty"`
}

// Position is the canvas location of a step. It is carried through
// instantiation untouched.
type Position struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// TemplateStep is one node of a workflow template. Config may contain
// `{{...}}` references to template variables or to other steps' outputs.
type TemplateStep struct {
	ID       string                 `yaml:"id" json:"id"`
	Type     string                 `yaml:"type" json:"type"`
	Label    string                 `yaml:"label,omitempty" json:"label,omitempty"`
	Position Position               `yaml:"position" json:"position"`
	Config   map[string]interface{} `yaml:"config,omitempty" json:"config,omitempty"`
}

// TemplateEdge connects two steps.
type TemplateEdge struct {
	ID     string `yaml:"id" json:"id"`
	Source string `yaml:"source" json:"source"`
	Target string `yaml:"target" json:"target"`
}

// Template is a reusable workflow definition with typed variables.
type Template struct {
	ID          string               `yaml:"id" json:"id"`
	Name        string               `yaml:"name" json:"name"`
	Description string               `yaml:"description,omitempty" json:"description,omitempty"`
	Category    string               `yaml:"category,omitempty" json:"category,omitempty"`
	Version     int                  `yaml:"version,omitempty" json:"version"`
	Modifiable  bool                 `yaml:"modifiable" json:"modifiable"`
	Variables   []VariableDefinition `yaml:"variables,omitempty" json:"variables,omitempty"`
	Steps       []TemplateStep       `yaml:"steps" json:"steps"`
	Edges       []TemplateEdge       `yaml:"edges,omitempty" json:"edges,omitempty"`

	CreatedBy    string    `yaml:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt    time.Time `yaml:"createdAt,omitempty" json:"createdAt,omitempty"`
	LastModified time.Time `yaml:"lastModified,omitempty" json:"lastModified,omitempty"`
}

// TemplateConfig is the on-disk layout of a file holding several templates.
type TemplateConfig struct {
	Templates []Template `yaml:"templates" json:"templates"`
}

// Instantiation is a template with its variables applied. Steps and edges
// keep their ids, types and positions.
type Instantiation struct {
	TemplateID string                 `json:"templateId" yaml:"templateId"`
	Variables  map[string]interface{} `json:"variables" yaml:"variables"`
	Steps      []TemplateStep         `json:"steps" yaml:"steps"`
	Edges      []TemplateEdge         `json:"edges" yaml:"edges"`
	Unresolved []UnresolvedReference  `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
}

// Template catalog constants
const (
	AuthoredTemplatesFile = "authored_templates.yaml"

	TemplateCreatorBuiltin = "builtin"
	TemplateCreatorUser    = "user"
)
