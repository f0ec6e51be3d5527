package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies every failure the data-flow layer can report.
type ErrorKind string

const (
	// Variable resolution and validation
	KindUnresolvedVariable          ErrorKind = "UnresolvedVariable"
	KindUndeclaredVariableReference ErrorKind = "UndeclaredVariableReference"
	KindMissingRequiredVariable     ErrorKind = "MissingRequiredVariable"
	KindVariableTypeMismatch        ErrorKind = "VariableTypeMismatch"
	KindVariablePatternMismatch     ErrorKind = "VariablePatternMismatch"
	KindVariableRangeViolation      ErrorKind = "VariableRangeViolation"
	KindVariableEnumViolation       ErrorKind = "VariableEnumViolation"
	KindInvalidVariableDefinition   ErrorKind = "InvalidVariableDefinition"
	KindVariableValidationFailed    ErrorKind = "VariableValidationFailed"

	// Transform execution
	KindSnippetCompileError       ErrorKind = "SnippetCompileError"
	KindSnippetRuntimeError       ErrorKind = "SnippetRuntimeError"
	KindSnippetTimeout            ErrorKind = "SnippetTimeout"
	KindUnsupportedTransformMode  ErrorKind = "UnsupportedTransformMode"
	KindNonStringExtractionTarget ErrorKind = "NonStringExtractionTarget"

	// Filter compilation
	KindInvalidFilterSyntax ErrorKind = "InvalidFilterSyntax"
	KindInvalidIdentifier   ErrorKind = "InvalidIdentifier"
	KindEmptyFilterValue    ErrorKind = "EmptyFilterValue"

	// Template catalog
	KindTemplateNotFound      ErrorKind = "TemplateNotFound"
	KindTemplateAlreadyExists ErrorKind = "TemplateAlreadyExists"
	KindTemplateNotModifiable ErrorKind = "TemplateNotModifiable"
	KindInvalidTemplate       ErrorKind = "InvalidTemplate"
)

// Error is a classified failure. Subject names the thing the error is
// about (a variable name, a reference, a filter token) when there is one.
// Aggregate failures carry their individual violations.
type Error struct {
	Kind       ErrorKind `json:"kind" yaml:"kind"`
	Subject    string    `json:"subject,omitempty" yaml:"subject,omitempty"`
	Message    string    `json:"message" yaml:"message"`
	Violations []*Error  `json:"violations,omitempty" yaml:"violations,omitempty"`
}

// NewError creates an Error with a formatted message.
func NewError(kind ErrorKind, subject string, format string, args ...interface{}) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Subject: subject, Message: msg}
}

func (e *Error) Error() string {
	if len(e.Violations) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, Errors(e.Violations).Error())
}

// Errors collects several errors found in one pass.
type Errors []*Error

func (e Errors) Error() string {
	if len(e) == 0 {
		return "no errors"
	}
	messages := make([]string, 0, len(e))
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Kinds lists the kind of each error, in order.
func (e Errors) Kinds() []ErrorKind {
	kinds := make([]ErrorKind, 0, len(e))
	for _, err := range e {
		kinds = append(kinds, err.Kind)
	}
	return kinds
}

// KindOf returns the kind of err if it is, or wraps, an *Error.
func KindOf(err error) (ErrorKind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return "", false
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Handler registration errors
var (
	ErrTransformNotRegistered = errors.New("transform handler not registered")
	ErrFilterNotRegistered    = errors.New("filter handler not registered")
	ErrVariablesNotRegistered = errors.New("variables handler not registered")
	ErrTemplateNotRegistered  = errors.New("template handler not registered")
)
