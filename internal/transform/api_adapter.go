package transform

import (
	"context"

	"flewid/internal/api"
)

// APIAdapter exposes an Executor through the api registry.
type APIAdapter struct {
	executor *Executor
}

// NewAPIAdapter creates a new API adapter for the transform executor
func NewAPIAdapter(executor *Executor) *APIAdapter {
	return &APIAdapter{executor: executor}
}

// Register registers this adapter with the API package
func (a *APIAdapter) Register() {
	api.RegisterTransform(a)
}

// Execute runs one transform.
func (a *APIAdapter) Execute(ctx context.Context, req api.TransformRequest) (interface{}, error) {
	return a.executor.Run(ctx, req)
}

// ListUtilities describes the utility library.
func (a *APIAdapter) ListUtilities() []api.UtilityFunction {
	return Utilities()
}
