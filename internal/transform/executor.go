package transform

import (
	"context"
	"time"

	"flewid/internal/api"
	"flewid/internal/value"
	"flewid/internal/variables"
	"flewid/pkg/logging"
)

const (
	DefaultTimeout         = 5 * time.Second
	DefaultMaxSnippetBytes = 64 * 1024
	DefaultMaxCallDepth    = 1000
)

// Config tunes the executor.
type Config struct {
	Timeout         time.Duration
	MaxSnippetBytes int
	// MaxCallDepth bounds nested function calls in procedural snippets.
	MaxCallDepth int
}

// Executor runs transform snippets. It keeps no per-call state, so one
// Executor can serve concurrent calls.
type Executor struct {
	timeout         time.Duration
	maxSnippetBytes int
	maxCallDepth    int
	resolver        *variables.Resolver
}

// NewExecutor creates an executor, filling unset limits with defaults.
func NewExecutor(cfg Config) *Executor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxSnippetBytes <= 0 {
		cfg.MaxSnippetBytes = DefaultMaxSnippetBytes
	}
	if cfg.MaxCallDepth <= 0 {
		cfg.MaxCallDepth = DefaultMaxCallDepth
	}
	return &Executor{
		timeout:         cfg.Timeout,
		maxSnippetBytes: cfg.MaxSnippetBytes,
		maxCallDepth:    cfg.MaxCallDepth,
		resolver:        variables.NewResolver(),
	}
}

// Run executes req. Every returned error is an *api.Error.
func (e *Executor) Run(ctx context.Context, req api.TransformRequest) (interface{}, error) {
	mode, ok := ParseMode(string(req.Mode))
	if !ok {
		return nil, api.NewError(api.KindUnsupportedTransformMode, string(req.Mode),
			"unsupported transform mode %q (supported: procedural, path-query, pattern-extraction)", req.Mode)
	}
	if len(req.Snippet) > e.maxSnippetBytes {
		return nil, api.NewError(api.KindSnippetCompileError, "",
			"snippet is %d bytes, the limit is %d", len(req.Snippet), e.maxSnippetBytes)
	}

	snippet, field := req.Snippet, req.Field
	if req.Variables != nil {
		store := variables.Store(req.Variables)
		snippet = value.Stringify(e.resolver.Resolve(snippet, store).Value)
		if field != "" {
			field = value.Stringify(e.resolver.Resolve(field, store).Value)
		}
	}

	input, err := value.Normalize(req.Input)
	if err != nil {
		return nil, api.NewError(api.KindSnippetRuntimeError, "", "input is not a JSON-like value: %v", err)
	}

	start := time.Now()
	var result interface{}
	switch mode {
	case api.TransformModeProcedural:
		result, err = e.runProcedural(ctx, snippet, input)
	case api.TransformModePathQuery:
		result, err = runPathQuery(snippet, input)
	case api.TransformModePatternExtraction:
		result, err = runPattern(snippet, input, field)
	}

	if err != nil {
		logging.Debug("TransformExecutor", "%s transform failed after %s: %v", mode, time.Since(start), err)
		return nil, err
	}
	logging.Debug("TransformExecutor", "%s transform completed in %s", mode, time.Since(start))
	return result, nil
}
