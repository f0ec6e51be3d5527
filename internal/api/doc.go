// Package api holds the shared vocabulary of flewid: the error taxonomy,
// the request and response shapes exchanged with callers, and the handler
// registry that decouples the MCP tool layer from the packages doing the
// work.
//
// Architecture:
//
//  1. **Types** - Templates, variable definitions, transform and filter
//     requests/responses. Implementation packages use these directly so the
//     api package never imports them.
//
//  2. **Handler Interfaces** - TransformHandler, FilterHandler,
//     VariablesHandler and TemplateHandler.
//
//  3. **Handler Registry** - Implementations register an adapter at startup
//     and the tool layer looks them up at call time.
//
// Example:
//
//	transform.NewAPIAdapter(executor).Register()
//	filter.NewAPIAdapter().Register()
//
//	handler := api.GetTransform()
//	if handler == nil {
//		return api.ErrTransformNotRegistered
//	}
//	result, err := handler.Execute(ctx, req)
//
// Errors:
//
// Every classified failure is an *Error carrying an ErrorKind. Use IsKind or
// KindOf to inspect wrapped errors:
//
//	if api.IsKind(err, api.KindTemplateNotFound) {
//		...
//	}
package api
