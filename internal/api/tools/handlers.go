package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"flewid/internal/api"
)

// HandleTransformExecute handles the transform_execute tool call
func (at *APITools) HandleTransformExecute(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handler := api.GetTransform()
	if handler == nil {
		return mcp.NewToolResultError(api.ErrTransformNotRegistered.Error()), nil
	}

	mode, err := req.RequireString("mode")
	if err != nil {
		return mcp.NewToolResultError("mode is required"), nil
	}
	snippet, err := req.RequireString("snippet")
	if err != nil {
		return mcp.NewToolResultError("snippet is required"), nil
	}

	variables, err := objectArg(req, "variables")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	input, err := inputArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	request := api.TransformRequest{
		Mode:      api.TransformMode(mode),
		Snippet:   snippet,
		Input:     input,
		Field:     req.GetString("field", ""),
		Variables: variables,
	}

	response := api.NewTransformResponse(handler.Execute(ctx, request))
	if !response.Success {
		return jsonErrorResult(response), nil
	}
	return jsonResult(response)
}

// HandleTransformUtilities handles the transform_utilities tool call
func (at *APITools) HandleTransformUtilities(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handler := api.GetTransform()
	if handler == nil {
		return mcp.NewToolResultError(api.ErrTransformNotRegistered.Error()), nil
	}

	utilities := handler.ListUtilities()
	return jsonResult(map[string]interface{}{
		"utilities": utilities,
		"total":     len(utilities),
	})
}

// HandleFilterCompile handles the filter_compile tool call
func (at *APITools) HandleFilterCompile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handler := api.GetFilter()
	if handler == nil {
		return mcp.NewToolResultError(api.ErrFilterNotRegistered.Error()), nil
	}

	expression, err := req.RequireString("expression")
	if err != nil {
		return mcp.NewToolResultError("expression is required"), nil
	}

	result := handler.Compile(expression)
	if !result.IsValid {
		return jsonErrorResult(result), nil
	}
	return jsonResult(result)
}

// HandleVariablesResolve handles the variables_resolve tool call
func (at *APITools) HandleVariablesResolve(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handler := api.GetVariables()
	if handler == nil {
		return mcp.NewToolResultError(api.ErrVariablesNotRegistered.Error()), nil
	}

	if _, ok := req.GetArguments()["tree"]; !ok {
		return mcp.NewToolResultError("tree is required"), nil
	}
	store, err := objectArg(req, "store")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(handler.Resolve(valueArg(req, "tree"), store))
}

// HandleVariablesReferences handles the variables_references tool call
func (at *APITools) HandleVariablesReferences(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handler := api.GetVariables()
	if handler == nil {
		return mcp.NewToolResultError(api.ErrVariablesNotRegistered.Error()), nil
	}

	if _, ok := req.GetArguments()["tree"]; !ok {
		return mcp.NewToolResultError("tree is required"), nil
	}

	refs := handler.ExtractReferences(valueArg(req, "tree"))
	if refs == nil {
		refs = []string{}
	}
	return jsonResult(map[string]interface{}{
		"references": refs,
		"total":      len(refs),
	})
}

// HandleVariablesCheck handles the variables_check tool call
func (at *APITools) HandleVariablesCheck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handler := api.GetVariables()
	if handler == nil {
		return mcp.NewToolResultError(api.ErrVariablesNotRegistered.Error()), nil
	}

	if _, ok := req.GetArguments()["tree"]; !ok {
		return mcp.NewToolResultError("tree is required"), nil
	}
	declared, err := stringListArg(req, "declared")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := handler.ValidateReferences(valueArg(req, "tree"), declared)
	if !result.IsValid {
		return jsonErrorResult(result), nil
	}
	return jsonResult(result)
}

// HandleVariablesValidate handles the variables_validate tool call
func (at *APITools) HandleVariablesValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handler := api.GetVariables()
	if handler == nil {
		return mcp.NewToolResultError(api.ErrVariablesNotRegistered.Error()), nil
	}

	values, err := objectArg(req, "values")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var defs []api.VariableDefinition
	if err := decodeArg(req, "definitions", &defs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := handler.ValidateValues(values, defs)
	if !result.IsValid {
		return jsonErrorResult(result), nil
	}
	return jsonResult(result)
}

// HandleTemplateList handles the template_list tool call
func (at *APITools) HandleTemplateList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handler := api.GetTemplate()
	if handler == nil {
		return mcp.NewToolResultError(api.ErrTemplateNotRegistered.Error()), nil
	}

	category := req.GetString("category", "")
	summaries := []map[string]interface{}{}
	for _, tmpl := range handler.ListTemplates() {
		if category != "" && !strings.EqualFold(tmpl.Category, category) {
			continue
		}
		summaries = append(summaries, map[string]interface{}{
			"id":          tmpl.ID,
			"name":        tmpl.Name,
			"description": tmpl.Description,
			"category":    tmpl.Category,
			"version":     tmpl.Version,
			"modifiable":  tmpl.Modifiable,
			"variables":   variableNames(tmpl.Variables),
			"steps":       len(tmpl.Steps),
		})
	}

	return jsonResult(map[string]interface{}{
		"templates": summaries,
		"total":     len(summaries),
	})
}

// HandleTemplateGet handles the template_get tool call
func (at *APITools) HandleTemplateGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handler := api.GetTemplate()
	if handler == nil {
		return mcp.NewToolResultError(api.ErrTemplateNotRegistered.Error()), nil
	}

	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil
	}

	tmpl, err := handler.GetTemplate(id)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return jsonResult(tmpl)
}

// HandleTemplateInstantiate handles the template_instantiate tool call
func (at *APITools) HandleTemplateInstantiate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handler := api.GetTemplate()
	if handler == nil {
		return mcp.NewToolResultError(api.ErrTemplateNotRegistered.Error()), nil
	}

	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil
	}
	values, err := objectArg(req, "variables")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	inst, err := handler.Instantiate(id, values)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return jsonResult(inst)
}

// HandleTemplateCreate handles the template_create tool call
func (at *APITools) HandleTemplateCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handler := api.GetTemplate()
	if handler == nil {
		return mcp.NewToolResultError(api.ErrTemplateNotRegistered.Error()), nil
	}

	var tmpl api.Template
	if err := decodeArg(req, "template", &tmpl); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := handler.CreateTemplate(tmpl); err != nil {
		return apiErrorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully created template '%s'", tmpl.ID)), nil
}

// HandleTemplateUpdate handles the template_update tool call
func (at *APITools) HandleTemplateUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handler := api.GetTemplate()
	if handler == nil {
		return mcp.NewToolResultError(api.ErrTemplateNotRegistered.Error()), nil
	}

	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil
	}
	var tmpl api.Template
	if err := decodeArg(req, "template", &tmpl); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := handler.UpdateTemplate(id, tmpl); err != nil {
		return apiErrorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully updated template '%s'", id)), nil
}

// HandleTemplateDelete handles the template_delete tool call
func (at *APITools) HandleTemplateDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handler := api.GetTemplate()
	if handler == nil {
		return mcp.NewToolResultError(api.ErrTemplateNotRegistered.Error()), nil
	}

	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil
	}

	if err := handler.DeleteTemplate(id); err != nil {
		return apiErrorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully deleted template '%s'", id)), nil
}

// HandleTemplateValidate handles the template_validate tool call
func (at *APITools) HandleTemplateValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handler := api.GetTemplate()
	if handler == nil {
		return mcp.NewToolResultError(api.ErrTemplateNotRegistered.Error()), nil
	}

	var tmpl api.Template
	if err := decodeArg(req, "template", &tmpl); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := handler.ValidateTemplate(tmpl)
	if !result.IsValid {
		return jsonErrorResult(result), nil
	}
	return jsonResult(result)
}

func variableNames(defs []api.VariableDefinition) []string {
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}
	sort.Strings(names)
	return names
}
