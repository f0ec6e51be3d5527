package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"flewid/internal/api"
)

// APITools provides MCP tools for flewid's data-flow functionality. Handlers
// are looked up in the api registry on every call so tools can be built
// before the services are registered.
type APITools struct{}

// NewAPITools creates the API tool set
func NewAPITools() *APITools {
	return &APITools{}
}

// GetAPITools returns all API tools
func (at *APITools) GetAPITools() []mcp.Tool {
	tools := []mcp.Tool{}

	// Transform Tools
	tools = append(tools, at.getTransformTools()...)

	// Filter Tools
	tools = append(tools, at.getFilterTools()...)

	// Variable Tools
	tools = append(tools, at.getVariableTools()...)

	// Template Tools
	tools = append(tools, at.getTemplateTools()...)

	return tools
}

// ServerTools pairs every tool with its handler for registration with an
// MCP server.
func (at *APITools) ServerTools() []server.ServerTool {
	handlers := at.handlers()
	tools := at.GetAPITools()
	out := make([]server.ServerTool, 0, len(tools))
	for _, tool := range tools {
		out = append(out, server.ServerTool{Tool: tool, Handler: handlers[tool.Name]})
	}
	return out
}

func (at *APITools) handlers() map[string]server.ToolHandlerFunc {
	return map[string]server.ToolHandlerFunc{
		"transform_execute":    at.HandleTransformExecute,
		"transform_utilities":  at.HandleTransformUtilities,
		"filter_compile":       at.HandleFilterCompile,
		"variables_resolve":    at.HandleVariablesResolve,
		"variables_references": at.HandleVariablesReferences,
		"variables_check":      at.HandleVariablesCheck,
		"variables_validate":   at.HandleVariablesValidate,
		"template_list":        at.HandleTemplateList,
		"template_get":         at.HandleTemplateGet,
		"template_instantiate": at.HandleTemplateInstantiate,
		"template_create":      at.HandleTemplateCreate,
		"template_update":      at.HandleTemplateUpdate,
		"template_delete":      at.HandleTemplateDelete,
		"template_validate":    at.HandleTemplateValidate,
	}
}

// Transform Tools
func (at *APITools) getTransformTools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("transform_execute",
			mcp.WithDescription("Run a transform snippet against input data"),
			mcp.WithString("mode",
				mcp.Required(),
				mcp.Description("Transform mode: procedural (JavaScript), path-query (JSONPath) or pattern-extraction (regular expression)"),
				mcp.Enum(string(api.TransformModeProcedural), string(api.TransformModePathQuery), string(api.TransformModePatternExtraction)),
			),
			mcp.WithString("snippet",
				mcp.Required(),
				mcp.Description("Function body, JSONPath query or pattern, depending on mode"),
			),
			withValue("input",
				mcp.Description("Input data: any JSON value. Strings are used as text unless inputFormat is json"),
			),
			mcp.WithString("inputFormat",
				mcp.Description("How to read a string input: text (default) keeps it as is, json decodes it"),
				mcp.Enum("text", "json"),
			),
			mcp.WithString("field",
				mcp.Description("Dotted path of the input field to run a pattern against"),
			),
			mcp.WithObject("variables",
				mcp.Description("Variable store used to resolve {{...}} references in the snippet and field"),
			),
		),
		mcp.NewTool("transform_utilities",
			mcp.WithDescription("List the utility functions available to transform snippets"),
		),
	}
}

// Filter Tools
func (at *APITools) getFilterTools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("filter_compile",
			mcp.WithDescription("Compile a filter expression such as Status=ACTIVE into a key-value store predicate"),
			mcp.WithString("expression",
				mcp.Required(),
				mcp.Description("Filter expression: Name=Value, attribute_exists(Name), contains(Name, Value) or begins_with(Name, Value)"),
			),
		),
	}
}

// Variable Tools
func (at *APITools) getVariableTools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("variables_resolve",
			mcp.WithDescription("Substitute {{...}} references in a configuration tree"),
			mcp.WithString("tree",
				mcp.Required(),
				mcp.Description("Configuration tree as JSON text"),
			),
			mcp.WithObject("store",
				mcp.Required(),
				mcp.Description("Variable store keyed by scope"),
			),
		),
		mcp.NewTool("variables_references",
			mcp.WithDescription("List the distinct variable references in a configuration tree"),
			mcp.WithString("tree",
				mcp.Required(),
				mcp.Description("Configuration tree as JSON text"),
			),
		),
		mcp.NewTool("variables_check",
			mcp.WithDescription("Check that every reference in a configuration tree uses a declared name"),
			mcp.WithString("tree",
				mcp.Required(),
				mcp.Description("Configuration tree as JSON text"),
			),
			mcp.WithString("declared",
				mcp.Required(),
				mcp.Description("Comma-separated list of declared names"),
			),
		),
		mcp.NewTool("variables_validate",
			mcp.WithDescription("Validate variable values against their definitions"),
			mcp.WithObject("values",
				mcp.Required(),
				mcp.Description("Variable values keyed by name"),
			),
			mcp.WithString("definitions",
				mcp.Required(),
				mcp.Description("Variable definitions as a JSON array"),
			),
		),
	}
}

// Template Tools
func (at *APITools) getTemplateTools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("template_list",
			mcp.WithDescription("List workflow templates"),
			mcp.WithString("category",
				mcp.Description("Only list templates in this category"),
			),
		),
		mcp.NewTool("template_get",
			mcp.WithDescription("Get a workflow template"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Template id"),
			),
		),
		mcp.NewTool("template_instantiate",
			mcp.WithDescription("Instantiate a workflow template with variable values"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Template id"),
			),
			mcp.WithObject("variables",
				mcp.Description("Variable values keyed by name"),
			),
		),
		mcp.NewTool("template_create",
			mcp.WithDescription("Create a new workflow template"),
			mcp.WithObject("template",
				mcp.Required(),
				mcp.Description("Template definition object"),
			),
		),
		mcp.NewTool("template_update",
			mcp.WithDescription("Replace an authored workflow template"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Template id"),
			),
			mcp.WithObject("template",
				mcp.Required(),
				mcp.Description("Template definition object"),
			),
		),
		mcp.NewTool("template_delete",
			mcp.WithDescription("Delete an authored workflow template"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Template id"),
			),
		),
		mcp.NewTool("template_validate",
			mcp.WithDescription("Validate a workflow template without storing it"),
			mcp.WithObject("template",
				mcp.Required(),
				mcp.Description("Template definition object"),
			),
		),
	}
}
