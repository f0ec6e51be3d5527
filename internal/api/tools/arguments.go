package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"flewid/internal/api"
)

// valueArg returns a configuration tree argument. String arguments holding
// JSON text are decoded; any other string is returned unchanged.
func valueArg(req mcp.CallToolRequest, name string) interface{} {
	raw, ok := req.GetArguments()[name]
	if !ok {
		return nil
	}
	if s, isString := raw.(string); isString {
		var decoded interface{}
		if err := json.Unmarshal([]byte(s), &decoded); err == nil {
			return decoded
		}
		return s
	}
	return raw
}

// inputArg returns the transform input exactly as the client sent it.
// String input is decoded only when inputFormat is json.
func inputArg(req mcp.CallToolRequest) (interface{}, error) {
	raw := req.GetArguments()["input"]
	switch format := req.GetString("inputFormat", "text"); format {
	case "text":
		return raw, nil
	case "json":
		s, isString := raw.(string)
		if !isString {
			return raw, nil
		}
		var decoded interface{}
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil, fmt.Errorf("input is not valid JSON: %v", err)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("unsupported inputFormat %q (expected text or json)", format)
	}
}

// withValue declares a property that accepts any JSON value.
func withValue(name string, opts ...mcp.PropertyOption) mcp.ToolOption {
	return func(t *mcp.Tool) {
		schema := map[string]interface{}{}
		for _, opt := range opts {
			opt(schema)
		}
		t.InputSchema.Properties[name] = schema
	}
}

// objectArg returns an optional object argument. Objects may also be
// passed as JSON text.
func objectArg(req mcp.CallToolRequest, name string) (map[string]interface{}, error) {
	raw, ok := req.GetArguments()[name]
	if !ok || raw == nil {
		return nil, nil
	}
	var obj map[string]interface{}
	if err := decodeArg(req, name, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// decodeArg decodes a required argument into target through JSON. The
// argument may be structured or JSON text.
func decodeArg(req mcp.CallToolRequest, name string, target interface{}) error {
	raw, ok := req.GetArguments()[name]
	if !ok || raw == nil {
		return fmt.Errorf("%s is required", name)
	}

	var data []byte
	if s, isString := raw.(string); isString {
		data = []byte(s)
	} else {
		var err error
		if data, err = json.Marshal(raw); err != nil {
			return fmt.Errorf("failed to marshal %s: %v", name, err)
		}
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse %s: %v", name, err)
	}
	return nil
}

// stringListArg accepts a comma-separated string or an array of strings.
func stringListArg(req mcp.CallToolRequest, name string) ([]string, error) {
	raw, ok := req.GetArguments()[name]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%s is required", name)
	}

	switch v := raw.(type) {
	case string:
		var list []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				list = append(list, part)
			}
		}
		return list, nil
	case []interface{}:
		list := make([]string, 0, len(v))
		for _, item := range v {
			s, isString := item.(string)
			if !isString {
				return nil, fmt.Errorf("%s must contain only strings", name)
			}
			list = append(list, s)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("%s must be a string or an array of strings", name)
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	resultJSON, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}

// jsonErrorResult reports a structured failure as an error result whose text
// is the JSON document.
func jsonErrorResult(v interface{}) *mcp.CallToolResult {
	resultJSON, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err))
	}
	return mcp.NewToolResultError(string(resultJSON))
}

// apiErrorResult keeps the kind and violations of classified errors.
func apiErrorResult(err error) *mcp.CallToolResult {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return jsonErrorResult(map[string]interface{}{"error": apiErr})
	}
	return mcp.NewToolResultError(err.Error())
}
