package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"flewid/internal/color"
)

// OutputFormat represents the output format for CLI commands
type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

// ExecutorOptions contains options for tool execution
type ExecutorOptions struct {
	Format OutputFormat
	Quiet  bool
	// Endpoint of a running server. Empty runs tools in process.
	Endpoint string
	// Version is reported to the server during the handshake.
	Version string
	// Out and ErrOut default to the process streams.
	Out    io.Writer
	ErrOut io.Writer
}

// ToolExecutor provides high-level tool execution functionality
type ToolExecutor struct {
	client  *CLIClient
	options ExecutorOptions
}

// NewToolExecutor creates a new tool executor
func NewToolExecutor(options ExecutorOptions) (*ToolExecutor, error) {
	if options.Out == nil {
		options.Out = os.Stdout
	}
	if options.ErrOut == nil {
		options.ErrOut = os.Stderr
	}
	if options.Format == "" {
		options.Format = OutputFormatTable
	}

	if options.Endpoint == "" {
		return &ToolExecutor{client: NewCLIClient(options.Version), options: options}, nil
	}

	// Check if server is running first
	if err := CheckServerRunning(options.Endpoint); err != nil {
		return nil, err
	}
	return &ToolExecutor{client: NewCLIClientWithEndpoint(options.Endpoint), options: options}, nil
}

// Connect establishes connection to the server
func (e *ToolExecutor) Connect(ctx context.Context) error {
	return e.client.Connect(ctx)
}

// Close closes the connection
func (e *ToolExecutor) Close() error {
	return e.client.Close()
}

// Execute executes a tool and formats the output
func (e *ToolExecutor) Execute(ctx context.Context, toolName string, arguments map[string]interface{}) error {
	result, err := e.client.CallTool(ctx, toolName, arguments)
	if err != nil {
		return fmt.Errorf("failed to execute tool %s: %w", toolName, err)
	}

	if result.IsError {
		return e.formatError(resultText(result))
	}

	return e.formatOutput(resultText(result))
}

// ExecuteSimple executes a tool and returns the result as a string
func (e *ToolExecutor) ExecuteSimple(ctx context.Context, toolName string, args map[string]interface{}) (string, error) {
	return e.client.CallToolSimple(ctx, toolName, args)
}

// ExecuteJSON executes a tool and returns the result as parsed JSON
func (e *ToolExecutor) ExecuteJSON(ctx context.Context, toolName string, args map[string]interface{}) (interface{}, error) {
	return e.client.CallToolJSON(ctx, toolName, args)
}

// formatError prints a failure and returns it as an error. JSON and YAML
// formats print the raw document so scripts can inspect the error kind.
func (e *ToolExecutor) formatError(raw string) error {
	summary := describeFailure(raw)

	switch e.options.Format {
	case OutputFormatJSON:
		fmt.Fprintln(e.options.Out, raw)
	case OutputFormatYAML:
		if err := e.outputYAML(raw); err != nil {
			fmt.Fprintln(e.options.Out, raw)
		}
	default:
		fmt.Fprintln(e.options.ErrOut, color.Render(color.ErrorBoxStyle, summary))
	}
	return fmt.Errorf("%s", summary)
}

// formatOutput formats the tool output according to the specified format
func (e *ToolExecutor) formatOutput(raw string) error {
	if raw == "" {
		if !e.options.Quiet {
			fmt.Fprintln(e.options.Out, "No results")
		}
		return nil
	}

	switch e.options.Format {
	case OutputFormatJSON:
		fmt.Fprintln(e.options.Out, raw)
		return nil
	case OutputFormatYAML:
		return e.outputYAML(raw)
	case OutputFormatTable:
		return e.outputTable(raw)
	default:
		return fmt.Errorf("unsupported output format: %s", e.options.Format)
	}
}

// outputYAML converts JSON to YAML and prints it
func (e *ToolExecutor) outputYAML(jsonData string) error {
	var data interface{}
	if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
		// Plain text results print as they are
		fmt.Fprintln(e.options.Out, jsonData)
		return nil
	}

	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to convert to YAML: %w", err)
	}

	fmt.Fprint(e.options.Out, string(yamlData))
	return nil
}

// outputTable formats data as tables
func (e *ToolExecutor) outputTable(jsonData string) error {
	var data interface{}
	if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
		fmt.Fprintln(e.options.Out, jsonData) // Fallback to raw text if not JSON
		return nil
	}

	switch d := data.(type) {
	case map[string]interface{}:
		return e.formatTableFromObject(d)
	case []interface{}:
		return e.formatTableFromArray(d)
	default:
		// Simple value, just print it
		fmt.Fprintln(e.options.Out, jsonData)
		return nil
	}
}

// formatTableFromObject handles wrapped lists such as {"templates": [...],
// "total": N} and documents that mix scalar fields with lists of objects.
func (e *ToolExecutor) formatTableFromObject(data map[string]interface{}) error {
	if arrayKey := e.findArrayKey(data); arrayKey != "" {
		arr := data[arrayKey].([]interface{})
		if err := e.formatTableFromArray(arr); err != nil {
			return err
		}
		if total, ok := data["total"]; ok {
			fmt.Fprintf(e.options.Out, "\n%s %v %s\n",
				text.FgHiBlue.Sprint("Total:"),
				text.FgHiWhite.Sprint(total),
				e.pluralize(arrayKey))
		}
		return nil
	}

	scalars := make(map[string]interface{})
	var sections []string
	for key, value := range data {
		if isObjectList(value) {
			sections = append(sections, key)
			continue
		}
		scalars[key] = value
	}
	sort.Strings(sections)

	if len(scalars) > 0 {
		if err := e.formatKeyValueTable(scalars); err != nil {
			return err
		}
	}
	for _, key := range sections {
		fmt.Fprintf(e.options.Out, "\n%s\n", color.Render(color.TitleStyle, strings.ToUpper(key)))
		if err := e.formatTableFromArray(data[key].([]interface{})); err != nil {
			return err
		}
	}
	return nil
}

// findArrayKey looks for list wrappers that carry a total
func (e *ToolExecutor) findArrayKey(data map[string]interface{}) string {
	if _, hasTotal := data["total"]; !hasTotal {
		return ""
	}
	arrayKeys := []string{"templates", "utilities", "references", "items", "results"}
	for _, key := range arrayKeys {
		if value, exists := data[key]; exists {
			if _, isArray := value.([]interface{}); isArray {
				return key
			}
		}
	}
	return ""
}

func isObjectList(value interface{}) bool {
	arr, ok := value.([]interface{})
	if !ok || len(arr) == 0 {
		return false
	}
	_, isObject := arr[0].(map[string]interface{})
	return isObject
}

// formatTableFromArray creates a table from an array of objects
func (e *ToolExecutor) formatTableFromArray(data []interface{}) error {
	if len(data) == 0 {
		fmt.Fprintln(e.options.Out, text.FgYellow.Sprint("No items found"))
		return nil
	}

	// Get the first object to determine columns
	firstObj, ok := data[0].(map[string]interface{})
	if !ok {
		// Array of simple values
		return e.formatSimpleList(data)
	}

	columns := e.optimizeColumns(firstObj)

	t := table.NewWriter()
	t.SetOutputMirror(e.options.Out)
	t.SetStyle(table.StyleRounded)

	headers := make(table.Row, len(columns))
	for i, col := range columns {
		headers[i] = text.FgHiCyan.Sprint(strings.ToUpper(col))
	}
	t.AppendHeader(headers)

	for _, item := range data {
		if itemMap, ok := item.(map[string]interface{}); ok {
			row := make(table.Row, len(columns))
			for i, col := range columns {
				row[i] = e.formatCellValue(col, itemMap[col])
			}
			t.AppendRow(row)
		}
	}

	t.Render()
	return nil
}

// optimizeColumns determines the best columns to show based on the data type
func (e *ToolExecutor) optimizeColumns(sample map[string]interface{}) []string {
	var allKeys []string
	for key := range sample {
		allKeys = append(allKeys, key)
	}
	sort.Strings(allKeys)

	priorityColumns := map[string][]string{
		"templates":  {"id", "name", "category", "version", "modifiable", "variables", "steps"},
		"utilities":  {"name", "signature", "description"},
		"errors":     {"kind", "subject", "message"},
		"unresolved": {"reference", "location", "reason"},
		"steps":      {"id", "type", "label", "config"},
		"variables":  {"name", "type", "required", "default", "description"},
		"edges":      {"id", "source", "target"},
	}

	resourceType := e.detectResourceType(sample)
	if priorities, exists := priorityColumns[resourceType]; exists {
		var columns []string
		for _, col := range priorities {
			if e.keyExists(sample, col) {
				columns = append(columns, col)
			}
		}
		return columns
	}

	// Default: use first 5 keys to avoid wrapping
	if len(allKeys) > 5 {
		return allKeys[:5]
	}
	return allKeys
}

// detectResourceType attempts to determine what type of resource this is
func (e *ToolExecutor) detectResourceType(sample map[string]interface{}) string {
	switch {
	case e.keyExists(sample, "modifiable") && e.keyExists(sample, "id"):
		return "templates"
	case e.keyExists(sample, "signature"):
		return "utilities"
	case e.keyExists(sample, "kind") && e.keyExists(sample, "message"):
		return "errors"
	case e.keyExists(sample, "reference") && e.keyExists(sample, "reason"):
		return "unresolved"
	case e.keyExists(sample, "source") && e.keyExists(sample, "target"):
		return "edges"
	case e.keyExists(sample, "type") && e.keyExists(sample, "position"):
		return "steps"
	case e.keyExists(sample, "name") && e.keyExists(sample, "type"):
		return "variables"
	}
	return "generic"
}

// formatCellValue formats individual cell values with appropriate styling
func (e *ToolExecutor) formatCellValue(column string, value interface{}) interface{} {
	if value == nil {
		return text.FgHiBlack.Sprint("-")
	}

	switch strings.ToLower(column) {
	case "isvalid", "success":
		return e.formatValidity(value)
	case "modifiable", "required":
		return e.formatFlag(value)
	case "kind", "errorkind":
		return text.FgRed.Sprint(value)
	case "variables", "references", "matches":
		return e.formatList(value)
	case "description", "message", "reason":
		return truncate(fmt.Sprint(value), 50)
	case "type", "category":
		return text.FgCyan.Sprint(value)
	}

	switch v := value.(type) {
	case map[string]interface{}, []interface{}:
		compact, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return truncate(string(compact), 40)
	case float64:
		return formatNumber(v)
	default:
		return truncate(fmt.Sprint(v), 30)
	}
}

// formatValidity renders boolean outcomes
func (e *ToolExecutor) formatValidity(value interface{}) interface{} {
	if b, ok := value.(bool); ok {
		if b {
			return text.FgGreen.Sprint("✅ valid")
		}
		return text.FgRed.Sprint("❌ invalid")
	}
	return fmt.Sprint(value)
}

// formatFlag renders yes/no columns
func (e *ToolExecutor) formatFlag(value interface{}) interface{} {
	if b, ok := value.(bool); ok {
		if b {
			return text.FgGreen.Sprint("yes")
		}
		return text.FgHiBlack.Sprint("no")
	}
	return fmt.Sprint(value)
}

// formatList shows the first entries of a list and a count of the rest
func (e *ToolExecutor) formatList(value interface{}) interface{} {
	items, ok := value.([]interface{})
	if !ok {
		return fmt.Sprint(value)
	}
	if len(items) == 0 {
		return text.FgHiBlack.Sprint("none")
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, fmt.Sprint(item))
	}
	if len(names) <= 3 {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(names[:3], ", "), len(names)-3)
}

// formatKeyValueTable formats an object as key-value pairs
func (e *ToolExecutor) formatKeyValueTable(data map[string]interface{}) error {
	t := table.NewWriter()
	t.SetOutputMirror(e.options.Out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("PROPERTY"),
		text.FgHiCyan.Sprint("VALUE"),
	})

	// Sort keys for consistent output
	var keys []string
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		t.AppendRow(table.Row{
			text.FgYellow.Sprint(key),
			e.formatCellValue(key, data[key]),
		})
	}

	t.Render()
	return nil
}

// formatSimpleList formats an array of simple values
func (e *ToolExecutor) formatSimpleList(data []interface{}) error {
	for _, item := range data {
		if f, ok := item.(float64); ok {
			fmt.Fprintln(e.options.Out, formatNumber(f))
			continue
		}
		fmt.Fprintln(e.options.Out, item)
	}
	return nil
}

// Helper functions
func (e *ToolExecutor) keyExists(data map[string]interface{}, key string) bool {
	_, exists := data[key]
	return exists
}

func (e *ToolExecutor) pluralize(word string) string {
	if strings.HasSuffix(word, "s") {
		return word
	}
	return word + "s"
}

// truncate shortens s to width terminal columns.
func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprint(f)
}

// describeFailure turns the JSON document of a failed tool call into a
// readable message. Text that is not JSON is returned unchanged.
func describeFailure(raw string) string {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return raw
	}

	var lines []string
	if apiErr, ok := doc["error"].(map[string]interface{}); ok {
		lines = append(lines, fmt.Sprintf("%v: %v", apiErr["kind"], apiErr["message"]))
		lines = append(lines, describeViolations(apiErr["violations"])...)
		return strings.Join(lines, "\n")
	}
	if kind, ok := doc["errorKind"]; ok {
		msg := doc["message"]
		if msg == nil {
			msg = doc["error"]
		}
		return fmt.Sprintf("%v: %v", kind, msg)
	}
	if errs, ok := doc["errors"]; ok {
		lines = append(lines, "validation failed")
		lines = append(lines, describeViolations(errs)...)
		return strings.Join(lines, "\n")
	}
	return raw
}

func describeViolations(v interface{}) []string {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	lines := make([]string, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("  - %v: %v", m["kind"], m["message"]))
	}
	return lines
}
