// Package tools exposes flewid's data-flow operations as MCP tools.
//
// Tool Categories:
//
//   - Transform: run snippets in procedural, path-query or pattern-extraction
//     mode and list the utility library
//   - Filter: compile filter expressions into placeholder predicates
//   - Variables: resolve, list, check and validate {{...}} references
//   - Templates: list, inspect, author and instantiate workflow templates
//
// Successful calls return a JSON document as text content. Failures that
// carry a classification (for example a VariableValidationFailed error with
// its individual violations) are returned as error results whose text is
// also JSON, so clients can inspect the kind without parsing messages.
//
// Example:
//
//	{
//	  "method": "tools/call",
//	  "params": {
//	    "name": "filter_compile",
//	    "arguments": {"expression": "begins_with(OrderId, \"2024-\")"}
//	  }
//	}
//
// Response:
//
//	{
//	  "isValid": true,
//	  "compiled": {
//	    "predicate": "begins_with",
//	    "expression": "begins_with(#attr0, :val0)",
//	    "attributeNames": {"#attr0": "OrderId"},
//	    "attributeValues": {":val0": "2024-"}
//	  }
//	}
package tools
