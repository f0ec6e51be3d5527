// Package server exposes flewid over the Model Context Protocol.
//
// Every operation of the api tool set is registered as an MCP tool, and each
// template in the catalog is published as a flewid://templates/<id>
// resource. Resources are republished whenever the catalog reports a change.
//
// Three transports are supported: streamable HTTP (default, endpoint /mcp),
// Server-Sent Events (/sse and /message) and standard I/O.
package server
