// Package config provides configuration management for flewid.
//
// Configuration is loaded and merged in the following order, later sources
// overriding earlier ones:
//
//  1. Default configuration (compiled in)
//  2. User configuration (~/.config/flewid/config.yaml)
//  3. Project configuration (./.flewid/config.yaml)
//
// A single directory can be used instead with LoadConfigFromPath, which is
// what the --config-path flag does.
//
// # Configuration Structure
//
//	globalSettings:
//	  logLevel: info      # debug, info, warn, error
//	  logFormat: text     # text or json
//
//	transform:
//	  timeout: 5s         # wall-clock limit for procedural snippets
//	  maxSnippetBytes: 65536
//	  maxCallDepth: 1000  # nested function calls per snippet
//
//	templates:
//	  includeBuiltin: true
//	  directory: ~/.config/flewid
//
//	server:
//	  transport: streamable-http   # or sse, stdio
//	  host: localhost
//	  port: 8090
//
// # Definition Directories
//
// Besides config.yaml, each layer may contain a templates/ directory with
// one workflow template per YAML file. LoadAndParseYAML reads such
// directories generically and collects per-file errors in a
// ConfigurationErrorCollection instead of failing the whole load.
package config
