// Package templates manages the catalog of reusable workflow templates and
// turns a template plus caller-supplied variables into a ready-to-run list
// of steps and edges.
//
// The catalog is assembled from three layers, later layers overriding
// earlier ones by template id:
//
//  1. Templates embedded in the binary (builtin/*.yaml)
//  2. Template files in ~/.config/flewid/templates/ and ./.flewid/templates/
//  3. Templates authored through the API, persisted to authored_templates.yaml
//
// Only authored templates can be updated or deleted. Every create and update
// re-validates the whole template structure.
//
// Instantiation applies variable defaults, validates all supplied values in
// one pass and substitutes them into each step's configuration. References
// to other steps' outputs are left in place for the executor to fill in.
package templates
