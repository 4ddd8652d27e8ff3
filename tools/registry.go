// Package tools provides a metadata-driven registry for the MCP surface of
// the volcano server: tool definitions, the dispatch boundary that turns
// every tool failure into error text, and prompt and resource registration.
package tools

// ToolSpec defines a tool's metadata for declarative registration.
// Each spec maps to a volcano client method with a matching Args type.
type ToolSpec struct {
	// Name is the MCP tool name (e.g., "search-volcanoes")
	Name string

	// Method is the client method name (e.g., "SearchVolcanoes")
	Method string

	// Description is the tool description shown to LLMs
	Description string

	// Title is the human-readable tool title for annotations
	Title string

	// Category groups tools logically (search, monitoring, risk, details)
	Category string

	// Layers lists the feature layers the tool queries
	Layers []string

	// ReadOnly indicates the tool doesn't modify upstream state
	ReadOnly bool

	// Idempotent indicates repeated calls have the same effect
	Idempotent bool

	// OpenWorld indicates the tool accesses external resources
	OpenWorld bool
}

// FindTool returns the spec for name
func FindTool(name string) (ToolSpec, bool) {
	for _, spec := range AllTools {
		if spec.Name == name {
			return spec, true
		}
	}
	return ToolSpec{}, false
}

// ptr is a helper to create a pointer to a value.
func ptr[T any](v T) *T {
	return &v
}
