// Package collaborator defines the contract an external voice-assistant
// bridge uses to discover and invoke operations against the domain API
// (§4.I). It ships the interface and its DTOs only; the domain API's
// day/week/assignment views are already shaped to satisfy it, but wiring
// a concrete adapter is out of scope here.
package collaborator

import "context"

// Tool describes one callable operation, in the shape a tool-calling LLM
// expects to see it declared.
type Tool struct {
	Name        string
	Description string
	Parameters  ToolSchema
}

// ToolSchema is a JSON-Schema-shaped parameter description for a Tool.
type ToolSchema struct {
	Properties map[string]ToolProperty
	Required   []string
}

// ToolProperty describes one parameter of a ToolSchema.
type ToolProperty struct {
	Type        string
	Description string
	EnumHint    []string // collapsed into Description by the adapter, not emitted as a separate schema field
}

// ToolResult is the outcome of a CallTool invocation.
type ToolResult struct {
	Success bool
	Data    any
	Error   string
}

// Collaborator is implemented by an adapter that exposes this module's
// domain API to an external tool-calling client. No implementation ships
// in this module.
type Collaborator interface {
	ListTools(ctx context.Context) ([]Tool, error)
	CallTool(ctx context.Context, name string, args map[string]any) (ToolResult, error)
}
