package tool

import "context"

// Catalog is the MCP-facing registry of tools/list entries: the subset of
// tool registration the dispatcher needs to answer tools/list and to
// classify a tool's default sensitivity before a policy.Tool exists for it.
// Separate from policy.ToolStore, which owns the policy-evaluation side of
// a tool's registration.
type Catalog interface {
	RegisterTool(ctx context.Context, t Tool) error
	GetTool(ctx context.Context, name string) (Tool, bool, error)
	ListTools(ctx context.Context) ([]Tool, error)
}
