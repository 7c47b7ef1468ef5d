package policy

import (
	"context"
	"errors"
)

// ErrToolNotFound is returned by a ToolStore when no tool is registered
// under the requested name. Evaluate treats it as "no tool-level policy" —
// evaluation falls through to the server's GlobalPolicy — rather than as a
// failure, so callers must use errors.Is to distinguish it from a real
// store error.
var ErrToolNotFound = errors.New("tool not found")

// ToolStore holds the registered Tool policies the evaluator consults.
// Unlike the teacher's rule-CRUD PolicyStore, MCPP tools are a flat
// registry keyed by name — there is no rule ordering or glob matching in
// the policy shape itself (only the additive RoleGate uses an expression).
type ToolStore interface {
	GetTool(ctx context.Context, name string) (*Tool, error)
	PutTool(ctx context.Context, tool Tool) error
	ListTools(ctx context.Context) ([]Tool, error)
	DeleteTool(ctx context.Context, name string) error
}

// GlobalPolicyStore holds the single server-wide GlobalPolicy document.
type GlobalPolicyStore interface {
	GetGlobalPolicy(ctx context.Context) (GlobalPolicy, error)
	SetGlobalPolicy(ctx context.Context, p GlobalPolicy) error
}
