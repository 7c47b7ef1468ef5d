package memory

import (
	"context"
	"encoding/json"

	"github.com/mcpp-project/mcpp-core/internal/domain/cache"
	"github.com/mcpp-project/mcpp-core/internal/service"
)

// EchoExecutor implements service.ToolExecutor by returning the call's own
// arguments as its result. It exists so the gateway is runnable with no
// upstream configured (DevMode, local smoke testing of policy/consent/cache
// behavior) — it never runs real tool logic.
type EchoExecutor struct{}

// NewEchoExecutor creates an EchoExecutor.
func NewEchoExecutor() *EchoExecutor {
	return &EchoExecutor{}
}

// Execute decodes arguments and hands them back as a JSON payload.
func (e *EchoExecutor) Execute(ctx context.Context, name string, arguments json.RawMessage) (service.ToolExecutionResult, error) {
	var payload interface{}
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &payload); err != nil {
			return service.ToolExecutionResult{}, err
		}
	}
	return service.ToolExecutionResult{Kind: cache.KindJSON, Payload: payload}, nil
}

var _ service.ToolExecutor = (*EchoExecutor)(nil)
