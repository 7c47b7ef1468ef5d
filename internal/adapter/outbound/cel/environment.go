// Package cel provides a CEL-based evaluator for the Policy Evaluator's
// optional RBACGate pre-filter.
package cel

import (
	"github.com/google/cel-go/cel"

	"github.com/mcpp-project/mcpp-core/internal/domain/policy"
)

// NewGateEnvironment creates the CEL environment used to evaluate a
// Tool's RBACGate condition. The activation is intentionally small and
// scoped to what a role gate needs to decide: who is asking (user_roles),
// what is being asked for (tool_name, data_usage), and where it is headed
// (target_type, destination).
func NewGateEnvironment() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("tool_name", cel.StringType),
		cel.Variable("user_roles", cel.ListType(cel.StringType)),
		cel.Variable("data_usage", cel.StringType),
		cel.Variable("target_type", cel.StringType),
		cel.Variable("destination", cel.StringType),
	)
}

// BuildGateActivation builds a CEL activation from a RoleGate evaluation's
// inputs. userRoles is normalized to a non-nil slice so CEL's `in` and
// `.exists()` operators never see an untyped nil.
func BuildGateActivation(tool *policy.Tool, usage policy.UsageContext) map[string]any {
	toolName := ""
	if tool != nil {
		toolName = tool.Name
	}
	userRoles := usage.Requester.Roles
	if userRoles == nil {
		userRoles = []string{}
	}
	return map[string]any{
		"tool_name":   toolName,
		"user_roles":  userRoles,
		"data_usage":  string(usage.DataUsage),
		"target_type": string(usage.Target.Type),
		"destination": usage.Target.Destination,
	}
}
