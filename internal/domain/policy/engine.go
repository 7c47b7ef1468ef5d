package policy

import (
	"context"
	"fmt"
	"strings"
)

// Evaluator decides allow/deny/prompt for a (tool, usage context) pair.
// RoleGateEvaluator is an optional hook letting the caller plug in RBAC-gate
// evaluation (the CEL-based EXPANSION) without this package depending on
// a CEL library directly.
type Evaluator interface {
	Evaluate(ctx context.Context, tool *Tool, usage UsageContext, global GlobalPolicy) (Decision, error)
}

// RoleGateEvaluator evaluates a RoleGate's condition against a usage
// context, returning whether the gate fired.
type RoleGateEvaluator interface {
	EvaluateGate(ctx context.Context, gate RoleGate, tool *Tool, usage UsageContext) (fired bool, err error)
}

// Engine is the default Evaluator: a direct implementation of spec.md
// §4.4's ordered precedence, plus the EXPANSION's optional RoleGate
// pre-step. It holds no state of its own — callers that want result
// caching wrap an Engine (see internal/service.PolicyService).
type Engine struct {
	gates RoleGateEvaluator
}

// NewEngine builds an Engine. gates may be nil, in which case any Tool's
// RBACGate is ignored (equivalent to no gate being present).
func NewEngine(gates RoleGateEvaluator) *Engine {
	return &Engine{gates: gates}
}

func (e *Engine) Evaluate(ctx context.Context, tool *Tool, usage UsageContext, global GlobalPolicy) (Decision, error) {
	details := ValidationDetails{}

	if tool != nil && tool.RBACGate != nil && e.gates != nil {
		fired, err := e.gates.EvaluateGate(ctx, *tool.RBACGate, tool, usage)
		if err != nil {
			return Decision{}, fmt.Errorf("rbac gate evaluation failed: %w", err)
		}
		if fired {
			return gateDecision(*tool.RBACGate, details), nil
		}
	}

	effective := resolveEffectivePermission(tool, usage.DataUsage, global)
	details.EffectivePermission = effective

	if effective == PermissionDeny {
		details.TargetCheckPassed = false
		return Decision{
			Outcome:           OutcomeDeny,
			ErrorCode:         "INSUFFICIENT_PERMISSIONS",
			ErrorMessage:      fmt.Sprintf("data usage %q is denied", usage.DataUsage),
			ValidationDetails: details,
		}, nil
	}

	if deny, reason := evaluateTargetPolicy(tool, usage.Target, global); deny {
		details.TargetCheckPassed = false
		details.TargetCheckReason = reason
		return Decision{
			Outcome:           OutcomeDeny,
			ErrorCode:         "INSUFFICIENT_PERMISSIONS",
			ErrorMessage:      reason,
			ValidationDetails: details,
		}, nil
	}
	details.TargetCheckPassed = true

	consentRequired, reasons := evaluateConsent(tool, usage, global)
	details.ConsentTriggered = consentRequired
	details.ConsentReasons = reasons

	if effective == PermissionPrompt || consentRequired {
		return Decision{
			Outcome:           OutcomePrompt,
			ValidationDetails: details,
		}, nil
	}

	return Decision{
		Outcome:           OutcomeAllow,
		ValidationDetails: details,
	}, nil
}

func gateDecision(gate RoleGate, details ValidationDetails) Decision {
	switch gate.Action {
	case PermissionDeny:
		return Decision{
			Outcome:           OutcomeDeny,
			ErrorCode:         "INSUFFICIENT_PERMISSIONS",
			ErrorMessage:      "denied by role gate",
			ValidationDetails: details,
		}
	case PermissionPrompt:
		return Decision{
			Outcome:           OutcomePrompt,
			ValidationDetails: details,
		}
	default:
		return Decision{
			Outcome:           OutcomeAllow,
			ValidationDetails: details,
		}
	}
}

// resolveEffectivePermission implements spec.md §4.4's "Effective
// permission resolution" (ordered): tool-level permission for this
// DataUsage wins, else the server default. Per the usage hierarchy
// (`display < process < store < transfer`), an explicit `allow` declared
// at a higher level implicitly grants every lower level; `deny` and
// `prompt` never cascade down (resolved Open Question: the hierarchy
// check applies only to `allow`).
func resolveEffectivePermission(tool *Tool, usage DataUsage, global GlobalPolicy) PermissionValue {
	if tool != nil && tool.DataPolicy != nil {
		if v, ok := hierarchyLookup(tool.DataPolicy.DataUsagePermissions, usage); ok {
			return v
		}
	}
	if v, ok := hierarchyLookup(global.DefaultDataUsagePolicy, usage); ok {
		return v
	}
	return PermissionDeny
}

// hierarchyLookup resolves the permission for usage within perms: an
// exact entry wins outright; otherwise any higher level explicitly set to
// `allow` implicitly grants usage. Absence of both returns ok == false.
func hierarchyLookup(perms map[DataUsage]PermissionValue, usage DataUsage) (PermissionValue, bool) {
	if v, ok := perms[usage]; ok {
		return v, true
	}
	for level, v := range perms {
		if v == PermissionAllow && usageRank[level] > usageRank[usage] {
			return PermissionAllow, true
		}
	}
	return "", false
}

// evaluateTargetPolicy implements spec.md §4.4's "Target permission
// evaluation", short-circuiting on the first denial.
func evaluateTargetPolicy(tool *Tool, target Target, global GlobalPolicy) (deny bool, reason string) {
	if tool != nil && tool.DataPolicy != nil {
		tp := tool.DataPolicy.TargetPolicy

		if contains(tp.BlockedTargets, target.Destination) {
			return true, fmt.Sprintf("%s_blocked_by_tool", target.Type)
		}

		if tp.AllowedTargetsNone {
			return true, "no_targets_allowed"
		}
		if tp.AllowedTargets != nil {
			if !contains(tp.AllowedTargets, target.Destination) {
				return true, fmt.Sprintf("%s_not_in_allowlist", target.Type)
			}
			return false, ""
		}

		// Legacy per-type fields apply only when the unified fields above
		// did not decide and the field matches target.Type.
		switch target.Type {
		case TargetServer:
			if contains(tp.BlockedServers, target.Destination) {
				return true, "server_blocked_by_tool"
			}
			if tp.AllowedServers != nil && !contains(tp.AllowedServers, target.Destination) {
				return true, "server_not_in_allowlist"
			}
		case TargetClient:
			if tp.AllowedClients != nil && !contains(tp.AllowedClients, target.Destination) {
				return true, "client_not_in_allowlist"
			}
		}
	}

	switch target.Type {
	case TargetServer:
		if global.DefaultTargetPolicy.ServerNone {
			return true, "server_blocked_by_default_policy"
		}
		if len(global.DefaultTargetPolicy.ServerAllowlist) > 0 && !contains(global.DefaultTargetPolicy.ServerAllowlist, target.Destination) {
			return true, "server_not_in_default_allowlist"
		}
	case TargetLLM:
		if global.DefaultTargetPolicy.LLMDeny {
			return true, "llm_blocked_by_default_policy"
		}
	}

	return false, ""
}

// evaluateConsent implements spec.md §4.4's "Consent check" (ordered).
func evaluateConsent(tool *Tool, usage UsageContext, global GlobalPolicy) (required bool, reasons []string) {
	if usage.DataUsage == UsageDisplay && usage.Target.Type == TargetClient {
		return false, nil
	}

	var overrides ConsentOverrides
	isSensitive := false
	if tool != nil {
		isSensitive = tool.IsSensitive
		if tool.DataPolicy != nil {
			overrides = tool.DataPolicy.ConsentOverrides
		}
	}

	if overrides.NeverRequireConsent {
		return false, nil
	}
	if overrides.AlwaysRequireConsent {
		msg := overrides.CustomConsentMessage
		if msg == "" {
			msg = "this tool always requires consent before sharing its data"
		}
		return true, []string{msg}
	}
	if contains(overrides.AllowedWithoutConsent, usage.Target.Destination) {
		return false, nil
	}
	if contains(global.TrustedTargets, usage.Target.Destination) {
		return false, nil
	}
	if matchesTrustedDomain(global.TrustedDomains, usage.Target.Destination) {
		return false, nil
	}
	if cat, ok := global.TargetCategories[usage.Target.Destination]; ok && !cat.RequiresConsent {
		return false, nil
	}

	var fired []string
	trig := global.RequireConsentFor

	if trig.AnyTransfer && usage.DataUsage == UsageTransfer {
		fired = append(fired, "any_transfer")
	}
	if trig.SensitiveDataTransfer && isSensitive {
		fired = append(fired, "sensitive_data_transfer")
	}
	if trig.LLMDataAccess && usage.Target.Type == TargetLLM {
		fired = append(fired, "llm_data_access")
	}
	if usage.Target.Type == TargetLLM {
		if cat, ok := global.TargetCategories[usage.Target.Destination]; ok {
			if retention, _ := cat.Metadata["data_retention"].(string); retention == "permanent" {
				fired = append(fired, "llm_permanent_retention")
			}
		}
	}
	if trig.ExternalServerTransfer && usage.Target.Type == TargetServer {
		if cat, ok := global.TargetCategories[usage.Target.Destination]; ok && cat.Category == CategoryExternal {
			fired = append(fired, "external_server_transfer")
		}
	}

	if len(fired) > 0 {
		return true, fired
	}
	return false, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func matchesTrustedDomain(domains []string, destination string) bool {
	for _, d := range domains {
		if d == destination {
			return true
		}
		if strings.HasPrefix(d, "*.") {
			suffix := d[1:] // ".suffix"
			if strings.HasSuffix(destination, suffix) {
				return true
			}
		}
	}
	return false
}

var _ Evaluator = (*Engine)(nil)
