// Package sentinelgate provides a Go client SDK for the Model Context Privacy
// Protocol gateway's JSON-RPC wire contract (spec.md §6).
//
// MCPP mediates what data a tool call's result exposes to the calling agent:
// sensitive payloads are cached server-side and replaced with placeholders,
// which the agent can later resolve (subject to policy and consent) through
// this client.
//
// Quick start:
//
//	// Set MCPP_SERVER_ADDR, then:
//	client := sentinelgate.NewClient()
//
//	entry, err := client.GetData(ctx, sentinelgate.GetDataParams{
//	    ToolCallID: toolCallID,
//	    UsageContext: &sentinelgate.UsageContext{
//	        Requester: sentinelgate.Requester{Name: "agent-1", Roles: []string{"developer"}},
//	        DataUsage: sentinelgate.DataUsageInternal,
//	    },
//	})
//	if err != nil {
//	    var denied *sentinelgate.ConsentDeniedError
//	    if errors.As(err, &denied) {
//	        fmt.Printf("consent denied: %s\n", denied.Reason)
//	    }
//	}
package sentinelgate

import "encoding/json"

// Decision is the outcome of a consent prompt.
type Decision string

const (
	// DecisionApprove means the requester approved the pending request.
	DecisionApprove Decision = "allow"

	// DecisionDeny means the requester denied the pending request.
	DecisionDeny Decision = "deny"
)

// DataUsage describes how the caller intends to use resolved data, used by
// the policy engine to decide whether a placeholder may be resolved without
// prompting.
type DataUsage string

const (
	// DataUsageInternal means the data stays within the agent's own reasoning
	// and is never forwarded to a third party.
	DataUsageInternal DataUsage = "internal"

	// DataUsageExternal means the data will be sent to an external target
	// (another tool call, an API, a message to a human).
	DataUsageExternal DataUsage = "external"
)

// Requester identifies who is asking for data to be resolved.
type Requester struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`
}

// Target describes where resolved data is headed, when DataUsage is external.
type Target struct {
	Type   string `json:"type,omitempty"`
	Name   string `json:"name,omitempty"`
	Domain string `json:"domain,omitempty"`
}

// UsageContext accompanies a resolution request so the gateway's policy
// engine can evaluate it against the tool's data policy and RBAC gate.
type UsageContext struct {
	Requester Requester `json:"requester"`
	DataUsage DataUsage `json:"data_usage"`
	Target    *Target   `json:"target,omitempty"`
}

// Metadata describes a cached tool call result.
type Metadata struct {
	ToolName    string `json:"tool_name"`
	CreatedAt   string `json:"created_at"`
	IsSensitive bool   `json:"is_sensitive"`
	ExpiresAt   string `json:"expires_at,omitempty"`
}

// CachedEntry is the data returned by mcpp/get_data.
type CachedEntry struct {
	Kind     string      `json:"kind"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// FindReferenceResult is the data returned by mcpp/find_reference.
type FindReferenceResult struct {
	Placeholder string   `json:"placeholder"`
	Similarity  float64  `json:"similarity"`
	Metadata    Metadata `json:"metadata"`
}

// ResolvePlaceholdersResult is the data returned by mcpp/resolve_placeholders.
type ResolvePlaceholdersResult struct {
	ResolvedData     interface{}            `json:"resolved_data"`
	ResolutionStatus map[string]interface{} `json:"resolution_status"`
}

// ProvideConsentResult is the data returned by mcpp/provide_consent.
type ProvideConsentResult struct {
	Status string `json:"status"`
}

// ToolDescriptor is one entry in the result of tools/list.
type ToolDescriptor struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	RiskLevel   string `json:"risk_level,omitempty"`
}

// ToolListResult is the data returned by tools/list.
type ToolListResult struct {
	Tools      []ToolDescriptor `json:"tools"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// GetDataParams are the arguments to mcpp/get_data.
type GetDataParams struct {
	ToolCallID   string        `json:"tool_call_id"`
	UsageContext *UsageContext `json:"usage_context,omitempty"`
}

// FindReferenceParams are the arguments to mcpp/find_reference.
type FindReferenceParams struct {
	ToolCallID string `json:"tool_call_id"`
	Keyword    string `json:"keyword"`
	ColumnName string `json:"column_name,omitempty"`
}

// ResolvePlaceholdersParams are the arguments to mcpp/resolve_placeholders.
type ResolvePlaceholdersParams struct {
	Data         interface{}   `json:"data"`
	UsageContext *UsageContext `json:"usage_context,omitempty"`
	ToolName     string        `json:"tool_name,omitempty"`
}

// ProvideConsentParams are the arguments to mcpp/provide_consent.
type ProvideConsentParams struct {
	RequestID       string   `json:"request_id"`
	Decision        Decision `json:"decision"`
	Remember        bool     `json:"remember,omitempty"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
}

// CallToolParams are the arguments to tools/call.
type CallToolParams struct {
	Name       string          `json:"name"`
	Arguments  json.RawMessage `json:"arguments,omitempty"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
}
