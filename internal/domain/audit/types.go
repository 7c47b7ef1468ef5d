// Package audit contains the domain types for the audit trail: cache
// reads/writes, policy decisions, and consent lifecycle events.
package audit

import (
	"strings"
	"time"
)

// Decision constants mirror policy.Outcome as plain strings so audit
// records stay independent of the policy package.
const (
	DecisionAllow  = "allow"
	DecisionDeny   = "deny"
	DecisionPrompt = "prompt"
)

// EventType categorizes an audit record.
type EventType string

const (
	// EventTypeCachePut records a cache.Store.Put call (tools/call caching a sensitive result).
	EventTypeCachePut EventType = "cache.put"
	// EventTypeCacheGet records a cache read (get_data, or placeholder resolution reading a result).
	EventTypeCacheGet EventType = "cache.get"
	// EventTypePolicyDecision records a policy.Engine.Evaluate outcome.
	EventTypePolicyDecision EventType = "policy.decision"
	// EventTypeConsent records a step in the consent lifecycle (request issued,
	// resolved by the user, or timed out). The Stage field distinguishes which.
	EventTypeConsent EventType = "consent"
)

// ConsentStage further categorizes an EventTypeConsent record.
const (
	ConsentStageRequested = "requested"
	ConsentStageResolved  = "resolved"
	ConsentStageTimeout   = "timeout"
)

// sensitiveKeywords lists substrings that indicate a sensitive argument key.
// Comparison is case-insensitive.
var sensitiveKeywords = []string{
	"password", "secret", "token", "api_key", "apikey",
	"credential", "auth", "private_key", "privatekey",
}

// RedactSensitiveArgs returns a copy of args with sensitive values masked.
// A key is considered sensitive if it contains any of the sensitiveKeywords
// (case-insensitive). Values are replaced with "***REDACTED***".
func RedactSensitiveArgs(args map[string]interface{}) map[string]interface{} {
	if len(args) == 0 {
		return args
	}
	redacted := make(map[string]interface{}, len(args))
	for k, v := range args {
		if isSensitiveKey(k) {
			redacted[k] = "***REDACTED***"
		} else {
			redacted[k] = v
		}
	}
	return redacted
}

// isSensitiveKey checks if a key name indicates sensitive data.
func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// AuditRecord represents a single auditable event. Not every field applies
// to every EventType; fields that don't apply are left at their zero value.
type AuditRecord struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// EventType categorizes the record.
	EventType EventType
	// RequestID correlates this record with the JSON-RPC request that caused it.
	RequestID string
	// HostID identifies the requesting host/agent.
	HostID string

	// CallID is the originating tool call (cache.put/get events).
	CallID string
	// PlaceholderKey is the cache key involved (cache.put/get events).
	PlaceholderKey string

	// ToolName is the tool a policy decision or consent event concerns.
	ToolName string
	// DataUsage is the usage context evaluated (display|process|store|transfer).
	DataUsage string
	// TargetType is the destination category evaluated (client|server|llm|all).
	TargetType string
	// Destination is the specific target identifier evaluated.
	Destination string

	// Decision is the outcome: "allow", "deny", or "prompt".
	Decision string
	// Reason is a short human-readable explanation of the decision.
	Reason string

	// ConsentStage distinguishes the consent lifecycle step for EventTypeConsent records.
	ConsentStage string

	// LatencyMicros is the evaluation latency in microseconds.
	LatencyMicros int64
}
