package audit

import (
	"context"
	"errors"
	"time"
)

// ErrDateRangeExceeded is returned when a query date range exceeds the maximum allowed.
var ErrDateRangeExceeded = errors.New("date range exceeds maximum of 7 days")

// AuditStore persists audit records.
// Interface owned by domain per hexagonal architecture.
// Implementation handles batching and async writes.
type AuditStore interface {
	// Append stores audit records. Must be non-blocking from caller perspective.
	Append(ctx context.Context, records ...AuditRecord) error

	// Flush forces pending records to storage. Called during shutdown.
	Flush(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// AuditFilter specifies query parameters for audit log queries.
type AuditFilter struct {
	// StartTime is the beginning of the time range (required).
	StartTime time.Time
	// EndTime is the end of the time range (required).
	EndTime time.Time
	// HostID filters by requesting host (optional).
	HostID string
	// ToolName filters by tool name (optional).
	ToolName string
	// EventType filters by event type (optional).
	EventType EventType
	// Decision filters by decision (optional: "allow", "deny", or "prompt").
	Decision string
	// Limit is the maximum number of records to return (default 100, max 100).
	Limit int
	// Cursor is the pagination cursor for fetching next page (optional).
	Cursor string
}

// ToolCallStats contains per-tool policy decision statistics.
type ToolCallStats struct {
	// Calls is the total number of decisions evaluated for this tool.
	Calls int64
	// Allowed is the number of decisions that resolved to allow.
	Allowed int64
	// Denied is the number of decisions that resolved to deny.
	Denied int64
	// Prompted is the number of decisions that resolved to prompt.
	Prompted int64
}

// AuditStats contains aggregated audit statistics for a time period.
type AuditStats struct {
	// TotalRecords is the total number of audit records in the period.
	TotalRecords int64
	// UniqueHosts is the count of distinct host ids.
	UniqueHosts int64
	// ByTool maps tool names to per-tool decision statistics.
	ByTool map[string]ToolCallStats
	// ByEventType maps event types to counts.
	ByEventType map[EventType]int64
	// ByDecision maps decision values to counts.
	ByDecision map[string]int64
}

// AuditQueryStore provides read access to the audit trail for admin queries.
// This interface is separate from AuditStore, which handles writes.
type AuditQueryStore interface {
	// Query retrieves audit records matching the filter.
	// Returns records, next cursor (empty if no more pages), and error.
	// Returns ErrDateRangeExceeded if EndTime - StartTime exceeds 7 days.
	Query(ctx context.Context, filter AuditFilter) ([]AuditRecord, string, error)

	// QueryStats returns aggregated statistics for the given time range.
	QueryStats(ctx context.Context, start, end time.Time) (*AuditStats, error)
}
