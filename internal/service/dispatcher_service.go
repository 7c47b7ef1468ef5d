package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mcpp-project/mcpp-core/internal/domain/audit"
	"github.com/mcpp-project/mcpp-core/internal/domain/cache"
	"github.com/mcpp-project/mcpp-core/internal/domain/consent"
	"github.com/mcpp-project/mcpp-core/internal/domain/mcpperr"
	"github.com/mcpp-project/mcpp-core/internal/domain/placeholder"
	"github.com/mcpp-project/mcpp-core/internal/domain/policy"
	"github.com/mcpp-project/mcpp-core/internal/domain/reference"
	"github.com/mcpp-project/mcpp-core/internal/domain/tool"
)

const (
	defaultConsentTimeout          = 5 * time.Minute
	defaultRememberDurationMinutes = 60
)

// ToolExecutionResult is the raw output of invoking a tool, in the shape
// the Data Cache stores it: a Kind plus its matching payload.
type ToolExecutionResult struct {
	Kind    cache.Kind
	Payload interface{}
}

// ToolExecutor is the port to whatever actually runs a tool's logic. The
// dispatcher owns everything about *whether* a result is cached and how
// it's summarized back to the caller; ToolExecutor only owns producing the
// result.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, arguments json.RawMessage) (ToolExecutionResult, error)
}

// GetDataParams is the params shape for mcpp/get_data.
type GetDataParams struct {
	ToolCallID   string              `json:"tool_call_id"`
	UsageContext *policy.UsageContext `json:"usage_context,omitempty"`
}

// FindReferenceParams is the params shape for mcpp/find_reference.
type FindReferenceParams struct {
	ToolCallID string `json:"tool_call_id"`
	Keyword    string `json:"keyword"`
	ColumnName string `json:"column_name,omitempty"`
}

// FindReferenceResult is the result shape for mcpp/find_reference.
type FindReferenceResult struct {
	Placeholder string         `json:"placeholder"`
	Similarity  float64        `json:"similarity"`
	Metadata    cache.Metadata `json:"metadata"`
}

// ResolvePlaceholdersParams is the params shape for mcpp/resolve_placeholders.
type ResolvePlaceholdersParams struct {
	Data         interface{}          `json:"data"`
	UsageContext *policy.UsageContext `json:"usage_context,omitempty"`
	ToolName     string               `json:"tool_name,omitempty"`
}

// ResolvePlaceholdersResult is the result shape for mcpp/resolve_placeholders.
type ResolvePlaceholdersResult struct {
	ResolvedData     interface{}         `json:"resolved_data"`
	ResolutionStatus placeholder.Tracking `json:"resolution_status"`
}

// ProvideConsentParams is the params shape for mcpp/provide_consent.
type ProvideConsentParams struct {
	RequestID       string           `json:"request_id"`
	Decision        consent.Decision `json:"decision"`
	Remember        bool             `json:"remember,omitempty"`
	DurationMinutes int              `json:"duration_minutes,omitempty"`
}

// ProvideConsentResult is the result shape for mcpp/provide_consent.
type ProvideConsentResult struct {
	Status string `json:"status"`
}

// CallToolParams is the params shape for tools/call.
type CallToolParams struct {
	Name       string          `json:"name"`
	Arguments  json.RawMessage `json:"arguments"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
}

// toolCallSummary is the result shape tools/call returns for a sensitive
// tool, per spec.md §6: the full payload stays in the Data Cache under
// DataRefID rather than crossing the wire.
type toolCallSummary struct {
	Message     string   `json:"message"`
	RowCount    int      `json:"rowCount"`
	ColumnNames []string `json:"columnNames"`
	DataRefID   string   `json:"dataRefId"`
}

// DispatcherService is the Method Dispatcher: the component that answers
// every wire method in spec.md §6 by composing the Data Cache, Placeholder
// Engine, Reference Finder, Policy Evaluator, and Consent Coordinator.
// Every returned error is an *mcpperr.Error carrying a stable wire code, per
// spec.md §7's propagation policy — callers never see a bare Go error or a
// panic for an expected outcome.
type DispatcherService struct {
	cache     cache.Store
	catalog   tool.Catalog
	policySvc *PolicyService
	consent   *consent.Coordinator
	decisions *consent.DecisionCache
	stats     *StatsService
	audit     *AuditService
	executor  ToolExecutor
	logger    *slog.Logger
}

// NewDispatcherService builds a DispatcherService from its component ports.
func NewDispatcherService(
	cacheStore cache.Store,
	catalog tool.Catalog,
	policySvc *PolicyService,
	coordinator *consent.Coordinator,
	decisions *consent.DecisionCache,
	stats *StatsService,
	auditSvc *AuditService,
	executor ToolExecutor,
	logger *slog.Logger,
) *DispatcherService {
	return &DispatcherService{
		cache:     cacheStore,
		catalog:   catalog,
		policySvc: policySvc,
		consent:   coordinator,
		decisions: decisions,
		stats:     stats,
		audit:     auditSvc,
		executor:  executor,
		logger:    logger,
	}
}

// GetData answers mcpp/get_data: return the cached entry for a tool call,
// optionally gated by a usage context exactly as resolve_placeholders is.
func (d *DispatcherService) GetData(ctx context.Context, p GetDataParams) (cache.CachedEntry, *mcpperr.Error) {
	if p.ToolCallID == "" {
		return cache.CachedEntry{}, mcpperr.New(mcpperr.CodeInvalidParams, "tool_call_id is required")
	}

	entry, ok := d.cache.Get(p.ToolCallID)
	if !ok {
		return cache.CachedEntry{}, mcpperr.ErrCacheMiss
	}

	if p.UsageContext != nil {
		if mErr := d.evaluateUsage(ctx, entry.Metadata.ToolName, *p.UsageContext); mErr != nil {
			return cache.CachedEntry{}, mErr
		}
	}

	d.audit.Record(audit.AuditRecord{
		Timestamp: time.Now(),
		EventType: audit.EventTypeCacheGet,
		CallID:    p.ToolCallID,
		ToolName:  entry.Metadata.ToolName,
	})

	return entry, nil
}

// FindReference answers mcpp/find_reference: mint a placeholder from a
// free-text keyword fuzzy-matched against a cached table's cells.
func (d *DispatcherService) FindReference(ctx context.Context, p FindReferenceParams) (FindReferenceResult, *mcpperr.Error) {
	if p.ToolCallID == "" || p.Keyword == "" {
		return FindReferenceResult{}, mcpperr.New(mcpperr.CodeInvalidParams, "tool_call_id and keyword are required")
	}

	match, err := reference.Find(d.cache, p.ToolCallID, p.Keyword, p.ColumnName)
	if err != nil {
		var mErr *mcpperr.Error
		if errors.As(err, &mErr) {
			return FindReferenceResult{}, mErr
		}
		return FindReferenceResult{}, mcpperr.New(mcpperr.CodeInternalError, "reference lookup failed")
	}

	entry, _ := d.cache.Get(p.ToolCallID)
	return FindReferenceResult{
		Placeholder: match.Placeholder.String(),
		Similarity:  match.Similarity,
		Metadata:    entry.Metadata,
	}, nil
}

// ResolvePlaceholders answers mcpp/resolve_placeholders: walk data, resolve
// every placeholder it contains against the Data Cache, and gate the whole
// operation behind the Policy Evaluator and Consent Coordinator when a
// usage context is given.
func (d *DispatcherService) ResolvePlaceholders(ctx context.Context, p ResolvePlaceholdersParams) (ResolvePlaceholdersResult, *mcpperr.Error) {
	if p.UsageContext != nil {
		if mErr := d.evaluateUsage(ctx, p.ToolName, *p.UsageContext); mErr != nil {
			return ResolvePlaceholdersResult{}, mErr
		}
	}

	resolved, tracking := placeholder.ResolveWithTracking(d.cache, p.Data)

	if tracking.Total > 0 {
		d.audit.Record(audit.AuditRecord{
			Timestamp: time.Now(),
			EventType: audit.EventTypeCacheGet,
			ToolName:  p.ToolName,
			Reason:    fmt.Sprintf("resolved %d/%d placeholders", tracking.Resolved, tracking.Total),
		})
	}

	return ResolvePlaceholdersResult{ResolvedData: resolved, ResolutionStatus: tracking}, nil
}

// evaluateUsage runs a usage context through the Policy Evaluator and, on a
// prompt outcome, either serves a remembered consent decision or raises a
// new consent request. Returns nil when the usage is allowed to proceed.
func (d *DispatcherService) evaluateUsage(ctx context.Context, toolName string, usage policy.UsageContext) *mcpperr.Error {
	decision, err := d.policySvc.Evaluate(ctx, toolName, usage)
	if err != nil {
		d.stats.RecordError()
		d.logger.Error("policy evaluation failed", "tool", toolName, "error", err)
		return mcpperr.New(mcpperr.CodeInternalError, "policy evaluation failed")
	}

	d.audit.Record(audit.AuditRecord{
		Timestamp:   time.Now(),
		EventType:   audit.EventTypePolicyDecision,
		HostID:      usage.Requester.HostID,
		ToolName:    toolName,
		DataUsage:   string(usage.DataUsage),
		TargetType:  string(usage.Target.Type),
		Destination: usage.Target.Destination,
		Decision:    string(decision.Outcome),
		Reason:      decision.ErrorMessage,
	})

	switch decision.Outcome {
	case policy.OutcomeAllow:
		d.stats.RecordAllow()
		return nil

	case policy.OutcomeDeny:
		d.stats.RecordDeny()
		return mcpperr.New(mcpperr.CodeInsufficientPermission, decision.ErrorMessage).WithDetails(decision.ValidationDetails)

	case policy.OutcomePrompt:
		key := consent.Key(usage.Requester.HostID, usage.Target.Destination, string(usage.DataUsage), toolName)
		if remembered, ok := d.decisions.Lookup(key); ok {
			if remembered == consent.DecisionAllow {
				d.stats.RecordAllow()
				return nil
			}
			d.stats.RecordDeny()
			return mcpperr.New(mcpperr.CodeConsentDenied, "consent was previously denied for this destination and usage")
		}

		d.stats.RecordPrompt()
		reqCtx := consent.RequestContext{
			HostID:      usage.Requester.HostID,
			Destination: usage.Target.Destination,
			DataUsage:   string(usage.DataUsage),
			ToolName:    toolName,
		}
		cr := d.requestConsent(ctx, reqCtx, consentMessage(toolName, usage))
		return mcpperr.New(mcpperr.CodeConsentRequired, "this usage requires the requester's consent").WithDetails(cr)

	default:
		return mcpperr.New(mcpperr.CodeInternalError, "policy engine returned an unrecognized outcome")
	}
}

// requestConsent registers a pending consent request and returns the
// ConsentRequest the caller embeds in its -32007 error. The wait for a
// decision happens in a detached goroutine: per spec.md §6's user-visible
// behavior, the original call returns immediately and the host round-trips
// through mcpp/provide_consent and a re-issue of the original method,
// rather than the dispatcher blocking the request on a human. The
// goroutine's only job is to self-clean the pending entry (and audit a
// timeout) if the host never answers.
func (d *DispatcherService) requestConsent(ctx context.Context, reqCtx consent.RequestContext, message string) *policy.ConsentRequest {
	requestID := uuid.New().String()
	timeout := d.consentTimeout(ctx)

	go func() {
		if _, err := d.consent.Begin(context.Background(), requestID, timeout, reqCtx); err != nil {
			d.audit.Record(audit.AuditRecord{
				Timestamp:    time.Now(),
				EventType:    audit.EventTypeConsent,
				RequestID:    requestID,
				HostID:       reqCtx.HostID,
				ToolName:     reqCtx.ToolName,
				Destination:  reqCtx.Destination,
				DataUsage:    reqCtx.DataUsage,
				ConsentStage: audit.ConsentStageTimeout,
			})
		}
	}()

	d.audit.Record(audit.AuditRecord{
		Timestamp:    time.Now(),
		EventType:    audit.EventTypeConsent,
		RequestID:    requestID,
		HostID:       reqCtx.HostID,
		ToolName:     reqCtx.ToolName,
		Destination:  reqCtx.Destination,
		DataUsage:    reqCtx.DataUsage,
		ConsentStage: audit.ConsentStageRequested,
	})

	return &policy.ConsentRequest{RequestID: requestID, Message: message}
}

// ProvideConsent answers mcpp/provide_consent: resolve a pending request
// and, if remember is set, record the decision so future identical usage
// contexts short-circuit the prompt.
func (d *DispatcherService) ProvideConsent(ctx context.Context, p ProvideConsentParams) (ProvideConsentResult, *mcpperr.Error) {
	if p.RequestID == "" {
		return ProvideConsentResult{}, mcpperr.New(mcpperr.CodeInvalidParams, "request_id is required")
	}
	if p.Decision != consent.DecisionAllow && p.Decision != consent.DecisionDeny {
		return ProvideConsentResult{}, mcpperr.New(mcpperr.CodeInvalidParams, `decision must be "allow" or "deny"`)
	}

	reqCtx, ok := d.consent.Resolve(p.RequestID, p.Decision)
	if !ok {
		return ProvideConsentResult{}, mcpperr.New(mcpperr.CodeDataNotFound, "unknown or already-resolved consent request id")
	}

	if p.Remember {
		key := consent.Key(reqCtx.HostID, reqCtx.Destination, reqCtx.DataUsage, reqCtx.ToolName)
		d.decisions.Record(key, p.Decision, d.rememberDuration(ctx, p.DurationMinutes))
	}

	d.audit.Record(audit.AuditRecord{
		Timestamp:    time.Now(),
		EventType:    audit.EventTypeConsent,
		RequestID:    p.RequestID,
		HostID:       reqCtx.HostID,
		ToolName:     reqCtx.ToolName,
		Destination:  reqCtx.Destination,
		DataUsage:    reqCtx.DataUsage,
		Decision:     string(p.Decision),
		ConsentStage: audit.ConsentStageResolved,
	})

	status := "denied"
	if p.Decision == consent.DecisionAllow {
		status = "allowed"
	}
	return ProvideConsentResult{Status: status}, nil
}

// ListTools answers tools/list.
func (d *DispatcherService) ListTools(ctx context.Context) (tool.ToolListResult, *mcpperr.Error) {
	tools, err := d.catalog.ListTools(ctx)
	if err != nil {
		return tool.ToolListResult{}, mcpperr.New(mcpperr.CodeInternalError, "listing tools failed")
	}
	return tool.ToolListResult{Tools: tools}, nil
}

// CallTool answers tools/call. A sensitive tool's full result is written to
// the Data Cache and only a summary crosses the wire; a non-sensitive
// tool's result is returned inline, uncached.
func (d *DispatcherService) CallTool(ctx context.Context, p CallToolParams) (interface{}, *mcpperr.Error) {
	if p.Name == "" {
		return nil, mcpperr.New(mcpperr.CodeInvalidParams, "name is required")
	}

	d.stats.RecordToolCall(p.Name)

	isSensitive, err := d.toolIsSensitive(ctx, p.Name)
	if err != nil {
		d.stats.RecordError()
		return nil, mcpperr.New(mcpperr.CodeInternalError, "tool lookup failed")
	}

	result, err := d.executor.Execute(ctx, p.Name, p.Arguments)
	if err != nil {
		d.stats.RecordError()
		d.logger.Error("tool execution failed", "tool", p.Name, "error", err)
		return nil, mcpperr.New(mcpperr.CodeInternalError, "tool execution failed")
	}

	if !isSensitive {
		return result.Payload, nil
	}

	callID := p.ToolCallID
	if callID == "" {
		callID = uuid.New().String()
	}

	entry := cache.CachedEntry{
		Kind:    result.Kind,
		Payload: result.Payload,
		Metadata: cache.Metadata{
			ToolName:    p.Name,
			CreatedAt:   time.Now(),
			IsSensitive: true,
		},
	}
	d.cache.Put(callID, entry)

	d.audit.Record(audit.AuditRecord{
		Timestamp: time.Now(),
		EventType: audit.EventTypeCachePut,
		CallID:    callID,
		ToolName:  p.Name,
	})

	summary := toolCallSummary{
		Message:   fmt.Sprintf("%s produced sensitive output; use mcpp/get_data or mcpp/resolve_placeholders to access it", p.Name),
		DataRefID: callID,
	}
	if table, ok := entry.Table(); ok {
		summary.RowCount = len(table.Rows)
		summary.ColumnNames = table.Columns
	}
	return summary, nil
}

// toolIsSensitive resolves a tool's sensitivity: a registered policy.Tool's
// IsSensitive flag wins, falling back to the risk-level default derived
// from the tool's catalog entry (or from classifying its bare name if it
// was never registered in the catalog either).
func (d *DispatcherService) toolIsSensitive(ctx context.Context, name string) (bool, error) {
	policyTool, err := d.policySvc.GetTool(ctx, name)
	if err != nil {
		return false, err
	}
	if policyTool != nil {
		return policyTool.IsSensitive, nil
	}

	t, ok, err := d.catalog.GetTool(ctx, name)
	if err != nil {
		return false, err
	}
	if !ok {
		t = tool.Tool{Name: name}
		t.RiskLevel = tool.ClassifyTool(t)
	}
	return tool.DefaultIsSensitive(t.RiskLevel), nil
}

func (d *DispatcherService) consentTimeout(ctx context.Context) time.Duration {
	global, err := d.policySvc.GlobalPolicy(ctx)
	if err != nil || global.ConsentTimeoutSeconds <= 0 {
		return defaultConsentTimeout
	}
	return time.Duration(global.ConsentTimeoutSeconds) * time.Second
}

func (d *DispatcherService) rememberDuration(ctx context.Context, requestedMinutes int) time.Duration {
	if requestedMinutes > 0 {
		return time.Duration(requestedMinutes) * time.Minute
	}
	global, err := d.policySvc.GlobalPolicy(ctx)
	if err != nil || global.CacheConsentDuration <= 0 {
		return defaultRememberDurationMinutes * time.Minute
	}
	return time.Duration(global.CacheConsentDuration) * time.Minute
}

func consentMessage(toolName string, usage policy.UsageContext) string {
	return fmt.Sprintf("%s wants to %s data with target %s (%s)", toolName, usage.DataUsage, usage.Target.Destination, usage.Target.Type)
}
