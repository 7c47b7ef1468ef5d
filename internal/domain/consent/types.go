// Package consent implements the Consent Coordinator: parking operations
// that need a human decision, accepting out-of-band resolutions, and
// remembering prior decisions for a configurable duration.
package consent

import (
	"errors"
	"time"
)

// Decision is the out-of-band answer to a pending consent request.
type Decision string

const (
	DecisionAllow Decision = "allow"
	DecisionDeny  Decision = "deny"
)

// ErrTimeout is returned by Coordinator.Begin when no Resolve arrives
// before the deadline. The caller — not this package — decides what a
// timeout means by applying the server's default_on_timeout policy.
var ErrTimeout = errors.New("consent: request timed out waiting for a decision")

// ErrUnknownRequest describes a request_id that does not match any pending
// request (already resolved, expired, or never existed). Resolve itself
// reports that case by returning false rather than this error.
var ErrUnknownRequest = errors.New("consent: no pending request for this id")

// CachedDecision is the value half of the decision cache's
// host_id::destination::data_usage[::tool_name] -> decision mapping.
type CachedDecision struct {
	Decision Decision
	InsertedAt time.Time
	Duration   time.Duration
}

func (c CachedDecision) expired(now time.Time) bool {
	return c.Duration > 0 && now.After(c.InsertedAt.Add(c.Duration))
}
