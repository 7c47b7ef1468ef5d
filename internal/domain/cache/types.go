// Package cache implements the Data Cache component: a store of prior tool
// outputs keyed by call id, addressable cell-by-cell through placeholders.
package cache

import "time"

// Kind identifies the shape of a cached entry's payload.
type Kind string

const (
	KindTable Kind = "table"
	KindText  Kind = "text"
	KindJSON  Kind = "json"
)

// TablePayload is the payload shape for Kind == KindTable: column headers
// plus row-major cell values. Cell values are left as interface{} because
// placeholder resolution must preserve the original JSON type (string,
// number, bool, null) of a cell rather than coerce everything to string.
type TablePayload struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Metadata describes provenance and lifecycle of a CachedEntry. It never
// participates in placeholder resolution itself.
type Metadata struct {
	ToolName    string     `json:"tool_name"`
	CreatedAt   time.Time  `json:"created_at"`
	IsSensitive bool       `json:"is_sensitive"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the entry's ExpiresAt has passed as of now.
// An entry with no ExpiresAt never expires.
func (m Metadata) Expired(now time.Time) bool {
	return m.ExpiresAt != nil && now.After(*m.ExpiresAt)
}

// CachedEntry is a single stored tool result, addressed by CallId.
type CachedEntry struct {
	Kind     Kind        `json:"kind"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// Table returns the entry's payload as a TablePayload, along with whether
// the entry actually carries a table. Callers resolving a (row, column)
// placeholder against a non-table entry should treat that as
// DATA_NOT_FOUND, not a panic.
func (e CachedEntry) Table() (TablePayload, bool) {
	if e.Kind != KindTable {
		return TablePayload{}, false
	}
	tp, ok := e.Payload.(TablePayload)
	return tp, ok
}
