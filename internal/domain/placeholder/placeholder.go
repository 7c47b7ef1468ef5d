// Package placeholder implements the Placeholder Engine: detecting and
// resolving `{call_id.row_index.column_name}` references embedded in tool
// arguments against the Data Cache.
package placeholder

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/mcpp-project/mcpp-core/internal/domain/cache"
)

// solePattern matches a string value that is *entirely* one placeholder and
// nothing else. Resolving against this form preserves the referenced
// cell's raw JSON type (number, bool, etc) instead of stringifying it.
var solePattern = regexp.MustCompile(`^\{([A-Za-z0-9_-]+\.\d+\.[A-Za-z0-9_-]+)\}$`)

// embeddedPattern matches every placeholder occurrence within a larger
// string, used when a placeholder is mixed with other text. Matches never
// overlap; resolution always stringifies the referenced cell in place.
var embeddedPattern = regexp.MustCompile(`\{([A-Za-z0-9_-]+\.\d+\.[A-Za-z0-9_-]+)\}`)

// Reference is a parsed (call_id, row_index, column_name) triple.
type Reference struct {
	CallID     string
	RowIndex   int
	ColumnName string
}

func (r Reference) String() string {
	return fmt.Sprintf("{%s.%d.%s}", r.CallID, r.RowIndex, r.ColumnName)
}

// Parse splits a raw placeholder body (the text between the braces) into
// its three components. The grammar requires the row index to be a
// sequence of digits; call ids and column names allow letters, digits,
// underscore, and hyphen.
func Parse(body string) (Reference, bool) {
	parts := splitPlaceholderBody(body)
	if parts == nil {
		return Reference{}, false
	}
	row, err := strconv.Atoi(parts[1])
	if err != nil {
		return Reference{}, false
	}
	return Reference{CallID: parts[0], RowIndex: row, ColumnName: parts[2]}, true
}

// splitPlaceholderBody splits "call_id.row_index.column_name" on the last
// two dots, so call ids containing dots are not possible by grammar (the
// character class excludes '.'), but this keeps the split explicit and
// readable rather than relying on strings.SplitN guessing arity.
func splitPlaceholderBody(body string) []string {
	m := bodyPattern.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	return m[1:]
}

var bodyPattern = regexp.MustCompile(`^([A-Za-z0-9_-]+)\.(\d+)\.([A-Za-z0-9_-]+)$`)

// Status reports how a resolution attempt against the cache concluded.
type Status string

const (
	StatusResolved     Status = "resolved"
	StatusCacheMiss    Status = "cache_miss"
	StatusDataNotFound Status = "data_not_found"
)

// Lookup resolves a single Reference against a cache.Store, returning the
// raw cell value (its original JSON type) and how the lookup concluded.
func Lookup(store cache.Store, ref Reference) (interface{}, Status) {
	entry, ok := store.Get(ref.CallID)
	if !ok {
		return nil, StatusCacheMiss
	}
	table, ok := entry.Table()
	if !ok {
		return nil, StatusDataNotFound
	}
	if ref.RowIndex < 0 || ref.RowIndex >= len(table.Rows) {
		return nil, StatusDataNotFound
	}
	colIdx := -1
	for i, col := range table.Columns {
		if col == ref.ColumnName {
			colIdx = i
			break
		}
	}
	if colIdx == -1 || colIdx >= len(table.Rows[ref.RowIndex]) {
		return nil, StatusDataNotFound
	}
	return table.Rows[ref.RowIndex][colIdx], StatusResolved
}
