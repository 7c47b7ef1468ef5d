package reference

import (
	"testing"

	"github.com/mcpp-project/mcpp-core/internal/domain/cache"
	"github.com/mcpp-project/mcpp-core/internal/domain/mcpperr"
)

func newTable(store cache.Store, callID string, columns []string, rows [][]interface{}) {
	store.Put(callID, cache.CachedEntry{
		Kind:    cache.KindTable,
		Payload: cache.TablePayload{Columns: columns, Rows: rows},
	})
}

func TestFind_ExactMatch(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore()
	newTable(store, "t1", []string{"Name", "City"}, [][]interface{}{
		{"Alice", "Paris"},
		{"Bob", "Berlin"},
	})

	match, err := Find(store, "t1", "alice", "")
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if match.Placeholder.RowIndex != 0 || match.Placeholder.ColumnName != "Name" {
		t.Errorf("match = %+v, want row 0 column Name", match.Placeholder)
	}
	if match.Similarity != 1 {
		t.Errorf("Similarity = %v, want 1 for an exact match", match.Similarity)
	}
}

func TestFind_ColumnRestriction(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore()
	newTable(store, "t1", []string{"Name", "City"}, [][]interface{}{
		{"Alice", "Paris"},
	})

	_, err := Find(store, "t1", "paris", "Name")
	if err == nil {
		t.Fatal("expected no match when the matching cell is outside the restricted column")
	}
}

func TestFind_UnknownColumnIsInvalidParams(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore()
	newTable(store, "t1", []string{"Name"}, [][]interface{}{{"Alice"}})

	_, err := Find(store, "t1", "alice", "NoSuchColumn")
	var appErr *mcpperr.Error
	if err == nil || !asErr(err, &appErr) || appErr.Code != mcpperr.CodeInvalidParams {
		t.Errorf("err = %v, want CodeInvalidParams", err)
	}
}

func TestFind_CacheMiss(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore()
	_, err := Find(store, "missing", "x", "")
	var appErr *mcpperr.Error
	if err == nil || !asErr(err, &appErr) || appErr.Code != mcpperr.CodeCacheMiss {
		t.Errorf("err = %v, want CodeCacheMiss", err)
	}
}

func TestFind_BelowThresholdIsReferenceNotFound(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore()
	newTable(store, "t1", []string{"Name"}, [][]interface{}{{"Zzzzzzzzzz"}})

	_, err := Find(store, "t1", "completely unrelated keyword", "")
	var appErr *mcpperr.Error
	if err == nil || !asErr(err, &appErr) || appErr.Code != mcpperr.CodeReferenceNotFound {
		t.Errorf("err = %v, want CodeReferenceNotFound", err)
	}
}

func TestFind_TieBreaksToFirstScanned(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore()
	newTable(store, "t1", []string{"A", "B"}, [][]interface{}{
		{"match", "match"},
	})

	match, err := Find(store, "t1", "match", "")
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if match.Placeholder.ColumnName != "A" {
		t.Errorf("ColumnName = %q, want the first-scanned column A on a tie", match.Placeholder.ColumnName)
	}
}

func asErr(err error, target **mcpperr.Error) bool {
	e, ok := err.(*mcpperr.Error)
	if ok {
		*target = e
	}
	return ok
}
