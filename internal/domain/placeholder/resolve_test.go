package placeholder

import (
	"testing"

	"github.com/mcpp-project/mcpp-core/internal/domain/cache"
)

func newTestStore() cache.Store {
	s := cache.NewMemoryStore()
	s.Put("t1", cache.CachedEntry{
		Kind: cache.KindTable,
		Payload: cache.TablePayload{
			Columns: []string{"ID", "Age", "Name"},
			Rows: [][]interface{}{
				{"1", float64(42), "Ada"},
			},
		},
	})
	return s
}

func TestResolveWithTracking_SolePlaceholderPreservesType(t *testing.T) {
	t.Parallel()

	resolved, tr := ResolveWithTracking(newTestStore(), "{t1.0.Age}")
	age, ok := resolved.(float64)
	if !ok {
		t.Fatalf("resolved = %#v (%T), want float64", resolved, resolved)
	}
	if age != 42 {
		t.Errorf("resolved = %v, want 42", age)
	}
	if tr.Total != 1 || tr.Resolved != 1 || tr.Failed != 0 || len(tr.Unresolved) != 0 {
		t.Errorf("tracking = %+v, want {1 1 0 []}", tr)
	}
}

func TestResolveWithTracking_EmbeddedPlaceholderIsStringified(t *testing.T) {
	t.Parallel()

	resolved, tr := ResolveWithTracking(newTestStore(), "Hello {t1.0.Name}, age {t1.0.Age}")
	want := "Hello Ada, age 42"
	if resolved != want {
		t.Errorf("resolved = %q, want %q", resolved, want)
	}
	if tr.Total != 2 || tr.Resolved != 2 || tr.Failed != 0 {
		t.Errorf("tracking = %+v", tr)
	}
}

func TestResolveWithTracking_CacheMissLeavesPlaceholderInPlace(t *testing.T) {
	t.Parallel()

	resolved, tr := ResolveWithTracking(newTestStore(), "{missing.0.Name}")
	if resolved != "{missing.0.Name}" {
		t.Errorf("resolved = %v, want the placeholder left unresolved", resolved)
	}
	if tr.Total != 1 || tr.Resolved != 0 || tr.Failed != 1 {
		t.Errorf("tracking = %+v", tr)
	}
	if len(tr.Unresolved) != 1 || tr.Unresolved[0] != "{missing.0.Name}" {
		t.Errorf("unresolved = %v", tr.Unresolved)
	}
}

func TestResolveWithTracking_NonTableEntryFails(t *testing.T) {
	t.Parallel()

	s := cache.NewMemoryStore()
	s.Put("t1", cache.CachedEntry{Kind: cache.KindText, Payload: "hello"})

	resolved, tr := ResolveWithTracking(s, "{t1.0.Name}")
	if resolved != "{t1.0.Name}" {
		t.Errorf("resolved = %v, want the placeholder left unresolved", resolved)
	}
	if tr.Failed != 1 {
		t.Errorf("tracking = %+v, want one failure", tr)
	}
}

func TestResolveWithTracking_NestedStructure(t *testing.T) {
	t.Parallel()

	data := map[string]interface{}{
		"user": "{t1.0.Name}",
		"tags": []interface{}{"{t1.0.ID}", "static"},
	}

	resolved, tr := ResolveWithTracking(newTestStore(), data)
	m, ok := resolved.(map[string]interface{})
	if !ok {
		t.Fatalf("resolved = %#v, want map", resolved)
	}
	if m["user"] != "Ada" {
		t.Errorf("user = %v, want Ada", m["user"])
	}
	tags, ok := m["tags"].([]interface{})
	if !ok || tags[0] != "1" || tags[1] != "static" {
		t.Errorf("tags = %v", m["tags"])
	}
	if tr.Total != 2 || tr.Resolved != 2 {
		t.Errorf("tracking = %+v", tr)
	}
}

func TestResolveWithTracking_Idempotent(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	once, tr1 := ResolveWithTracking(store, "{t1.0.Name} and {t1.0.Age}")
	twice, tr2 := ResolveWithTracking(store, once)

	if once != twice {
		t.Errorf("second pass changed the value: %v -> %v", once, twice)
	}
	if tr2.Total != 0 || tr2.Resolved != 0 || tr2.Failed != 0 {
		t.Errorf("second pass tracking = %+v, want all zero", tr2)
	}
	_ = tr1
}

func TestResolveWithTracking_ScalarsPassThrough(t *testing.T) {
	t.Parallel()

	for _, v := range []interface{}{nil, true, false, float64(7), "plain text"} {
		resolved, tr := ResolveWithTracking(newTestStore(), v)
		if resolved != v {
			t.Errorf("resolved = %v, want %v unchanged", resolved, v)
		}
		if tr.Total != 0 {
			t.Errorf("tracking for scalar %v = %+v, want zero", v, tr)
		}
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	ref, ok := Parse("call-1.12.Column_Name")
	if !ok {
		t.Fatal("expected Parse to succeed")
	}
	if ref.CallID != "call-1" || ref.RowIndex != 12 || ref.ColumnName != "Column_Name" {
		t.Errorf("ref = %+v", ref)
	}

	if _, ok := Parse("not-a-placeholder"); ok {
		t.Error("expected Parse to fail on malformed body")
	}
}
