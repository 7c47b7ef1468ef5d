// Package memory provides in-memory implementations of outbound ports.
package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mcpp-project/mcpp-core/internal/domain/policy"
)

func TestToolStore_GetTool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(*MemoryToolStore)
		toolID  string
		wantErr error
	}{
		{
			name: "existing tool",
			setup: func(s *MemoryToolStore) {
				_ = s.PutTool(context.Background(), policy.Tool{Name: "export_table"})
			},
			toolID:  "export_table",
			wantErr: nil,
		},
		{
			name:    "non-existent tool",
			setup:   func(s *MemoryToolStore) {},
			toolID:  "missing",
			wantErr: ErrToolNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store := NewToolStore()
			tt.setup(store)

			got, err := store.GetTool(ctx, tt.toolID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GetTool() error = %v, want %v", err, tt.wantErr)
				return
			}
			if tt.wantErr == nil && got == nil {
				t.Error("GetTool() returned nil for existing tool")
			}
		})
	}
}

func TestToolStore_PutToolCreateAndUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewToolStore()

	if err := store.PutTool(ctx, policy.Tool{Name: "export_table", IsSensitive: false}); err != nil {
		t.Fatalf("PutTool() create error: %v", err)
	}

	got, err := store.GetTool(ctx, "export_table")
	if err != nil {
		t.Fatalf("GetTool() error: %v", err)
	}
	if got.IsSensitive {
		t.Error("expected IsSensitive=false after create")
	}

	if err := store.PutTool(ctx, policy.Tool{Name: "export_table", IsSensitive: true}); err != nil {
		t.Fatalf("PutTool() update error: %v", err)
	}
	got, err = store.GetTool(ctx, "export_table")
	if err != nil {
		t.Fatalf("GetTool() error: %v", err)
	}
	if !got.IsSensitive {
		t.Error("expected IsSensitive=true after update")
	}
}

func TestToolStore_ListTools(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewToolStore()

	_ = store.PutTool(ctx, policy.Tool{Name: "a"})
	_ = store.PutTool(ctx, policy.Tool{Name: "b"})

	tools, err := store.ListTools(ctx)
	if err != nil {
		t.Fatalf("ListTools() error: %v", err)
	}
	if len(tools) != 2 {
		t.Errorf("ListTools() returned %d tools, want 2", len(tools))
	}
}

func TestToolStore_ListTools_Empty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewToolStore()

	tools, err := store.ListTools(ctx)
	if err != nil {
		t.Fatalf("ListTools() error: %v", err)
	}
	if len(tools) != 0 {
		t.Errorf("ListTools() on empty store returned %d tools, want 0", len(tools))
	}
}

func TestToolStore_DeleteTool(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewToolStore()
	_ = store.PutTool(ctx, policy.Tool{Name: "delete-me"})

	if err := store.DeleteTool(ctx, "delete-me"); err != nil {
		t.Fatalf("DeleteTool() error: %v", err)
	}

	_, err := store.GetTool(ctx, "delete-me")
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("GetTool() after delete error = %v, want ErrToolNotFound", err)
	}
}

func TestToolStore_DeleteTool_NonExistent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewToolStore()

	err := store.DeleteTool(ctx, "nonexistent")
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("DeleteTool() for non-existent error = %v, want ErrToolNotFound", err)
	}
}

func TestToolStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewToolStore()

	for i := 0; i < 10; i++ {
		_ = store.PutTool(ctx, policy.Tool{Name: "tool-" + string(rune('0'+i))})
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 300)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.ListTools(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			name := "tool-" + string(rune('0'+(idx%10)))
			if _, err := store.GetTool(ctx, name); err != nil && !errors.Is(err, ErrToolNotFound) {
				errCh <- err
			}
		}(i)
	}

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if err := store.PutTool(ctx, policy.Tool{Name: "new-tool-" + string(rune('a'+idx))}); err != nil {
				errCh <- err
			}
		}(i)
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Errorf("Concurrent access error: %v", err)
	}
}

func TestGlobalPolicyStore_GetSetRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewGlobalPolicyStore()

	got, err := store.GetGlobalPolicy(ctx)
	if err != nil {
		t.Fatalf("GetGlobalPolicy() error: %v", err)
	}
	if got.DefaultOnTimeout != "" {
		t.Errorf("zero-value GlobalPolicy.DefaultOnTimeout = %q, want empty", got.DefaultOnTimeout)
	}

	want := policy.GlobalPolicy{
		DefaultDataUsagePolicy: map[policy.DataUsage]policy.PermissionValue{
			policy.UsageDisplay: policy.PermissionAllow,
		},
		DefaultOnTimeout: policy.PermissionDeny,
	}
	if err := store.SetGlobalPolicy(ctx, want); err != nil {
		t.Fatalf("SetGlobalPolicy() error: %v", err)
	}

	got, err = store.GetGlobalPolicy(ctx)
	if err != nil {
		t.Fatalf("GetGlobalPolicy() error: %v", err)
	}
	if got.DefaultOnTimeout != policy.PermissionDeny {
		t.Errorf("DefaultOnTimeout = %q, want %q", got.DefaultOnTimeout, policy.PermissionDeny)
	}
	if got.DefaultDataUsagePolicy[policy.UsageDisplay] != policy.PermissionAllow {
		t.Error("DefaultDataUsagePolicy[display] not round-tripped")
	}
}
