package memory

import (
	"context"
	"sync"

	"github.com/mcpp-project/mcpp-core/internal/domain/policy"
)

// ErrToolNotFound is returned when a tool name has no registered policy.
var ErrToolNotFound = policy.ErrToolNotFound

// MemoryToolStore implements policy.ToolStore with an in-memory map.
// Thread-safe for concurrent access. For development/testing; a production
// deployment would back this with persistent storage.
type MemoryToolStore struct {
	tools map[string]policy.Tool
	mu    sync.RWMutex
}

// NewToolStore creates a new in-memory tool store.
func NewToolStore() *MemoryToolStore {
	return &MemoryToolStore{tools: make(map[string]policy.Tool)}
}

// GetTool returns the registered policy for name.
// Returns ErrToolNotFound if no tool has been registered under that name.
func (s *MemoryToolStore) GetTool(ctx context.Context, name string) (*policy.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tools[name]
	if !ok {
		return nil, ErrToolNotFound
	}
	return &t, nil
}

// PutTool creates or replaces a tool's registered policy.
func (s *MemoryToolStore) PutTool(ctx context.Context, tool policy.Tool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools[tool.Name] = tool
	return nil
}

// ListTools returns every registered tool.
func (s *MemoryToolStore) ListTools(ctx context.Context) ([]policy.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]policy.Tool, 0, len(s.tools))
	for _, t := range s.tools {
		result = append(result, t)
	}
	return result, nil
}

// DeleteTool removes a tool's registered policy.
// Returns ErrToolNotFound if no tool has been registered under that name.
func (s *MemoryToolStore) DeleteTool(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tools[name]; !ok {
		return ErrToolNotFound
	}
	delete(s.tools, name)
	return nil
}

// MemoryGlobalPolicyStore implements policy.GlobalPolicyStore, holding a
// single server-wide GlobalPolicy document in memory.
type MemoryGlobalPolicyStore struct {
	mu     sync.RWMutex
	global policy.GlobalPolicy
}

// NewGlobalPolicyStore creates a store seeded with the zero-value
// GlobalPolicy. With no default_data_usage_policy entries set, the
// Engine's own fallback denies every usage level until a caller sets one
// explicitly via SetGlobalPolicy.
func NewGlobalPolicyStore() *MemoryGlobalPolicyStore {
	return &MemoryGlobalPolicyStore{}
}

// GetGlobalPolicy returns the current server-wide policy.
func (s *MemoryGlobalPolicyStore) GetGlobalPolicy(ctx context.Context) (policy.GlobalPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.global, nil
}

// SetGlobalPolicy replaces the server-wide policy.
func (s *MemoryGlobalPolicyStore) SetGlobalPolicy(ctx context.Context, p policy.GlobalPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global = p
	return nil
}

// Compile-time interface verification.
var (
	_ policy.ToolStore         = (*MemoryToolStore)(nil)
	_ policy.GlobalPolicyStore = (*MemoryGlobalPolicyStore)(nil)
)
