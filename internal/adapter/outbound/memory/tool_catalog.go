package memory

import (
	"context"
	"sync"

	"github.com/mcpp-project/mcpp-core/internal/domain/tool"
)

// MemoryToolCatalog implements tool.Catalog with an in-memory map. Thread-
// safe for concurrent access, following the same locking discipline as
// MemoryToolStore.
type MemoryToolCatalog struct {
	mu    sync.RWMutex
	tools map[string]tool.Tool
}

// NewToolCatalog creates an empty in-memory tool catalog.
func NewToolCatalog() *MemoryToolCatalog {
	return &MemoryToolCatalog{tools: make(map[string]tool.Tool)}
}

// RegisterTool classifies t's risk level and stores it under t.Name,
// replacing any prior registration.
func (c *MemoryToolCatalog) RegisterTool(ctx context.Context, t tool.Tool) error {
	t.RiskLevel = tool.ClassifyTool(t)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tools[t.Name] = t
	return nil
}

// GetTool returns the registered tool and true, or the zero value and
// false if name is not registered.
func (c *MemoryToolCatalog) GetTool(ctx context.Context, name string) (tool.Tool, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tools[name]
	return t, ok, nil
}

// ListTools returns every registered tool, classified.
func (c *MemoryToolCatalog) ListTools(ctx context.Context) ([]tool.Tool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]tool.Tool, 0, len(c.tools))
	for _, t := range c.tools {
		result = append(result, t)
	}
	return result, nil
}

var _ tool.Catalog = (*MemoryToolCatalog)(nil)
