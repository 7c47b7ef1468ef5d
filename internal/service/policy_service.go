// Package service contains application services.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/mcpp-project/mcpp-core/internal/domain/policy"
)

// lruEntry is a doubly-linked list node for the LRU cache.
type lruEntry struct {
	key      uint64
	decision policy.Decision
	prev     *lruEntry
	next     *lruEntry
}

// ResultCache provides bounded LRU caching for policy evaluation results.
// Thread-safe with Mutex (both Get and Put mutate LRU order).
type ResultCache struct {
	mu      sync.Mutex
	entries map[uint64]*lruEntry
	head    *lruEntry // most recently used
	tail    *lruEntry // least recently used
	maxSize int
}

// NewResultCache creates a new LRU cache with the given max size.
func NewResultCache(maxSize int) *ResultCache {
	return &ResultCache{
		entries: make(map[uint64]*lruEntry, maxSize),
		maxSize: maxSize,
	}
}

// Get retrieves a cached decision. Returns (decision, true) on hit, (zero, false) on miss.
// On hit, the entry is promoted to the head (most recently used).
func (c *ResultCache) Get(key uint64) (policy.Decision, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.moveToHeadLocked(e)
		return e.decision, true
	}
	return policy.Decision{}, false
}

// Put stores a decision in the cache. If at capacity, the least recently used entry is evicted.
func (c *ResultCache) Put(key uint64, decision policy.Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.decision = decision
		c.moveToHeadLocked(e)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictTailLocked()
	}

	e := &lruEntry{key: key, decision: decision}
	c.entries[key] = e
	c.pushHeadLocked(e)
}

// Clear empties the cache. Called whenever a tool or the global policy changes.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64]*lruEntry, c.maxSize)
	c.head = nil
	c.tail = nil
}

// Size returns current cache size.
func (c *ResultCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ResultCache) moveToHeadLocked(e *lruEntry) {
	if c.head == e {
		return
	}
	c.unlinkLocked(e)
	c.pushHeadLocked(e)
}

func (c *ResultCache) pushHeadLocked(e *lruEntry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *ResultCache) unlinkLocked(e *lruEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}

func (c *ResultCache) evictTailLocked() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.unlinkLocked(c.tail)
}

// computeCacheKey generates a unique hash for a (tool, usage) evaluation.
// Roles are sorted first so two requests differing only in role order hit
// the same cache entry.
func computeCacheKey(toolName string, usage policy.UsageContext) uint64 {
	h := xxhash.New()

	_, _ = h.WriteString(toolName)
	_, _ = h.Write([]byte{0})

	_, _ = h.WriteString(string(usage.DataUsage))
	_, _ = h.Write([]byte{0})

	_, _ = h.WriteString(string(usage.Target.Type))
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(usage.Target.Destination)
	_, _ = h.Write([]byte{0})

	sortedRoles := make([]string, len(usage.Requester.Roles))
	copy(sortedRoles, usage.Requester.Roles)
	sort.Strings(sortedRoles)
	_, _ = h.WriteString(strings.Join(sortedRoles, ","))

	return h.Sum64()
}

// PolicyService is the application-layer Policy Evaluator: it wraps a
// policy.Engine with the tool/global-policy lookups the engine itself does
// not own, and caches the resulting Decision by (tool name, usage context).
// All tool and global-policy mutations flow through this service so the
// cache never serves a Decision computed against a policy that has since
// changed.
type PolicyService struct {
	tools  policy.ToolStore
	global policy.GlobalPolicyStore
	engine policy.Evaluator
	cache  *ResultCache
	logger *slog.Logger
}

// PolicyServiceOption configures PolicyService.
type PolicyServiceOption func(*PolicyService)

// WithCacheSize sets the maximum number of cached decisions.
func WithCacheSize(size int) PolicyServiceOption {
	return func(s *PolicyService) {
		s.cache = NewResultCache(size)
	}
}

// NewPolicyService builds a PolicyService around a tool store, a
// global-policy store, and a RoleGateEvaluator (may be nil to disable the
// RBACGate pre-filter entirely).
func NewPolicyService(tools policy.ToolStore, global policy.GlobalPolicyStore, gates policy.RoleGateEvaluator, logger *slog.Logger, opts ...PolicyServiceOption) *PolicyService {
	s := &PolicyService{
		tools:  tools,
		global: global,
		engine: policy.NewEngine(gates),
		cache:  NewResultCache(1000),
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate resolves the Decision for a tool call, consulting the cache
// before falling through to the Engine. A tool with no registered policy
// evaluates against the server's GlobalPolicy alone, per spec.md §4.4.
func (s *PolicyService) Evaluate(ctx context.Context, toolName string, usage policy.UsageContext) (policy.Decision, error) {
	cacheKey := computeCacheKey(toolName, usage)
	if decision, ok := s.cache.Get(cacheKey); ok {
		return decision, nil
	}

	tool, err := s.tools.GetTool(ctx, toolName)
	if err != nil {
		if !errors.Is(err, policy.ErrToolNotFound) {
			return policy.Decision{}, fmt.Errorf("looking up tool %q: %w", toolName, err)
		}
		tool = nil
	}

	global, err := s.global.GetGlobalPolicy(ctx)
	if err != nil {
		return policy.Decision{}, fmt.Errorf("loading global policy: %w", err)
	}

	decision, err := s.engine.Evaluate(ctx, tool, usage, global)
	if err != nil {
		return policy.Decision{}, err
	}

	s.cache.Put(cacheKey, decision)
	return decision, nil
}

// PutTool registers or replaces a tool's policy and invalidates the cache,
// since any cached Decision for that tool name may now be stale.
func (s *PolicyService) PutTool(ctx context.Context, tool policy.Tool) error {
	if err := s.tools.PutTool(ctx, tool); err != nil {
		return err
	}
	s.cache.Clear()
	s.logger.Info("tool policy updated", "tool", tool.Name)
	return nil
}

// DeleteTool removes a tool's policy and invalidates the cache.
func (s *PolicyService) DeleteTool(ctx context.Context, name string) error {
	if err := s.tools.DeleteTool(ctx, name); err != nil {
		return err
	}
	s.cache.Clear()
	s.logger.Info("tool policy removed", "tool", name)
	return nil
}

// ListTools returns every registered tool.
func (s *PolicyService) ListTools(ctx context.Context) ([]policy.Tool, error) {
	return s.tools.ListTools(ctx)
}

// GetTool returns the registered policy.Tool for name, or (nil, nil) if no
// tool has been registered under that name (distinguishing "not
// registered" from a real store failure, which is returned as an error).
func (s *PolicyService) GetTool(ctx context.Context, name string) (*policy.Tool, error) {
	t, err := s.tools.GetTool(ctx, name)
	if err != nil {
		if errors.Is(err, policy.ErrToolNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("looking up tool %q: %w", name, err)
	}
	return t, nil
}

// SetGlobalPolicy replaces the server-wide policy and invalidates the
// cache, since every cached Decision was computed against the prior one.
func (s *PolicyService) SetGlobalPolicy(ctx context.Context, p policy.GlobalPolicy) error {
	if err := s.global.SetGlobalPolicy(ctx, p); err != nil {
		return err
	}
	s.cache.Clear()
	s.logger.Info("global policy updated")
	return nil
}

// GlobalPolicy returns the server-wide policy currently in effect.
func (s *PolicyService) GlobalPolicy(ctx context.Context) (policy.GlobalPolicy, error) {
	return s.global.GetGlobalPolicy(ctx)
}
