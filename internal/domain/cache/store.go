package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Store is the Data Cache contract: a map from call id to the tool result
// produced under that call. Lookups on a missing key are a normal return,
// never an error — callers decide whether a miss is fatal.
type Store interface {
	Put(callID string, entry CachedEntry)
	Get(callID string) (CachedEntry, bool)
	Has(callID string) bool
	Delete(callID string)
	Keys() []string
	Clear()
}

// MemoryStore is the only Store implementation: a mutex-guarded map, the
// same locking discipline the teacher uses for its single-index in-memory
// caches. Operations on a single key are linearizable with respect to each
// other; there is no cross-key atomicity, matching the concurrency model's
// explicit non-requirement.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]CachedEntry

	stopChan        chan struct{}
	wg              sync.WaitGroup
	once            sync.Once
	cleanupInterval time.Duration
	logger          *slog.Logger
}

// Option configures a MemoryStore at construction time.
type Option func(*MemoryStore)

// WithCleanupInterval overrides the default background sweep interval.
func WithCleanupInterval(d time.Duration) Option {
	return func(s *MemoryStore) { s.cleanupInterval = d }
}

// WithLogger attaches a logger for sweep diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *MemoryStore) { s.logger = logger }
}

// NewMemoryStore creates an empty cache. The background expiry sweep is not
// started until StartCleanup is called — correctness of Put/Get never
// depends on the sweep running.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		entries:         make(map[string]CachedEntry),
		stopChan:        make(chan struct{}),
		cleanupInterval: 5 * time.Minute,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores entry under callID, replacing any prior entry for that key.
// The caller's payload is stored as given; MemoryStore never mutates it.
func (s *MemoryStore) Put(callID string, entry CachedEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[callID] = entry
}

// Get returns the entry stored under callID. A missing or expired entry
// reports ok == false; expired entries are lazily dropped on access so a
// caller never observes stale data even if the sweep hasn't run yet.
func (s *MemoryStore) Get(callID string) (CachedEntry, bool) {
	s.mu.RLock()
	entry, ok := s.entries[callID]
	s.mu.RUnlock()
	if !ok {
		return CachedEntry{}, false
	}
	if entry.Metadata.Expired(time.Now()) {
		s.Delete(callID)
		return CachedEntry{}, false
	}
	return entry, true
}

// Has reports whether callID currently has a live, unexpired entry.
func (s *MemoryStore) Has(callID string) bool {
	_, ok := s.Get(callID)
	return ok
}

// Delete removes callID if present. Deleting an absent key is a no-op.
func (s *MemoryStore) Delete(callID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, callID)
}

// Keys returns a snapshot of all call ids currently stored, expired or not.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}

// Clear removes every entry.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]CachedEntry)
}

// Count returns the number of entries currently stored, expired or not.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// StartCleanup starts the background sweep that removes expired entries.
// It is pure hygiene: Get already filters expired entries on access, so
// correctness never depends on the sweep running or keeping up.
func (s *MemoryStore) StartCleanup(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *MemoryStore) sweep() {
	now := time.Now()
	s.mu.Lock()
	removed := 0
	for k, entry := range s.entries {
		if entry.Metadata.Expired(now) {
			delete(s.entries, k)
			removed++
		}
	}
	remaining := len(s.entries)
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Debug("data cache sweep completed",
			"removed", removed,
			"remaining", remaining)
	}
}

// Stop gracefully stops the background sweep and waits for it to exit.
// Safe to call multiple times; safe to call even if StartCleanup was never
// called.
func (s *MemoryStore) Stop() {
	s.once.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
}

var _ Store = (*MemoryStore)(nil)
