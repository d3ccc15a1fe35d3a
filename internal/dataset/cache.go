package dataset

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/demandcast/backend/internal/models"
)

// DefaultMaxDatasets bounds the number of cached uploads. The oldest
// dataset is evicted when a new upload would exceed the limit.
const DefaultMaxDatasets = 5

// KeepAliveWindow protects recently touched datasets from expiry cleanup.
const KeepAliveWindow = 5 * time.Minute

// Entry is a cached dataset together with its DuckDB materialization.
type Entry struct {
	Info         models.DatasetInfo
	Dataset      *models.Dataset
	Store        *DuckStore
	UploadedAt   time.Time
	LastAccessed time.Time
}

// Cache is a bounded registry of uploaded datasets keyed by uuid.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	order   []string // insertion order, oldest first
	max     int
	logger  *slog.Logger
}

// NewCache creates a dataset cache holding at most max entries.
func NewCache(max int, logger *slog.Logger) *Cache {
	if max <= 0 {
		max = DefaultMaxDatasets
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		entries: make(map[string]*Entry),
		max:     max,
		logger:  logger,
	}
}

// Put registers a validated dataset and returns its generated ID.
// When the cache is full the oldest entry is evicted and its store closed.
func (c *Cache) Put(info models.DatasetInfo, ds *models.Dataset, store *DuckStore) string {
	id := uuid.New().String()
	now := time.Now()
	info.ID = id
	info.UploadedAt = now

	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.entries) >= c.max && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		c.evictLocked(oldest, "capacity")
	}

	c.entries[id] = &Entry{
		Info:         info,
		Dataset:      ds,
		Store:        store,
		UploadedAt:   now,
		LastAccessed: now,
	}
	c.order = append(c.order, id)
	return id
}

// Get returns a cached dataset and refreshes its last-accessed time.
func (c *Cache) Get(id string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	entry.LastAccessed = time.Now()
	return entry, true
}

// Touch refreshes the last-accessed time without returning the entry.
func (c *Cache) Touch(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	if !ok {
		return false
	}
	entry.LastAccessed = time.Now()
	return true
}

// Delete removes a dataset and closes its store.
func (c *Cache) Delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[id]; !ok {
		return false
	}
	c.evictLocked(id, "deleted")
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of cached datasets.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CleanupExpired evicts datasets idle for longer than maxAge, keeping
// anything touched within the keep-alive window.
func (c *Cache) CleanupExpired(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	keepAlive := time.Now().Add(-KeepAliveWindow)

	var evicted int
	var remaining []string
	for _, id := range c.order {
		entry, ok := c.entries[id]
		if !ok {
			continue
		}
		if entry.LastAccessed.After(keepAlive) || entry.LastAccessed.After(cutoff) {
			remaining = append(remaining, id)
			continue
		}
		c.evictLocked(id, "expired")
		evicted++
	}
	c.order = remaining
	return evicted
}

// evictLocked removes an entry and closes its store. Caller holds c.mu.
func (c *Cache) evictLocked(id string, reason string) {
	entry, ok := c.entries[id]
	if !ok {
		return
	}
	if entry.Store != nil {
		if err := entry.Store.Close(); err != nil {
			c.logger.Warn("failed to close dataset store", "dataset", id, "error", err)
		}
	}
	delete(c.entries, id)
	c.logger.Info("dataset evicted", "dataset", id, "reason", reason)
}

// Close evicts every entry. Used during shutdown.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.entries {
		c.evictLocked(id, "shutdown")
	}
	c.order = nil
}
