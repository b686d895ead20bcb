package generator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/domain"
)

// Cache holds generated projects for download until they expire.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	project   *domain.GeneratedProject
	expiresAt time.Time
}

// NewCache creates a project cache with the given entry TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Put stores a project under its id.
func (c *Cache) Put(project *domain.GeneratedProject) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[project.ID] = cacheEntry{
		project:   project,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Get returns the project for the id. Expired entries count as absent
// even before the sweeper removes them.
func (c *Cache) Get(id string) (*domain.GeneratedProject, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[id]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.project, true
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictExpired removes entries whose TTL has passed and returns how
// many were dropped.
func (c *Cache) evictExpired(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	evicted := 0
	for id, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, id)
			evicted++
		}
	}
	return evicted
}

// StartEviction launches the background sweep that drops expired
// projects. It stops when the context is cancelled.
func StartEviction(ctx context.Context, cache *Cache, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		slog.Info("project cache eviction started", "interval", interval, "ttl", cache.ttl)

		for {
			select {
			case <-ctx.Done():
				slog.Info("project cache eviction stopped")
				return
			case <-ticker.C:
				if evicted := cache.evictExpired(time.Now()); evicted > 0 {
					slog.Info("evicted expired projects", "count", evicted, "remaining", cache.Len())
				}
			}
		}
	}()
}
