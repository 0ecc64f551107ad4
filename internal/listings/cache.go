// Package listings caches the marketplace list views that a newly published
// listing can affect. Publishing invalidates the affected views so the next
// read refetches.
package listings

import (
	"context"
	"sync"
	"time"

	"estate-listing-backend/internal/marketplace"
)

// Views a free-listing publish can change.
const (
	ViewFeatured = "featured"
	ViewUrgent   = "urgent"
	ViewFree     = "free"
)

var KnownViews = []string{ViewFeatured, ViewUrgent, ViewFree}

// Fetcher is satisfied by the marketplace client.
type Fetcher interface {
	FetchListings(ctx context.Context, view string) ([]marketplace.ListingSummary, error)
}

type entry struct {
	listings  []marketplace.ListingSummary
	fetchedAt time.Time
}

type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	fetcher Fetcher
}

func NewCache(fetcher Fetcher, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		fetcher: fetcher,
	}
}

func ValidView(view string) bool {
	for _, v := range KnownViews {
		if v == view {
			return true
		}
	}
	return false
}

// Get serves a fresh cached view or refetches through the marketplace.
func (c *Cache) Get(ctx context.Context, view string) ([]marketplace.ListingSummary, error) {
	c.mu.RLock()
	e, ok := c.entries[view]
	c.mu.RUnlock()
	if ok && time.Since(e.fetchedAt) < c.ttl {
		return e.listings, nil
	}

	listings, err := c.fetcher.FetchListings(ctx, view)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[view] = entry{listings: listings, fetchedAt: time.Now()}
	c.mu.Unlock()
	return listings, nil
}

// Invalidate drops the named views; with no arguments it drops everything.
func (c *Cache) Invalidate(views ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(views) == 0 {
		c.entries = make(map[string]entry)
		return
	}
	for _, v := range views {
		delete(c.entries, v)
	}
}

// Cached reports whether a view currently has a live cache entry.
func (c *Cache) Cached(view string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[view]
	return ok && time.Since(e.fetchedAt) < c.ttl
}
