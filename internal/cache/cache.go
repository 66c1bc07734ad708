// Package cache provides the injected result cache used by document list
// reads. Keys are derived from the full query shape (org + filters +
// pagination) and every document mutation invalidates the owning
// organization's entries, so a stale list is never served after a write.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// entry is a cached value with its expiry and owning organization.
type entry struct {
	value     any
	orgID     string
	expiresAt time.Time
}

// ListCache is a TTL cache for list-shaped query results. Safe for
// concurrent use.
type ListCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
}

// New creates a ListCache whose entries expire after ttl.
func New(ttl time.Duration) *ListCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ListCache{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

// Key builds a stable cache key from the organization, filter values, and
// pagination. Filters are sorted so callers need not worry about argument
// order.
func Key(orgID string, filters []string, limit, offset int) string {
	sorted := append([]string(nil), filters...)
	sort.Strings(sorted)

	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|%d", orgID, strings.Join(sorted, ","), limit, offset)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached value for key, or nil when missing or expired.
func (c *ListCache) Get(key string) any {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return nil
	}
	return e.value
}

// Put stores value under key, attributed to orgID for invalidation.
func (c *ListCache) Put(key, orgID string, value any) {
	c.mu.Lock()
	c.entries[key] = entry{
		value:     value,
		orgID:     orgID,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// InvalidateOrg drops every entry belonging to orgID. Called on any
// document mutation within that organization.
func (c *ListCache) InvalidateOrg(orgID string) {
	c.mu.Lock()
	for k, e := range c.entries {
		if e.orgID == orgID {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// Len returns the number of live entries, counting expired ones that have
// not yet been overwritten.
func (c *ListCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
