package service

import (
	"sync"
	"time"

	"salesdash/internal/excel"

	"github.com/google/uuid"
)

type pendingPreview struct {
	preview   excel.Preview
	expiresAt time.Time
}

// previewCache holds spreadsheet previews between upload and commit.
// Expired entries are dropped lazily on access.
type previewCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]pendingPreview
}

func newPreviewCache(ttl time.Duration, now func() time.Time) *previewCache {
	return &previewCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]pendingPreview),
	}
}

func (c *previewCache) put(p excel.Preview) (string, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()

	token := uuid.NewString()
	expires := c.now().Add(c.ttl)
	c.entries[token] = pendingPreview{preview: p, expiresAt: expires}
	return token, expires
}

// take removes and returns the preview for token.
func (c *previewCache) take(token string) (excel.Preview, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()

	entry, ok := c.entries[token]
	if !ok {
		return excel.Preview{}, false
	}
	delete(c.entries, token)
	return entry.preview, true
}

func (c *previewCache) drop(token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()

	if _, ok := c.entries[token]; !ok {
		return false
	}
	delete(c.entries, token)
	return true
}

func (c *previewCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
	return len(c.entries)
}

func (c *previewCache) sweepLocked() {
	now := c.now()
	for token, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, token)
		}
	}
}
