// Package mediagroup correlates the pieces of a multi-part submission
// (a Telegram album arrives as several messages sharing one
// media_group_id) and evicts partial groups that never complete.
package mediagroup

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultCompleteSize is the member count at which a group is treated
// as complete. Albums do not announce their size up front, so this is a
// heuristic, not a protocol fact; it stays a constant until the
// platform gives us something better to key on.
const DefaultCompleteSize = 2

// DefaultStaleAge is how long an incomplete group may linger before the
// sweep discards it.
const DefaultStaleAge = 90 * time.Second

// DefaultSweepInterval is the sweep tick period.
const DefaultSweepInterval = 30 * time.Second

// Item is one media observation within a group.
type Item struct {
	Kind   string
	FileID string
}

// CompleteFunc is invoked with the whole group once it reaches the
// completion size. It runs outside the cache lock.
type CompleteFunc func(groupID string, items []Item)

type entry struct {
	items     []Item
	firstSeen time.Time
}

// Cache is a process-wide map from group ID to the media items seen so
// far. All access goes through one mutex for the duration of a single
// read-modify-write.
type Cache struct {
	mu           sync.Mutex
	groups       map[string]*entry
	completeSize int
	staleAge     time.Duration
	onComplete   CompleteFunc
	now          func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithCompleteSize overrides the completion member count.
func WithCompleteSize(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.completeSize = n
		}
	}
}

// WithStaleAge overrides how old an incomplete group must be before the
// sweep evicts it.
func WithStaleAge(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.staleAge = d
		}
	}
}

// WithCompleteFunc sets the hook called when a group completes.
func WithCompleteFunc(fn CompleteFunc) Option {
	return func(c *Cache) { c.onComplete = fn }
}

// withClock injects a fake clock for tests.
func withClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		groups:       make(map[string]*entry),
		completeSize: DefaultCompleteSize,
		staleAge:     DefaultStaleAge,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Record registers one media item under groupID. When the group reaches
// the completion size its entry is removed promptly and the whole group
// is handed to the completion hook as one unit.
func (c *Cache) Record(groupID, kind, fileID string) {
	c.mu.Lock()
	e, ok := c.groups[groupID]
	if !ok {
		e = &entry{firstSeen: c.now()}
		c.groups[groupID] = e
	}
	e.items = append(e.items, Item{Kind: kind, FileID: fileID})

	var completed []Item
	if len(e.items) >= c.completeSize {
		completed = e.items
		delete(c.groups, groupID)
	}
	c.mu.Unlock()

	if completed == nil {
		return
	}
	slog.Debug("media group complete", "group_id", groupID, "items", len(completed))
	if c.onComplete != nil {
		c.onComplete(groupID, completed)
	}
}

// Len reports the number of groups currently tracked.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.groups)
}

// Sweep evicts incomplete groups whose first observation is older than
// the stale age, returning how many were removed. Groups still inside
// the stale window are left alone so a slowly-arriving album is not
// discarded mid-accumulation.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-c.staleAge)
	evicted := 0
	for id, e := range c.groups {
		if e.firstSeen.Before(cutoff) {
			delete(c.groups, id)
			evicted++
			slog.Debug("evicted stale media group", "group_id", id, "items", len(e.items))
		}
	}
	return evicted
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (c *Cache) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("media group sweep started", "interval", interval, "stale_age", c.staleAge)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("media group sweep stopped")
			return
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				slog.Info("swept stale media groups", "evicted", n)
			}
		}
	}
}
