// Package cache memoizes account display names for the lifetime of a process.
package cache

import (
	"container/list"
	"context"
	"sync"
)

// DefaultCapacity bounds the number of names kept.
const DefaultCapacity = 1024

// Resolver looks up the display name of an account.
type Resolver interface {
	AccountName(ctx context.Context, accountID int) (string, error)
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits    int
	Misses  int
	Entries int
}

// NameCache is a bounded LRU of account id to display name. Each distinct id is
// resolved at most once while it stays cached. Failed lookups are not cached.
type NameCache struct {
	resolver Resolver
	capacity int

	mu      sync.Mutex
	entries map[int]*list.Element
	order   *list.List
	hits    int
	misses  int
}

type nameEntry struct {
	id   int
	name string
}

// NewNameCache creates a cache in front of r. A capacity below one uses DefaultCapacity.
func NewNameCache(r Resolver, capacity int) *NameCache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &NameCache{
		resolver: r,
		capacity: capacity,
		entries:  make(map[int]*list.Element),
		order:    list.New(),
	}
}

// Name returns the display name for accountID, resolving it on first use.
func (c *NameCache) Name(ctx context.Context, accountID int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[accountID]; ok {
		c.order.MoveToFront(elem)
		c.hits++
		return elem.Value.(*nameEntry).name, nil
	}
	c.misses++

	// The lock is held across the lookup so concurrent callers never resolve the same id twice.
	name, err := c.resolver.AccountName(ctx, accountID)
	if err != nil {
		return "", err
	}

	if c.order.Len() >= c.capacity {
		c.evictOldest()
	}
	c.entries[accountID] = c.order.PushFront(&nameEntry{id: accountID, name: name})
	return name, nil
}

// Stats returns hit/miss counters and the current size.
func (c *NameCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Entries: c.order.Len()}
}

func (c *NameCache) evictOldest() {
	elem := c.order.Back()
	if elem != nil {
		delete(c.entries, elem.Value.(*nameEntry).id)
		c.order.Remove(elem)
	}
}
