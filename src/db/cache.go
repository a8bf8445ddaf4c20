package db

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/ristretto"
)

// Cache group names, also accepted by the admin clear endpoint.
const (
	PersonCache = "persons"
	BudgetCache = "budgets"
)

// keyGroup remembers the keys stored for one kind of entry so the whole kind
// can be dropped at once; ristretto has no prefix delete. gen moves on every
// Del or Clear so a read that started before an invalidation cannot store
// what it read.
type keyGroup struct {
	sync.Mutex
	m   map[string]struct{}
	gen uint64
}

type Cache struct {
	store  *ristretto.Cache
	groups map[string]*keyGroup
}

func NewCache() (*Cache, error) {
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	return &Cache{
		store: store,
		groups: map[string]*keyGroup{
			PersonCache: {m: make(map[string]struct{})},
			BudgetCache: {m: make(map[string]struct{})},
		},
	}, nil
}

func (c *Cache) Get(key string) (interface{}, bool) {
	if c == nil {
		return nil, false
	}
	return c.store.Get(key)
}

// Generation snapshots the invalidation counter of group. Take it before
// reading the source of truth and hand it to Set.
func (c *Cache) Generation(group string) uint64 {
	if c == nil {
		return 0
	}
	g := c.groups[group]
	g.Lock()
	defer g.Unlock()
	return g.gen
}

// Set stores value unless group was invalidated since gen was taken. It
// reports whether the value was stored.
func (c *Cache) Set(group, key string, value interface{}, gen uint64) bool {
	if c == nil {
		return false
	}
	g := c.groups[group]
	g.Lock()
	defer g.Unlock()
	if g.gen != gen {
		return false
	}
	g.m[key] = struct{}{}
	return c.store.Set(key, value, 1)
}

func (c *Cache) Del(group, key string) {
	if c == nil {
		return
	}
	g := c.groups[group]
	g.Lock()
	defer g.Unlock()
	g.gen++
	delete(g.m, key)
	c.store.Del(key)
}

// Clear drops every entry of the named group.
func (c *Cache) Clear(group string) error {
	if c == nil {
		return nil
	}
	g, ok := c.groups[group]
	if !ok {
		return fmt.Errorf("unknown cache %q", group)
	}
	g.Lock()
	for key := range g.m {
		c.store.Del(key)
	}
	g.m = make(map[string]struct{})
	g.gen++
	g.Unlock()
	return nil
}

// Wait blocks until buffered writes are visible to Get.
func (c *Cache) Wait() {
	if c != nil {
		c.store.Wait()
	}
}

func (c *Cache) Close() {
	if c != nil {
		c.store.Close()
	}
}
