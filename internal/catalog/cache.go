// Package catalog holds the client-side product cache.
//
// The source of truth is the remote catalog; the cache keeps the most
// recently fetched full list and serves synchronous lookups against it.
// Lookups never block: before the first Refresh every lookup misses and
// callers defer dependent work.
package catalog

import (
	"sync"

	"github.com/orderdesk/orderdesk/internal/domain/product"
)

// Cache holds a snapshot of the product catalog.
type Cache struct {
	mu     sync.RWMutex
	list   []product.Product
	byID   map[int64]product.Product
	loaded bool
}

// New returns an empty cache. Lookup misses until Refresh is called.
func New() *Cache {
	return &Cache{byID: make(map[int64]product.Product)}
}

// Refresh replaces the cached list with a freshly fetched one.
func (c *Cache) Refresh(products []product.Product) {
	byID := make(map[int64]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = append([]product.Product(nil), products...)
	c.byID = byID
	c.loaded = true
}

// Loaded reports whether at least one full list has been stored.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Lookup returns the cached product with the given id. The second return
// value is false when the id is unknown or the list has not loaded yet.
func (c *Cache) Lookup(id int64) (product.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byID[id]
	return p, ok
}

// First returns the first product of the cached list, used as the default
// selection when staging a new line item. ok is false on an empty catalog.
func (c *Cache) First() (product.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.list) == 0 {
		return product.Product{}, false
	}
	return c.list[0], true
}

// Products returns a copy of the cached list in fetch order.
func (c *Cache) Products() []product.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]product.Product(nil), c.list...)
}

// Len returns the number of cached products.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.list)
}
