package catalog

import "sync"

// MemoryCatalog implements Catalog with in-memory storage
type MemoryCatalog struct {
	mu       sync.RWMutex
	products map[string]Product
}

// NewMemoryCatalog creates an empty in-memory catalog
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		products: make(map[string]Product),
	}
}

func (c *MemoryCatalog) Lookup(id string) (*Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, exists := c.products[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (c *MemoryCatalog) SetProduct(p Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.products[p.ID] = p
}
