package catalog

import (
	"errors"
	"sync"
)

// ErrAlreadyLoaded is returned when the store is populated a second time.
var ErrAlreadyLoaded = errors.New("catalog: store already loaded")

// Store holds the process-wide catalog. It is populated exactly once, either with the
// products or with the load error, and is read-only afterwards.
type Store struct {
	mu       sync.RWMutex
	products []Product
	err      error
	done     bool
}

// NewStore returns an empty, not yet loaded store.
func NewStore() *Store { return &Store{} }

// Set records a successful load.
func (s *Store) Set(products []Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return ErrAlreadyLoaded
	}
	s.products = make([]Product, len(products))
	copy(s.products, products)
	s.done = true
	return nil
}

// Fail records a failed load.
func (s *Store) Fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return ErrAlreadyLoaded
	}
	s.err = err
	s.done = true
	return nil
}

// Products returns a copy of the loaded products (empty until loaded).
func (s *Store) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

// Err returns the load error, if the load failed.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Loaded reports whether the catalog loaded successfully.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.done && s.err == nil
}

// Lookup finds a product by SKU.
func (s *Store) Lookup(sku string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Find(s.products, sku)
}
