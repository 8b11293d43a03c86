package cart

import "sync"

// Store holds one cart per authenticated session, keyed by user id.
// Carts are in-memory only: they live exactly as long as the process
// and are never persisted. A single store-level lock is enough here;
// cart mutations are scoped to one session and last-write-wins is
// acceptable (no cross-request coordination is promised).
type Store struct {
	mu    sync.RWMutex
	carts map[int64]map[int64]int
}

func NewStore() *Store {
	return &Store{carts: make(map[int64]map[int64]int)}
}

// Add increments the quantity for itemID by one, creating the cart on
// first use. The item id is not validated against the catalog at add
// time; dangling ids are dropped later at snapshot/checkout.
func (s *Store) Add(userID, itemID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[userID]
	if !ok {
		c = make(map[int64]int)
		s.carts[userID] = c
	}
	c[itemID]++
}

// SetQuantity sets the exact quantity for itemID. Quantities below one
// remove the entry entirely; a cart never holds a non-positive entry.
func (s *Store) SetQuantity(userID, itemID int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[userID]
	if !ok {
		if quantity <= 0 {
			return
		}
		c = make(map[int64]int)
		s.carts[userID] = c
	}

	if quantity <= 0 {
		delete(c, itemID)
		return
	}
	c[itemID] = quantity
}

// Entries returns a copy of the raw item id → quantity mapping.
func (s *Store) Entries(userID int64) map[int64]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make(map[int64]int, len(s.carts[userID]))
	for itemID, qty := range s.carts[userID] {
		entries[itemID] = qty
	}
	return entries
}

func (s *Store) Len(userID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts[userID])
}

func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}
