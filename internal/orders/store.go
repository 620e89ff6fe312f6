package orders

import (
	"errors"
	"sync"
)

// ErrNotFound signals a lookup for an order id the store does not hold.
var ErrNotFound = errors.New("order not found")

// Store is the in-memory order collection for one restaurant session.
// It is the single source of truth read by the filtering/aggregation
// layer; every write funnels through Load, Apply or Replace so that both
// live events and optimistic mutations resolve as last-write-wins upserts
// keyed by order id.
type Store struct {
	mu   sync.RWMutex
	byID map[string]*Order
	ids  []string // newest first
}

// NewStore creates an empty order store.
func NewStore() *Store {
	return &Store{byID: map[string]*Order{}}
}

// Load replaces the entire store contents with a bulk snapshot, keeping
// the snapshot's order.
func (s *Store) Load(list []Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[string]*Order, len(list))
	s.ids = make([]string, 0, len(list))
	for _, o := range list {
		if _, dup := s.byID[o.ID]; dup {
			c := o.Clone()
			s.byID[o.ID] = &c
			continue
		}
		c := o.Clone()
		s.byID[o.ID] = &c
		s.ids = append(s.ids, o.ID)
	}
}

// Apply upserts one order. Known ids are replaced in place; unknown ids
// are inserted at the front (newest first). Incremental events never
// merge partial fields.
func (s *Store) Apply(o Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := o.Clone()
	if _, ok := s.byID[o.ID]; ok {
		s.byID[o.ID] = &c
		return
	}
	s.byID[o.ID] = &c
	s.ids = append([]string{o.ID}, s.ids...)
}

// Replace overwrites the order with the given id. Returns ErrNotFound
// when the id is absent; it never inserts.
func (s *Store) Replace(id string, o Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	c := o.Clone()
	c.ID = id
	s.byID[id] = &c
	return nil
}

// Get returns a copy of the order with the given id.
func (s *Store) Get(id string) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.byID[id]
	if !ok {
		return Order{}, false
	}
	return o.Clone(), true
}

// GetByNumber returns a copy of the order with the given human-readable
// number, the display-side fallback lookup key.
func (s *Store) GetByNumber(number string) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.ids {
		if o := s.byID[id]; o.OrderNumber == number {
			return o.Clone(), true
		}
	}
	return Order{}, false
}

// MoveToFront promotes the order to the head of the snapshot order, used
// when a just-paid order should surface at the top of its partition.
func (s *Store) MoveToFront(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.ids {
		if existing == id {
			copy(s.ids[1:i+1], s.ids[:i])
			s.ids[0] = id
			return
		}
	}
}

// Snapshot returns copies of all orders in display order.
func (s *Store) Snapshot() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Order, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.byID[id].Clone())
	}
	return out
}

// Len returns the number of orders held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
