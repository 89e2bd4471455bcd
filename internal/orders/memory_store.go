package orders

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[int64]*Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[int64]*Order)}
}

func (s *MemoryStore) Create(_ context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneOrder(o)
	s.orders[o.ID] = cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (s *MemoryStore) SetMeta(_ context.Context, id int64, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	if o.Meta == nil {
		o.Meta = make(map[string]string)
	}
	o.Meta[key] = value
	return nil
}

func cloneOrder(o *Order) *Order {
	cp := *o
	if o.Meta != nil {
		cp.Meta = make(map[string]string, len(o.Meta))
		for k, v := range o.Meta {
			cp.Meta[k] = v
		}
	}
	return &cp
}
