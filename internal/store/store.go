// Package store implements the in-memory product document store.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/realtime-catalog/internal/model"
)

// Patch describes a partial product update. Nil fields are left unchanged.
type Patch struct {
	Name        *string
	Description *string
	Price       *float64
	Quantity    *int64
	Categories  *[]string
	IsActive    *bool
}

// Store keeps product documents keyed by id. Insertion order is preserved
// for FindWhere so listings are stable across rebuilds.
type Store struct {
	mu    sync.RWMutex
	m     map[string]model.Product
	order []string
}

func New() *Store {
	return &Store{m: make(map[string]model.Product)}
}

// Insert assigns an id and timestamps, then stores the product.
func (s *Store) Insert(p model.Product) model.Product {
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[p.ID] = p
	s.order = append(s.order, p.ID)
	return p
}

func (s *Store) FindByID(id string) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.m[id]
	return p, ok
}

// UpdatePartial applies the non-nil fields of patch and bumps UpdatedAt.
// Returns false if the id is unknown.
func (s *Store) UpdatePartial(id string, patch Patch) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok {
		return model.Product{}, false
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Quantity != nil {
		p.Quantity = *patch.Quantity
	}
	if patch.Categories != nil {
		p.Categories = *patch.Categories
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	p.UpdatedAt = time.Now().UTC()
	s.m[id] = p
	return p, true
}

// DeleteByID removes the record entirely. Deleted ids are never reused.
func (s *Store) DeleteByID(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return false
	}
	delete(s.m, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// FindWhere returns all products matching pred, in insertion order.
func (s *Store) FindWhere(pred func(model.Product) bool) []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Product
	for _, id := range s.order {
		if p, ok := s.m[id]; ok && pred(p) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
