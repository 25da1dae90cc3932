package assistants

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository for tests and local development.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*Assistant
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]*Assistant)}
}

func (r *MemoryRepository) Create(_ context.Context, a *Assistant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.items[a.ID.String()] = &cp
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, ownerID, id string) (*Assistant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[id]
	if !ok || a.OwnerUserID.String() != ownerID {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *MemoryRepository) ListByOwner(_ context.Context, ownerID string) ([]*Assistant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Assistant
	for _, a := range r.items {
		if a.OwnerUserID.String() == ownerID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, a *Assistant) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[a.ID.String()]
	if !ok || stored.OwnerUserID != a.OwnerUserID {
		return 0, nil
	}
	cp := *a
	cp.UpdatedAt = time.Now()
	r.items[a.ID.String()] = &cp
	return 1, nil
}

func (r *MemoryRepository) Delete(_ context.Context, ownerID, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok || a.OwnerUserID.String() != ownerID {
		return 0, nil
	}
	delete(r.items, id)
	return 1, nil
}
