package schedules

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository for tests and local development.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*Schedule
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]*Schedule)}
}

func (r *MemoryRepository) Create(_ context.Context, s *Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.items[s.ID.String()] = &cp
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, ownerID, id string) (*Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.items[id]
	if !ok || s.DeletedAt != nil || s.OwnerUserID.String() != ownerID {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *MemoryRepository) FindByIdentity(_ context.Context, ownerID, title string, startTime time.Time) (*Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *Schedule
	for _, s := range r.items {
		if s.DeletedAt != nil || s.OwnerUserID.String() != ownerID {
			continue
		}
		if s.Title != title || !s.StartTime.Equal(startTime) {
			continue
		}
		if best == nil || s.CreatedAt.After(best.CreatedAt) {
			best = s
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (r *MemoryRepository) FindByTitle(_ context.Context, ownerID, title string) (*Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *Schedule
	for _, s := range r.items {
		if s.DeletedAt != nil || s.OwnerUserID.String() != ownerID || s.Title != title {
			continue
		}
		if best == nil || s.CreatedAt.After(best.CreatedAt) {
			best = s
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (r *MemoryRepository) Update(_ context.Context, ownerID, id string, fields UpdateFields) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok || s.DeletedAt != nil || s.OwnerUserID.String() != ownerID {
		return 0, nil
	}
	if fields.Title != nil {
		s.Title = *fields.Title
	}
	if fields.StartTime != nil {
		s.StartTime = *fields.StartTime
	}
	if fields.EndTime != nil {
		s.EndTime = fields.EndTime
	}
	if fields.Recurrence != nil {
		s.Recurrence = *fields.Recurrence
	}
	if fields.Status != nil {
		s.Status = *fields.Status
	}
	if fields.Image != nil {
		s.Image = *fields.Image
	}
	s.UpdatedAt = time.Now()
	return 1, nil
}

func (r *MemoryRepository) SoftDelete(_ context.Context, ownerID, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok || s.DeletedAt != nil || s.OwnerUserID.String() != ownerID {
		return 0, nil
	}
	now := time.Now()
	s.DeletedAt = &now
	s.UpdatedAt = now
	return 1, nil
}

func (r *MemoryRepository) ListRange(_ context.Context, ownerID string, from, to time.Time) ([]*Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Schedule
	for _, s := range r.items {
		if s.DeletedAt != nil || s.OwnerUserID.String() != ownerID {
			continue
		}
		if s.StartTime.Before(from) || !s.StartTime.Before(to) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *MemoryRepository) ListRecent(_ context.Context, ownerID string, limit int) ([]*Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Schedule
	for _, s := range r.items {
		if s.DeletedAt != nil || s.OwnerUserID.String() != ownerID {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) ListDue(_ context.Context, cutoff time.Time, limit int) ([]*Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Schedule
	for _, s := range r.items {
		if s.DeletedAt != nil || s.NotifiedAt != nil || s.Status != StatusPending {
			continue
		}
		if s.StartTime.After(cutoff) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) MarkNotified(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.items[id]; ok && s.DeletedAt == nil {
		s.NotifiedAt = &at
		s.UpdatedAt = at
	}
	return nil
}
