package chats

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository for tests and local development.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*ChatSession
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]*ChatSession)}
}

func (r *MemoryRepository) Create(_ context.Context, chat *ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[chat.ID.String()] = cloneChat(chat)
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, ownerID, id string) (*ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chat, ok := r.items[id]
	if !ok || chat.OwnerUserID.String() != ownerID {
		return nil, nil
	}
	return cloneChat(chat), nil
}

func (r *MemoryRepository) ListByOwner(_ context.Context, ownerID string, limit int) ([]*ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*ChatSession
	for _, chat := range r.items {
		if chat.OwnerUserID.String() == ownerID {
			out = append(out, cloneChat(chat))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) ListByOwnerAfter(_ context.Context, ownerID string, after time.Time, limit int) ([]*ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*ChatSession
	for _, chat := range r.items {
		if chat.OwnerUserID.String() == ownerID && chat.UpdatedAt.After(after) {
			out = append(out, cloneChat(chat))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) Save(_ context.Context, chat *ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[chat.ID.String()]
	if !ok || stored.OwnerUserID != chat.OwnerUserID {
		return nil
	}
	cp := cloneChat(chat)
	cp.UpdatedAt = time.Now()
	r.items[chat.ID.String()] = cp
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, ownerID, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.items[id]
	if !ok || chat.OwnerUserID.String() != ownerID {
		return 0, nil
	}
	delete(r.items, id)
	return 1, nil
}

func cloneChat(chat *ChatSession) *ChatSession {
	cp := *chat
	cp.Messages = append([]Message(nil), chat.Messages...)
	if chat.PendingSchedule != nil {
		cp.PendingSchedule = make(map[string]any, len(chat.PendingSchedule))
		for k, v := range chat.PendingSchedule {
			cp.PendingSchedule[k] = v
		}
	}
	return &cp
}
