package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"boothdesk/internal/model"

	"github.com/google/uuid"
)

// MemoryChecklistRepo is an in-process ChecklistRepository used by the
// service and handler tests.
type MemoryChecklistRepo struct {
	mu     sync.Mutex
	events map[string]string // event id -> owner
	items  map[string]model.ChecklistItem
	now    func() time.Time
}

// NewMemoryChecklistRepo creates an empty repository.
func NewMemoryChecklistRepo() *MemoryChecklistRepo {
	return &MemoryChecklistRepo{
		events: map[string]string{},
		items:  map[string]model.ChecklistItem{},
		now:    time.Now,
	}
}

// AddEvent registers an event owned by userID.
func (r *MemoryChecklistRepo) AddEvent(userID, eventID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[eventID] = userID
}

func (r *MemoryChecklistRepo) ownsEvent(userID, eventID string) bool {
	owner, ok := r.events[eventID]
	return ok && owner == userID
}

func sortItems(items []model.ChecklistItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Phase != items[j].Phase {
			return items[i].Phase.Order() < items[j].Phase.Order()
		}
		return items[i].Position < items[j].Position
	})
}

func (r *MemoryChecklistRepo) ListByEvent(_ context.Context, userID, eventID string) ([]model.ChecklistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := []model.ChecklistItem{}
	for _, it := range r.items {
		if it.EventID == eventID && it.UserID == userID {
			items = append(items, it)
		}
	}
	sortItems(items)
	return items, nil
}

func (r *MemoryChecklistRepo) Snapshot(ctx context.Context, userID, eventID string) ([]model.ChecklistItem, error) {
	r.mu.Lock()
	owned := r.ownsEvent(userID, eventID)
	r.mu.Unlock()
	if !owned {
		return nil, ErrEventNotFound
	}
	return r.ListByEvent(ctx, userID, eventID)
}

func (r *MemoryChecklistRepo) GetByID(_ context.Context, userID, itemID string) (*model.ChecklistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[itemID]
	if !ok || it.UserID != userID {
		return nil, ErrNotFound
	}
	return &it, nil
}

func (r *MemoryChecklistRepo) CountByEvent(_ context.Context, userID, eventID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, it := range r.items {
		if it.EventID == eventID && it.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryChecklistRepo) Append(_ context.Context, userID, eventID string, seeds []model.ChecklistSeed, replace bool, maxItems int) ([]model.ChecklistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ownsEvent(userID, eventID) {
		return nil, ErrEventNotFound
	}
	if maxItems >= 0 {
		n := 0
		if !replace {
			for _, it := range r.items {
				if it.EventID == eventID {
					n++
				}
			}
		}
		if n+len(seeds) > maxItems {
			return nil, ErrCapacityExceeded
		}
	}
	if replace {
		for id, it := range r.items {
			if it.EventID == eventID {
				delete(r.items, id)
			}
		}
	}

	next := map[model.Phase]int{}
	for _, it := range r.items {
		if it.EventID == eventID && it.Position+1 > next[it.Phase] {
			next[it.Phase] = it.Position + 1
		}
	}

	now := r.now()
	created := make([]model.ChecklistItem, 0, len(seeds))
	for _, s := range seeds {
		it := model.ChecklistItem{
			ID:        uuid.NewString(),
			EventID:   eventID,
			UserID:    userID,
			Phase:     s.Phase,
			Text:      s.Text,
			Position:  next[s.Phase],
			CreatedAt: now,
			UpdatedAt: now,
		}
		next[s.Phase]++
		r.items[it.ID] = it
		created = append(created, it)
	}
	return created, nil
}

func (r *MemoryChecklistRepo) Update(_ context.Context, userID, itemID string, patch model.ChecklistPatch) (*model.ChecklistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[itemID]
	if !ok || it.UserID != userID {
		return nil, ErrNotFound
	}
	if patch.Text != nil {
		it.Text = *patch.Text
	}
	if patch.Completed != nil {
		it.Completed = *patch.Completed
	}
	it.UpdatedAt = r.now()
	r.items[itemID] = it
	return &it, nil
}

func (r *MemoryChecklistRepo) Delete(_ context.Context, userID, itemID string) (*model.ChecklistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[itemID]
	if !ok || it.UserID != userID {
		return nil, ErrNotFound
	}
	delete(r.items, itemID)
	return &it, nil
}

func (r *MemoryChecklistRepo) DeleteByEvent(_ context.Context, userID, eventID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, it := range r.items {
		if it.EventID == eventID && it.UserID == userID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryChecklistRepo) Reorder(_ context.Context, userID, eventID string, phase model.Phase, orderedIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ownsEvent(userID, eventID) {
		return ErrEventNotFound
	}
	current := map[string]bool{}
	for id, it := range r.items {
		if it.EventID == eventID && it.UserID == userID && it.Phase == phase {
			current[id] = true
		}
	}
	if !SamePartition(current, orderedIDs) {
		return ErrPartitionMismatch
	}
	now := r.now()
	for i, id := range orderedIDs {
		it := r.items[id]
		it.Position = i
		it.UpdatedAt = now
		r.items[id] = it
	}
	return nil
}
