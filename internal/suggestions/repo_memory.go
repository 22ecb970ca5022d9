package suggestions

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of SuggestionsRepo.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	data   []Suggestion
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// Create stores a suggestion and assigns an ID.
func (r *MemoryRepo) Create(ctx context.Context, s Suggestion) (Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return Suggestion{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	r.data = append(r.data, s)
	return s, nil
}

// GetByID returns a suggestion by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return Suggestion{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.data {
		if r.data[i].ID == id {
			return r.data[i], nil
		}
	}
	return Suggestion{}, ErrNotFound
}

// ListByOwner returns an owner's suggestions, newest first.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerKey string, limit, offset int) ([]Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	var matched []Suggestion
	for i := range r.data {
		if r.data[i].OwnerKey == ownerKey {
			matched = append(matched, r.data[i])
		}
	}
	r.mu.RUnlock()

	sortNewestFirst(matched)
	if offset >= len(matched) {
		return []Suggestion{}, nil
	}
	end := len(matched)
	if offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], nil
}

// ListByDocument returns a document's suggestions, newest first.
func (r *MemoryRepo) ListByDocument(ctx context.Context, documentID int64) ([]Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var matched []Suggestion
	for i := range r.data {
		if r.data[i].DocumentID == documentID {
			matched = append(matched, r.data[i])
		}
	}
	r.mu.RUnlock()

	sortNewestFirst(matched)
	return matched, nil
}

// DeleteByDocument removes all suggestions for a document.
func (r *MemoryRepo) DeleteByDocument(ctx context.Context, documentID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.data[:0]
	for i := range r.data {
		if r.data[i].DocumentID != documentID {
			kept = append(kept, r.data[i])
		}
	}
	r.data = kept
	return nil
}

func sortNewestFirst(list []Suggestion) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

var _ SuggestionsRepo = (*MemoryRepo)(nil)
