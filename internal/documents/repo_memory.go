package documents

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of DocumentsRepo.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	data   map[string][]Document // ownerKey -> documents
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Document),
	}
}

// Create stores a document under its owner and assigns an ID.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	doc.ID = r.nextID
	r.data[doc.OwnerKey] = append(r.data[doc.OwnerKey], doc)
	return doc, nil
}

// GetByID returns a document by ID for an owner.
func (r *MemoryRepo) GetByID(ctx context.Context, ownerKey string, id int64) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	docs := r.data[ownerKey]
	for i := range docs {
		if docs[i].ID == id {
			return docs[i], nil
		}
	}
	return Document{}, ErrNotFound
}

// ListByOwner returns documents for an owner, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerKey string, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	ownerDocs := r.data[ownerKey]
	r.mu.RUnlock()

	if len(ownerDocs) == 0 || offset >= len(ownerDocs) {
		return []Document{}, nil
	}

	docs := make([]Document, len(ownerDocs))
	copy(docs, ownerDocs)
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].ID > docs[j].ID
		}
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})

	end := len(docs)
	if offset+limit < end {
		end = offset + limit
	}

	return docs[offset:end], nil
}

// Delete removes a document for an owner.
func (r *MemoryRepo) Delete(ctx context.Context, ownerKey string, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.data[ownerKey]
	for i := range docs {
		if docs[i].ID == id {
			r.data[ownerKey] = append(docs[:i], docs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// UpdateScore sets the originality score for a document.
func (r *MemoryRepo) UpdateScore(ctx context.Context, ownerKey string, id int64, score float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.data[ownerKey]
	for i := range docs {
		if docs[i].ID == id {
			s := score
			docs[i].OriginalityScore = &s
			r.data[ownerKey] = docs
			return nil
		}
	}
	return ErrNotFound
}

var _ DocumentsRepo = (*MemoryRepo)(nil)
