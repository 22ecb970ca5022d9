package documents

import "context"

// DocumentsRepo defines persistence operations for documents.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) (Document, error)
	GetByID(ctx context.Context, ownerKey string, id int64) (Document, error)
	ListByOwner(ctx context.Context, ownerKey string, limit, offset int) ([]Document, error)
	Delete(ctx context.Context, ownerKey string, id int64) error
	UpdateScore(ctx context.Context, ownerKey string, id int64, score float64) error
}
