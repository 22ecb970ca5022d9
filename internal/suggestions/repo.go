package suggestions

import "context"

// SuggestionsRepo defines persistence operations for suggestions.
type SuggestionsRepo interface {
	Create(ctx context.Context, s Suggestion) (Suggestion, error)
	GetByID(ctx context.Context, id int64) (Suggestion, error)
	ListByOwner(ctx context.Context, ownerKey string, limit, offset int) ([]Suggestion, error)
	ListByDocument(ctx context.Context, documentID int64) ([]Suggestion, error)
	DeleteByDocument(ctx context.Context, documentID int64) error
}
