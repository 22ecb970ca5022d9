package suggestions

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements SuggestionsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new suggestion and returns it with the assigned ID.
func (r *PGRepo) Create(ctx context.Context, s Suggestion) (Suggestion, error) {
	const query = `
INSERT INTO suggestions (
    original_text,
    paraphrased_text,
    citation_text,
    source_url,
    source_title,
    document_id,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

	err := r.DB.QueryRowContext(
		ctx,
		query,
		s.OriginalText,
		s.ParaphrasedText,
		s.CitationText,
		s.SourceURL,
		s.SourceTitle,
		s.DocumentID,
		s.CreatedAt,
	).Scan(&s.ID)
	if err != nil {
		return Suggestion{}, err
	}
	return s, nil
}

const suggestionColumns = `s.id, s.original_text, s.paraphrased_text, s.citation_text, s.source_url, s.source_title, s.document_id, s.created_at, d.owner_key`

// GetByID fetches one suggestion joined with its document's owner.
func (r *PGRepo) GetByID(ctx context.Context, id int64) (Suggestion, error) {
	const query = `
SELECT ` + suggestionColumns + `
FROM suggestions s
JOIN documents d ON d.id = s.document_id
WHERE s.id = $1
LIMIT 1`
	s, err := scanSuggestion(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Suggestion{}, ErrNotFound
		}
		return Suggestion{}, err
	}
	return s, nil
}

// ListByOwner lists suggestions across an owner's documents, newest first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerKey string, limit, offset int) ([]Suggestion, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + suggestionColumns + `
FROM suggestions s
JOIN documents d ON d.id = s.document_id
WHERE d.owner_key = $1
ORDER BY s.created_at DESC, s.id DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, ownerKey, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSuggestions(rows)
}

// ListByDocument lists a document's suggestions, newest first.
func (r *PGRepo) ListByDocument(ctx context.Context, documentID int64) ([]Suggestion, error) {
	const query = `
SELECT ` + suggestionColumns + `
FROM suggestions s
JOIN documents d ON d.id = s.document_id
WHERE s.document_id = $1
ORDER BY s.created_at DESC, s.id DESC`

	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSuggestions(rows)
}

// DeleteByDocument removes all suggestions for a document. The schema also
// cascades on document delete; this covers purges without a document delete.
func (r *PGRepo) DeleteByDocument(ctx context.Context, documentID int64) error {
	const query = `DELETE FROM suggestions WHERE document_id = $1`
	_, err := r.DB.ExecContext(ctx, query, documentID)
	return err
}

func scanSuggestion(row rowScanner) (Suggestion, error) {
	var s Suggestion
	if err := row.Scan(
		&s.ID,
		&s.OriginalText,
		&s.ParaphrasedText,
		&s.CitationText,
		&s.SourceURL,
		&s.SourceTitle,
		&s.DocumentID,
		&s.CreatedAt,
		&s.OwnerKey,
	); err != nil {
		return Suggestion{}, err
	}
	return s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func collectSuggestions(rows *sql.Rows) ([]Suggestion, error) {
	var out []Suggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

var _ SuggestionsRepo = (*PGRepo)(nil)
