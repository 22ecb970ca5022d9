package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, title, original_filename, file_type, extracted_text, originality_score, storage_key, size_bytes, owner_id, owner_key, uploaded_at`

// Create inserts a new document and returns it with the assigned ID.
func (r *PGRepo) Create(ctx context.Context, doc Document) (Document, error) {
	const query = `
INSERT INTO documents (
    title,
    original_filename,
    file_type,
    extracted_text,
    originality_score,
    storage_key,
    size_bytes,
    owner_id,
    owner_key,
    uploaded_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id`

	var ownerID sql.NullString
	if doc.OwnerID != nil {
		ownerID = sql.NullString{String: *doc.OwnerID, Valid: true}
	}
	var score sql.NullFloat64
	if doc.OriginalityScore != nil {
		score = sql.NullFloat64{Float64: *doc.OriginalityScore, Valid: true}
	}

	err := r.DB.QueryRowContext(
		ctx,
		query,
		doc.Title,
		doc.OriginalFilename,
		doc.FileType,
		doc.ExtractedText,
		score,
		doc.StorageKey,
		doc.SizeBytes,
		ownerID,
		doc.OwnerKey,
		doc.UploadedAt,
	).Scan(&doc.ID)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// GetByID fetches a document scoped to its owner.
func (r *PGRepo) GetByID(ctx context.Context, ownerKey string, id int64) (Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE owner_key = $1 AND id = $2
LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, ownerKey, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByOwner lists documents newest-first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerKey string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE owner_key = $1
ORDER BY uploaded_at DESC, id DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, ownerKey, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Delete removes a document. Suggestions rows go with it via ON DELETE CASCADE.
func (r *PGRepo) Delete(ctx context.Context, ownerKey string, id int64) error {
	const query = `DELETE FROM documents WHERE owner_key = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, ownerKey, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateScore sets the originality score for a document.
func (r *PGRepo) UpdateScore(ctx context.Context, ownerKey string, id int64, score float64) error {
	const query = `UPDATE documents SET originality_score = $1 WHERE owner_key = $2 AND id = $3`
	res, err := r.DB.ExecContext(ctx, query, score, ownerKey, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var score sql.NullFloat64
	var ownerID sql.NullString
	if err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.OriginalFilename,
		&doc.FileType,
		&doc.ExtractedText,
		&score,
		&doc.StorageKey,
		&doc.SizeBytes,
		&ownerID,
		&doc.OwnerKey,
		&doc.UploadedAt,
	); err != nil {
		return Document{}, err
	}
	if score.Valid {
		doc.OriginalityScore = &score.Float64
	}
	if ownerID.Valid {
		doc.OwnerID = &ownerID.String
	}
	return doc, nil
}

var _ DocumentsRepo = (*PGRepo)(nil)
