package documents

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"plagiarism-backend/internal/extract"
	"plagiarism-backend/internal/shared/metrics"
	"plagiarism-backend/internal/shared/storage/object"
	"plagiarism-backend/internal/shared/telemetry"
)

// SuggestionsPurger removes suggestions attached to a document. The Postgres
// schema cascades on delete; the in-memory repos need an explicit purge.
type SuggestionsPurger interface {
	DeleteByDocument(ctx context.Context, documentID int64) error
}

// Service contains business logic for documents.
type Service struct {
	Store  object.ObjectStore
	Repo   DocumentsRepo
	Purger SuggestionsPurger
}

// Upload extracts text from the file, archives the original to object
// storage, and records the document. Extraction happens entirely in memory.
func (s *Service) Upload(ctx context.Context, ownerKey string, ownerID *string, title, fileName string, r io.Reader) (Document, error) {
	if ownerKey == "" {
		return Document{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	if fileName == "" {
		return Document{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}

	fileType, err := extract.FileTypeFromName(fileName)
	if err != nil {
		return Document{}, ErrUnsupportedFormat
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return Document{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}

	text, err := extract.Text(data, fileType)
	if err != nil {
		telemetry.Error("document text extraction failed", map[string]any{
			"file_name": fileName,
			"file_type": fileType,
			"err":       err.Error(),
		})
		return Document{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	storageKey, size, err := s.Store.Save(ctx, ownerKey, fileName, bytes.NewReader(data))
	if err != nil {
		return Document{}, fmt.Errorf("archive upload: %w", err)
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = strings.TrimSuffix(fileName, filepath.Ext(fileName))
	}

	doc := Document{
		Title:            title,
		OriginalFilename: fileName,
		FileType:         fileType,
		ExtractedText:    text,
		StorageKey:       storageKey,
		SizeBytes:        size,
		OwnerID:          ownerID,
		OwnerKey:         ownerKey,
		UploadedAt:       time.Now().UTC(),
	}

	created, err := s.Repo.Create(ctx, doc)
	if err != nil {
		if delErr := s.Store.Delete(ctx, storageKey); delErr != nil {
			telemetry.Error("orphaned upload cleanup failed", map[string]any{
				"storage_key": storageKey,
				"err":         delErr.Error(),
			})
		}
		return Document{}, err
	}

	metrics.IncDocumentUploaded()
	telemetry.Info("document uploaded", map[string]any{
		"document_id": created.ID,
		"file_type":   created.FileType,
		"size_bytes":  created.SizeBytes,
	})
	return created, nil
}

// Get returns a document owned by the caller.
func (s *Service) Get(ctx context.Context, ownerKey string, id int64) (Document, error) {
	if ownerKey == "" {
		return Document{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, ownerKey, id)
}

// List returns the caller's documents, newest first.
func (s *Service) List(ctx context.Context, ownerKey string, limit, offset int) ([]Document, error) {
	if ownerKey == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	return s.Repo.ListByOwner(ctx, ownerKey, limit, offset)
}

// Delete removes a document, its suggestions, and the archived original.
func (s *Service) Delete(ctx context.Context, ownerKey string, id int64) error {
	doc, err := s.Repo.GetByID(ctx, ownerKey, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Delete(ctx, ownerKey, id); err != nil {
		return err
	}

	if s.Purger != nil {
		if err := s.Purger.DeleteByDocument(ctx, id); err != nil {
			telemetry.Error("suggestion purge failed", map[string]any{
				"document_id": id,
				"err":         err.Error(),
			})
		}
	}

	if doc.StorageKey != "" {
		if err := s.Store.Delete(ctx, doc.StorageKey); err != nil {
			telemetry.Error("stored object delete failed", map[string]any{
				"document_id": id,
				"storage_key": doc.StorageKey,
				"err":         err.Error(),
			})
		}
	}

	telemetry.Info("document deleted", map[string]any{"document_id": id})
	return nil
}

// UpdateScore records the originality score reported by the checker.
func (s *Service) UpdateScore(ctx context.Context, ownerKey string, id int64, score float64) (Document, error) {
	if score < 0 || score > 100 {
		return Document{}, fmt.Errorf("%w: originality score must be between 0 and 100", ErrInvalidInput)
	}
	if err := s.Repo.UpdateScore(ctx, ownerKey, id, score); err != nil {
		return Document{}, err
	}
	return s.Repo.GetByID(ctx, ownerKey, id)
}
