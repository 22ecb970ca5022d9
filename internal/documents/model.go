package documents

import "time"

// Document represents an uploaded document and its extracted text.
type Document struct {
	ID               int64
	Title            string
	OriginalFilename string
	FileType         string
	ExtractedText    string
	OriginalityScore *float64
	StorageKey       string
	SizeBytes        int64
	OwnerID          *string
	OwnerKey         string
	UploadedAt       time.Time
}
