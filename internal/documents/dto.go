package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	OriginalFilename string    `json:"original_filename"`
	FileType         string    `json:"file_type"`
	OriginalityScore *float64  `json:"originality_score"`
	SizeBytes        int64     `json:"size_bytes"`
	UploadedAt       time.Time `json:"uploaded_at"`
	HasExtractedText bool      `json:"has_extracted_text"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		ID:               doc.ID,
		Title:            doc.Title,
		OriginalFilename: doc.OriginalFilename,
		FileType:         doc.FileType,
		OriginalityScore: doc.OriginalityScore,
		SizeBytes:        doc.SizeBytes,
		UploadedAt:       doc.UploadedAt,
		HasExtractedText: doc.ExtractedText != "",
	}
}
