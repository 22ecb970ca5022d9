package suggestions

import "time"

// Suggestion pairs one plagiarized segment with its paraphrase and citation.
type Suggestion struct {
	ID              int64
	OriginalText    string
	ParaphrasedText string
	CitationText    string
	SourceURL       string
	SourceTitle     string
	DocumentID      int64
	CreatedAt       time.Time

	// OwnerKey is derived from the owning document, not stored on the
	// suggestions table itself.
	OwnerKey string
}
