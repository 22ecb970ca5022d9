package suggestions

import "time"

// SuggestionResponse is the outward-facing representation of a suggestion.
type SuggestionResponse struct {
	ID              int64     `json:"id"`
	OriginalText    string    `json:"original_text"`
	ParaphrasedText string    `json:"paraphrased_text"`
	CitationText    string    `json:"citation_text"`
	SourceURL       string    `json:"source_url"`
	SourceTitle     string    `json:"source_title"`
	DocumentID      int64     `json:"document_id"`
	CreatedAt       time.Time `json:"created_at"`
}

func toResponse(s Suggestion) SuggestionResponse {
	return SuggestionResponse{
		ID:              s.ID,
		OriginalText:    s.OriginalText,
		ParaphrasedText: s.ParaphrasedText,
		CitationText:    s.CitationText,
		SourceURL:       s.SourceURL,
		SourceTitle:     s.SourceTitle,
		DocumentID:      s.DocumentID,
		CreatedAt:       s.CreatedAt,
	}
}

func toResponses(list []Suggestion) []SuggestionResponse {
	out := make([]SuggestionResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toResponse(s))
	}
	return out
}

// GenerateResponse is the body of a successful generate call.
type GenerateResponse struct {
	Suggestions      []SuggestionResponse `json:"suggestions"`
	RateLimited      bool                 `json:"rate_limited"`
	RateLimitMessage *string              `json:"rate_limit_message"`
	Warning          string               `json:"warning,omitempty"`
}
