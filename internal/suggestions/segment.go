package suggestions

import (
	"encoding/json"
	"strings"

	"plagiarism-backend/internal/shared/telemetry"
)

// segmentDelimiter joins segments in the combined prompt text. The model is
// asked to echo it back between rewritten segments.
const segmentDelimiter = "\n---\n"

// StringList decodes a JSON value that is either an array or a single scalar
// string, coercing the scalar into a one-element list. Non-string array
// elements are dropped with a warning rather than failing the whole request.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err == nil {
		list := make(StringList, 0, len(raw))
		for _, elem := range raw {
			var str string
			if err := json.Unmarshal(elem, &str); err != nil {
				telemetry.Warn("skipping non-string matched segment", map[string]any{
					"value": string(elem),
				})
				continue
			}
			list = append(list, str)
		}
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*s = StringList{single}
	return nil
}

// MatchedSource is an external finding that part of a document overlaps with
// content at a URL. Supplied per request, never persisted as its own entity.
type MatchedSource struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	MatchedText StringList `json:"matchedText"`
}

// segmentMarker records where one segment landed in the combined string and
// which source it came from.
type segmentMarker struct {
	Start       int
	Length      int
	SourceIndex int
	Text        string
}

// flattenSegments concatenates all non-blank segments into one combined
// string separated by segmentDelimiter, recording a positional marker per
// segment in encounter order. Blank segments are skipped with a warning.
func flattenSegments(sources []MatchedSource) (string, []segmentMarker) {
	var combined strings.Builder
	var markers []segmentMarker

	for srcIdx, source := range sources {
		for _, segment := range source.MatchedText {
			trimmed := strings.TrimSpace(segment)
			if trimmed == "" {
				telemetry.Warn("skipping blank matched segment", map[string]any{
					"source_url": source.URL,
				})
				continue
			}
			if len(markers) > 0 {
				combined.WriteString(segmentDelimiter)
			}
			markers = append(markers, segmentMarker{
				Start:       combined.Len(),
				Length:      len(trimmed),
				SourceIndex: srcIdx,
				Text:        trimmed,
			})
			combined.WriteString(trimmed)
		}
	}

	return combined.String(), markers
}

// splitAligned recovers at least want non-empty pieces from a free-text model
// response by trying an ordered list of candidate separators. Extra trailing
// pieces are truncated. Returns false when no candidate yields enough pieces.
func splitAligned(response string, want int) ([]string, bool) {
	if want <= 0 {
		return nil, false
	}
	candidates := []string{"\n---\n", "\n\n---\n\n", "---", "\n\n"}
	for _, sep := range candidates {
		parts := strings.Split(response, sep)
		var pieces []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				pieces = append(pieces, trimmed)
			}
		}
		if len(pieces) >= want {
			return pieces[:want], true
		}
	}
	return nil, false
}
