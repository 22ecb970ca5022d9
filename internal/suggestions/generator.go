package suggestions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"plagiarism-backend/internal/documents"
	"plagiarism-backend/internal/llm"
	"plagiarism-backend/internal/shared/metrics"
	"plagiarism-backend/internal/shared/telemetry"
)

const noSuggestionsWarning = "No suggestions could be generated. Please check your input text and matched sources."

// DocumentVerifier checks that a document exists and belongs to the caller.
type DocumentVerifier interface {
	Get(ctx context.Context, ownerKey string, id int64) (documents.Document, error)
}

// GenerateInput is one suggestion-generation request.
type GenerateInput struct {
	OwnerKey       string
	Text           string
	MatchedSources []MatchedSource
	DocumentID     int64
}

// Result is the outcome of a generation run. Warning is set when the request
// was well-formed but no suggestions were produced.
type Result struct {
	Suggestions []Suggestion
	Warning     string
}

// Generator runs the paraphrase/citation pipeline: flatten segments, one
// batched paraphrase call, one batched citation call, persist one suggestion
// per aligned segment.
type Generator struct {
	Chat llm.ChatClient
	Repo SuggestionsRepo
	Docs DocumentVerifier

	// now is overridable in tests; the citation prompt embeds the date.
	now func() time.Time
}

// NewGenerator constructs a Generator.
func NewGenerator(chat llm.ChatClient, repo SuggestionsRepo, docs DocumentVerifier) *Generator {
	return &Generator{
		Chat: chat,
		Repo: repo,
		Docs: docs,
		now:  time.Now,
	}
}

// Generate validates the request, invokes the model, and persists aligned
// suggestions. Rate-limit errors from the provider pass through unwrapped so
// callers can report retryability.
func (g *Generator) Generate(ctx context.Context, in GenerateInput) (Result, error) {
	if err := validateInput(in); err != nil {
		return Result{}, err
	}

	if g.Docs != nil {
		if _, err := g.Docs.Get(ctx, in.OwnerKey, in.DocumentID); err != nil {
			if errors.Is(err, documents.ErrNotFound) {
				return Result{}, fmt.Errorf("%w: document %d not found", ErrInvalidInput, in.DocumentID)
			}
			return Result{}, err
		}
	}

	combined, markers := flattenSegments(in.MatchedSources)
	if len(markers) == 0 {
		telemetry.Warn("no valid segments in generation request", map[string]any{
			"document_id": in.DocumentID,
		})
		return Result{Warning: noSuggestionsWarning}, nil
	}

	metrics.IncGenerationStarted()
	started := g.clock()()

	paraphrases, err := g.paraphraseSegments(ctx, combined, len(markers))
	if err != nil {
		if _, ok := llm.IsRateLimit(err); ok {
			metrics.IncGenerationRateLimited()
			return Result{}, err
		}
		metrics.IncGenerationFailed()
		return Result{}, err
	}
	if paraphrases == nil {
		// Model responded but its output could not be realigned. Valid input,
		// unusable output: soft failure.
		metrics.IncGenerationFailed()
		telemetry.Warn("paraphrase output could not be aligned", map[string]any{
			"document_id":   in.DocumentID,
			"segment_count": len(markers),
		})
		return Result{Warning: noSuggestionsWarning}, nil
	}

	citations := g.citeSources(ctx, in.MatchedSources, markers)

	created := g.persistSuggestions(ctx, in, markers, paraphrases, citations)

	metrics.ObserveGenerationDurationMs(float64(g.clock()().Sub(started).Milliseconds()))
	metrics.IncGenerationCompleted()

	result := Result{Suggestions: created}
	if len(created) == 0 {
		result.Warning = noSuggestionsWarning
	}
	telemetry.Info("suggestion generation finished", map[string]any{
		"document_id":      in.DocumentID,
		"segment_count":    len(markers),
		"suggestion_count": len(created),
	})
	return result, nil
}

func (g *Generator) clock() func() time.Time {
	if g.now != nil {
		return g.now
	}
	return time.Now
}

func validateInput(in GenerateInput) error {
	if isBlank(in.Text) {
		return fmt.Errorf("%w: missing required field: text", ErrInvalidInput)
	}
	if len(in.MatchedSources) == 0 {
		return fmt.Errorf("%w: missing required field: matched_sources", ErrInvalidInput)
	}
	if in.DocumentID <= 0 {
		return fmt.Errorf("%w: missing required field: document_id", ErrInvalidInput)
	}
	return nil
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

// paraphraseSegments issues the single batched paraphrase call. A nil slice
// with nil error means the response could not be split into enough pieces.
func (g *Generator) paraphraseSegments(ctx context.Context, combined string, count int) ([]string, error) {
	response, err := g.Chat.Complete(ctx, paraphraseSystem, buildParaphrasePrompt(combined, count))
	if err != nil {
		if _, ok := llm.IsRateLimit(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	pieces, ok := splitAligned(response, count)
	if !ok {
		return nil, nil
	}
	return pieces, nil
}

// citeSources issues one batched citation call for all distinct source URLs.
// Any failure falls back to a synthesized citation per source; citation
// generation never fails the operation.
func (g *Generator) citeSources(ctx context.Context, sources []MatchedSource, markers []segmentMarker) map[string]string {
	var distinct []citationSource
	seen := make(map[string]bool)
	for _, m := range markers {
		src := sources[m.SourceIndex]
		if seen[src.URL] {
			continue
		}
		seen[src.URL] = true
		distinct = append(distinct, citationSource{URL: src.URL, Title: src.Title})
	}

	citations := make(map[string]string, len(distinct))
	for _, src := range distinct {
		citations[src.URL] = fallbackCitation(src.URL)
	}

	response, err := g.Chat.Complete(ctx, citationSystem, buildCitationPrompt(distinct, g.clock()()))
	if err != nil {
		telemetry.Warn("citation generation failed, using fallback citations", map[string]any{
			"source_count": len(distinct),
			"err":          err.Error(),
		})
		return citations
	}

	pieces, ok := splitAligned(response, len(distinct))
	if !ok {
		telemetry.Warn("citation output could not be aligned, using fallback citations", map[string]any{
			"source_count": len(distinct),
		})
		return citations
	}

	for i, src := range distinct {
		citations[src.URL] = pieces[i]
	}
	return citations
}

// persistSuggestions creates one suggestion per aligned (segment, paraphrase)
// pair. A failed insert is logged and skipped, not fatal to the batch.
func (g *Generator) persistSuggestions(ctx context.Context, in GenerateInput, markers []segmentMarker, paraphrases []string, citations map[string]string) []Suggestion {
	n := len(markers)
	if len(paraphrases) < n {
		n = len(paraphrases)
	}

	created := make([]Suggestion, 0, n)
	for i := 0; i < n; i++ {
		src := in.MatchedSources[markers[i].SourceIndex]
		citation, ok := citations[src.URL]
		if !ok {
			citation = fallbackCitation(src.URL)
		}

		s := Suggestion{
			OriginalText:    markers[i].Text,
			ParaphrasedText: paraphrases[i],
			CitationText:    citation,
			SourceURL:       src.URL,
			SourceTitle:     src.Title,
			DocumentID:      in.DocumentID,
			CreatedAt:       g.clock()().UTC(),
			OwnerKey:        in.OwnerKey,
		}

		saved, err := g.Repo.Create(ctx, s)
		if err != nil {
			telemetry.Error("failed to persist suggestion", map[string]any{
				"document_id":   in.DocumentID,
				"segment_index": i,
				"err":           err.Error(),
			})
			continue
		}
		created = append(created, saved)
	}
	return created
}
