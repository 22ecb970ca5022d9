package suggestions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"plagiarism-backend/internal/documents"
	"plagiarism-backend/internal/llm"
)

type chatCall struct {
	System string
	User   string
}

type fakeChat struct {
	calls     []chatCall
	responses []string
	errs      []error
}

func (f *fakeChat) Complete(ctx context.Context, system, user string) (string, error) {
	idx := len(f.calls)
	f.calls = append(f.calls, chatCall{System: system, User: user})
	var err error
	if idx < len(f.errs) {
		err = f.errs[idx]
	}
	if err != nil {
		return "", err
	}
	if idx < len(f.responses) {
		return f.responses[idx], nil
	}
	return "", errors.New("unexpected call")
}

type fakeDocs struct {
	known map[int64]string // id -> ownerKey
}

func (f *fakeDocs) Get(ctx context.Context, ownerKey string, id int64) (documents.Document, error) {
	if owner, ok := f.known[id]; ok && owner == ownerKey {
		return documents.Document{ID: id, OwnerKey: ownerKey}, nil
	}
	return documents.Document{}, documents.ErrNotFound
}

type failingRepo struct {
	*MemoryRepo
	failOn int
	calls  int
}

func (r *failingRepo) Create(ctx context.Context, s Suggestion) (Suggestion, error) {
	r.calls++
	if r.calls == r.failOn {
		return Suggestion{}, errors.New("insert failed")
	}
	return r.MemoryRepo.Create(ctx, s)
}

func newTestGenerator(chat *fakeChat) (*Generator, *MemoryRepo) {
	repo := NewMemoryRepo()
	gen := NewGenerator(chat, repo, &fakeDocs{known: map[int64]string{42: "guest:abc"}})
	gen.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return gen, repo
}

func singleSourceInput() GenerateInput {
	return GenerateInput{
		OwnerKey: "guest:abc",
		Text:     "The sky is blue and vast.",
		MatchedSources: []MatchedSource{
			{URL: "https://x.com", Title: "X", MatchedText: StringList{"The sky is blue"}},
		},
		DocumentID: 42,
	}
}

func TestGenerateValidationSkipsNetwork(t *testing.T) {
	chat := &fakeChat{}
	gen, _ := newTestGenerator(chat)

	cases := []GenerateInput{
		{OwnerKey: "guest:abc", Text: "   ", MatchedSources: singleSourceInput().MatchedSources, DocumentID: 42},
		{OwnerKey: "guest:abc", Text: "some text", MatchedSources: nil, DocumentID: 42},
		{OwnerKey: "guest:abc", Text: "some text", MatchedSources: singleSourceInput().MatchedSources, DocumentID: 0},
	}
	for i, in := range cases {
		if _, err := gen.Generate(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
	if len(chat.calls) != 0 {
		t.Fatalf("expected zero network calls, got %d", len(chat.calls))
	}
}

func TestGenerateUnknownDocumentRejected(t *testing.T) {
	chat := &fakeChat{}
	gen, _ := newTestGenerator(chat)

	in := singleSourceInput()
	in.DocumentID = 999
	if _, err := gen.Generate(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown document, got %v", err)
	}
	if len(chat.calls) != 0 {
		t.Fatalf("expected zero network calls, got %d", len(chat.calls))
	}
}

func TestGenerateSingleSegmentEndToEnd(t *testing.T) {
	chat := &fakeChat{responses: []string{
		"A vast azure expanse stretches overhead",
		"X. (2025). Retrieved June 1, 2025, from https://x.com",
	}}
	gen, repo := newTestGenerator(chat)

	result, err := gen.Generate(context.Background(), singleSourceInput())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Warning != "" {
		t.Fatalf("unexpected warning: %q", result.Warning)
	}
	if len(result.Suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(result.Suggestions))
	}

	s := result.Suggestions[0]
	if s.OriginalText != "The sky is blue" {
		t.Fatalf("original text mismatch: %q", s.OriginalText)
	}
	if s.ParaphrasedText == "" {
		t.Fatal("expected non-empty paraphrase")
	}
	if s.SourceURL != "https://x.com" || s.SourceTitle != "X" {
		t.Fatalf("source mismatch: %q / %q", s.SourceURL, s.SourceTitle)
	}
	if s.DocumentID != 42 {
		t.Fatalf("document id mismatch: %d", s.DocumentID)
	}
	if !strings.Contains(s.CitationText, "https://x.com") {
		t.Fatalf("citation missing url: %q", s.CitationText)
	}

	if len(chat.calls) != 2 {
		t.Fatalf("expected exactly 2 model calls, got %d", len(chat.calls))
	}
	persisted, err := repo.ListByDocument(context.Background(), 42)
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	if len(persisted) != 1 {
		t.Fatalf("expected 1 persisted suggestion, got %d", len(persisted))
	}
}

func TestGenerateBatchesSegmentsInOneCall(t *testing.T) {
	chat := &fakeChat{responses: []string{
		"rewrite one\n---\nrewrite two\n---\nrewrite three",
		"cite A\n---\ncite B",
	}}
	gen, _ := newTestGenerator(chat)

	in := GenerateInput{
		OwnerKey: "guest:abc",
		Text:     "full document text",
		MatchedSources: []MatchedSource{
			{URL: "https://a.com", Title: "A", MatchedText: StringList{"segment one", "segment two"}},
			{URL: "https://b.com", Title: "B", MatchedText: StringList{"segment three"}},
		},
		DocumentID: 42,
	}

	result, err := gen.Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(result.Suggestions))
	}
	if len(chat.calls) != 2 {
		t.Fatalf("expected 2 model calls total, got %d", len(chat.calls))
	}

	// All segments travel in one paraphrase request, in encounter order.
	prompt := chat.calls[0].User
	first := strings.Index(prompt, "segment one")
	second := strings.Index(prompt, "segment two")
	third := strings.Index(prompt, "segment three")
	if first < 0 || second < first || third < second {
		t.Fatalf("segments missing or out of order in prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "segment one\n---\nsegment two") {
		t.Fatalf("segments not delimiter-joined in prompt:\n%s", prompt)
	}

	// Paraphrases align positionally.
	if result.Suggestions[0].ParaphrasedText != "rewrite one" ||
		result.Suggestions[2].ParaphrasedText != "rewrite three" {
		t.Fatalf("paraphrase alignment broken: %+v", result.Suggestions)
	}
	// Per-source citations.
	if result.Suggestions[0].CitationText != "cite A" || result.Suggestions[2].CitationText != "cite B" {
		t.Fatalf("citation mapping broken: %q / %q",
			result.Suggestions[0].CitationText, result.Suggestions[2].CitationText)
	}
}

func TestGenerateFallbackSeparatorAlignment(t *testing.T) {
	chat := &fakeChat{responses: []string{
		"rewrite one --- rewrite two --- extra trailing commentary",
		"cite A",
	}}
	gen, _ := newTestGenerator(chat)

	in := GenerateInput{
		OwnerKey: "guest:abc",
		Text:     "text",
		MatchedSources: []MatchedSource{
			{URL: "https://a.com", Title: "A", MatchedText: StringList{"one", "two"}},
		},
		DocumentID: 42,
	}

	result, err := gen.Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Suggestions) != 2 {
		t.Fatalf("expected 2 suggestions after truncation, got %d", len(result.Suggestions))
	}
	if result.Suggestions[0].ParaphrasedText != "rewrite one" || result.Suggestions[1].ParaphrasedText != "rewrite two" {
		t.Fatalf("fallback alignment broken: %+v", result.Suggestions)
	}
}

func TestGenerateUnalignableOutputSoftFails(t *testing.T) {
	chat := &fakeChat{responses: []string{
		"one contiguous blob that cannot be split",
	}}
	gen, repo := newTestGenerator(chat)

	in := GenerateInput{
		OwnerKey: "guest:abc",
		Text:     "text",
		MatchedSources: []MatchedSource{
			{URL: "https://a.com", Title: "A", MatchedText: StringList{"one", "two", "three"}},
		},
		DocumentID: 42,
	}

	result, err := gen.Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("expected soft failure, got error: %v", err)
	}
	if len(result.Suggestions) != 0 {
		t.Fatalf("expected empty suggestion list, got %d", len(result.Suggestions))
	}
	if result.Warning == "" {
		t.Fatal("expected warning for unalignable output")
	}
	persisted, _ := repo.ListByDocument(context.Background(), 42)
	if len(persisted) != 0 {
		t.Fatalf("expected zero persisted suggestions, got %d", len(persisted))
	}
}

func TestGenerateAllBlankSegmentsYieldsWarning(t *testing.T) {
	chat := &fakeChat{}
	gen, _ := newTestGenerator(chat)

	in := GenerateInput{
		OwnerKey: "guest:abc",
		Text:     "text",
		MatchedSources: []MatchedSource{
			{URL: "https://a.com", Title: "A", MatchedText: StringList{"  ", ""}},
		},
		DocumentID: 42,
	}

	result, err := gen.Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Suggestions) != 0 || result.Warning == "" {
		t.Fatalf("expected empty result with warning, got %+v", result)
	}
	if len(chat.calls) != 0 {
		t.Fatalf("expected zero network calls, got %d", len(chat.calls))
	}
}

func TestGenerateCitationFallback(t *testing.T) {
	chat := &fakeChat{
		responses: []string{"a rewrite", ""},
		errs:      []error{nil, errors.New("citation call failed")},
	}
	gen, _ := newTestGenerator(chat)

	result, err := gen.Generate(context.Background(), singleSourceInput())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(result.Suggestions))
	}
	if result.Suggestions[0].CitationText != "Retrieved from https://x.com" {
		t.Fatalf("expected fallback citation, got %q", result.Suggestions[0].CitationText)
	}
}

func TestGenerateCitationMisalignmentFallsBack(t *testing.T) {
	chat := &fakeChat{responses: []string{
		"rewrite one\n---\nrewrite two",
		"a single citation blob for two sources with no separator",
	}}
	gen, _ := newTestGenerator(chat)

	in := GenerateInput{
		OwnerKey: "guest:abc",
		Text:     "text",
		MatchedSources: []MatchedSource{
			{URL: "https://a.com", Title: "A", MatchedText: StringList{"one"}},
			{URL: "https://b.com", Title: "B", MatchedText: StringList{"two"}},
		},
		DocumentID: 42,
	}

	result, err := gen.Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Suggestions[0].CitationText != "Retrieved from https://a.com" ||
		result.Suggestions[1].CitationText != "Retrieved from https://b.com" {
		t.Fatalf("expected fallback citations, got %+v", result.Suggestions)
	}
}

func TestGenerateCitationDeduplicatesSources(t *testing.T) {
	chat := &fakeChat{responses: []string{
		"rewrite one\n---\nrewrite two",
		"cite A",
	}}
	gen, _ := newTestGenerator(chat)

	in := GenerateInput{
		OwnerKey: "guest:abc",
		Text:     "text",
		MatchedSources: []MatchedSource{
			{URL: "https://a.com", Title: "A", MatchedText: StringList{"one", "two"}},
		},
		DocumentID: 42,
	}

	result, err := gen.Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	citationPrompt := chat.calls[1].User
	if strings.Count(citationPrompt, "https://a.com") != 1 {
		t.Fatalf("expected URL to appear once in citation prompt:\n%s", citationPrompt)
	}
	for _, s := range result.Suggestions {
		if s.CitationText != "cite A" {
			t.Fatalf("expected shared citation, got %q", s.CitationText)
		}
	}
}

func TestGenerateRateLimitPassthrough(t *testing.T) {
	rl := &llm.RateLimitError{Message: "rate limit exceeded", ResetAt: time.Now().Add(time.Hour)}
	chat := &fakeChat{errs: []error{rl}}
	gen, _ := newTestGenerator(chat)

	_, err := gen.Generate(context.Background(), singleSourceInput())
	got, ok := llm.IsRateLimit(err)
	if !ok {
		t.Fatalf("expected rate-limit error, got %v", err)
	}
	if got.ResetAt != rl.ResetAt {
		t.Fatalf("reset timestamp lost: %v", got.ResetAt)
	}
}

func TestGenerateProviderErrorIsGenerationFailure(t *testing.T) {
	chat := &fakeChat{errs: []error{fmt.Errorf("connection refused")}}
	gen, _ := newTestGenerator(chat)

	_, err := gen.Generate(context.Background(), singleSourceInput())
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestGeneratePersistFailureSkipsRow(t *testing.T) {
	chat := &fakeChat{responses: []string{
		"rewrite one\n---\nrewrite two",
		"cite A",
	}}
	repo := &failingRepo{MemoryRepo: NewMemoryRepo(), failOn: 1}
	gen := NewGenerator(chat, repo, &fakeDocs{known: map[int64]string{42: "guest:abc"}})

	in := GenerateInput{
		OwnerKey: "guest:abc",
		Text:     "text",
		MatchedSources: []MatchedSource{
			{URL: "https://a.com", Title: "A", MatchedText: StringList{"one", "two"}},
		},
		DocumentID: 42,
	}

	result, err := gen.Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Suggestions) != 1 {
		t.Fatalf("expected 1 surviving suggestion, got %d", len(result.Suggestions))
	}
	if result.Suggestions[0].ParaphrasedText != "rewrite two" {
		t.Fatalf("wrong row survived: %+v", result.Suggestions[0])
	}
}
