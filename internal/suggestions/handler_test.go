package suggestions

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"plagiarism-backend/internal/llm"
)

func newTestRouter(t *testing.T, chat *fakeChat) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := NewMemoryRepo()
	docs := &fakeDocs{known: map[int64]string{42: "guest:abc"}}
	gen := NewGenerator(chat, repo, docs)
	handler := NewHandler(gen, repo, docs)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "guest:abc")
		c.Next()
	})
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return router
}

func postGenerate(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/suggestions/generate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestGenerateEndpointSuccess(t *testing.T) {
	chat := &fakeChat{responses: []string{
		"a rewritten segment",
		"X. (2025). Retrieved from https://x.com",
	}}
	router := newTestRouter(t, chat)

	resp := postGenerate(t, router, map[string]any{
		"text": "The sky is blue and vast.",
		"matched_sources": []map[string]any{
			{"url": "https://x.com", "title": "X", "matchedText": []string{"The sky is blue"}},
		},
		"document_id": 42,
	})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.RateLimited {
		t.Fatal("rate_limited should be false")
	}
	if body.RateLimitMessage != nil {
		t.Fatalf("rate_limit_message should be null, got %q", *body.RateLimitMessage)
	}
	if len(body.Suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(body.Suggestions))
	}
	if body.Suggestions[0].OriginalText != "The sky is blue" {
		t.Fatalf("original text mismatch: %q", body.Suggestions[0].OriginalText)
	}
}

func TestGenerateEndpointScalarMatchedText(t *testing.T) {
	chat := &fakeChat{responses: []string{"a rewrite", "a citation"}}
	router := newTestRouter(t, chat)

	resp := postGenerate(t, router, map[string]any{
		"text": "some text",
		"matched_sources": []map[string]any{
			{"url": "https://x.com", "title": "X", "matchedText": "one scalar segment"},
		},
		"document_id": 42,
	})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestGenerateEndpointMixedMatchedText(t *testing.T) {
	chat := &fakeChat{responses: []string{"a rewrite", "a citation"}}
	router := newTestRouter(t, chat)

	resp := postGenerate(t, router, map[string]any{
		"text": "some text",
		"matched_sources": []map[string]any{
			{"url": "https://x.com", "title": "X", "matchedText": []any{"keep me", 42}},
		},
		"document_id": 42,
	})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with surviving segment, got %d: %s", resp.Code, resp.Body.String())
	}
	var body GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Suggestions) != 1 || body.Suggestions[0].OriginalText != "keep me" {
		t.Fatalf("expected the string segment to survive, got %+v", body.Suggestions)
	}
}

func TestGenerateEndpointMissingFields(t *testing.T) {
	chat := &fakeChat{}
	router := newTestRouter(t, chat)

	cases := []map[string]any{
		{"matched_sources": []map[string]any{{"url": "u", "title": "t", "matchedText": []string{"x"}}}, "document_id": 42},
		{"text": "some text", "matched_sources": []map[string]any{}, "document_id": 42},
		{"text": "some text", "matched_sources": []map[string]any{{"url": "u", "title": "t", "matchedText": []string{"x"}}}},
	}
	for i, body := range cases {
		resp := postGenerate(t, router, body)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("case %d: expected 400, got %d: %s", i, resp.Code, resp.Body.String())
		}
	}
	if len(chat.calls) != 0 {
		t.Fatalf("expected zero model calls for invalid requests, got %d", len(chat.calls))
	}
}

func TestGenerateEndpointRateLimited(t *testing.T) {
	reset := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	chat := &fakeChat{errs: []error{&llm.RateLimitError{Message: "rate limit exceeded", ResetAt: reset}}}
	router := newTestRouter(t, chat)

	resp := postGenerate(t, router, map[string]any{
		"text": "some text",
		"matched_sources": []map[string]any{
			{"url": "https://x.com", "title": "X", "matchedText": []string{"seg"}},
		},
		"document_id": 42,
	})

	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d: %s", resp.Code, resp.Body.String())
	}

	var body GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.RateLimited {
		t.Fatal("expected rate_limited true")
	}
	if body.RateLimitMessage == nil || *body.RateLimitMessage == "" {
		t.Fatal("expected human-readable rate limit message")
	}
}

func TestGenerateEndpointUnprocessable(t *testing.T) {
	chat := &fakeChat{errs: []error{context.DeadlineExceeded}}
	router := newTestRouter(t, chat)

	resp := postGenerate(t, router, map[string]any{
		"text": "some text",
		"matched_sources": []map[string]any{
			{"url": "https://x.com", "title": "X", "matchedText": []string{"seg"}},
		},
		"document_id": 42,
	})

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestGenerateEndpointWarningOnEmptyResult(t *testing.T) {
	chat := &fakeChat{responses: []string{"unsplittable blob"}}
	router := newTestRouter(t, chat)

	resp := postGenerate(t, router, map[string]any{
		"text": "some text",
		"matched_sources": []map[string]any{
			{"url": "https://x.com", "title": "X", "matchedText": []string{"one", "two", "three"}},
		},
		"document_id": 42,
	})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Suggestions) != 0 {
		t.Fatalf("expected empty suggestions, got %d", len(body.Suggestions))
	}
	if body.Warning == "" {
		t.Fatal("expected warning field on empty result")
	}
}

func TestListByDocumentScopedToOwner(t *testing.T) {
	chat := &fakeChat{responses: []string{"rewrite", "cite"}}
	router := newTestRouter(t, chat)

	resp := postGenerate(t, router, map[string]any{
		"text": "some text",
		"matched_sources": []map[string]any{
			{"url": "https://x.com", "title": "X", "matchedText": []string{"seg"}},
		},
		"document_id": 42,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("generate failed: %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/42/suggestions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Suggestions []SuggestionResponse `json:"suggestions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(body.Suggestions))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/documents/999/suggestions", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown document, got %d", rec.Code)
	}
}
