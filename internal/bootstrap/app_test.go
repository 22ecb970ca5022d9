package bootstrap

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"plagiarism-backend/internal/shared/config"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app, err := Build(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:              "dev",
		Port:             "0",
		CORSAllowOrigin:  []string{"http://localhost:3000"},
		ObjectStoreType:  "local",
		LocalStoreDir:    t.TempDir(),
		OTPExpiryMinutes: 15,
	}
}

func docxPayload(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		fmt.Fprintf(&doc, `<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, p)
	}
	doc.WriteString(`</w:body></w:document>`)
	if _, err := w.Write([]byte(doc.String())); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func uploadRequest(t *testing.T, payload []byte, fileName, title string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(payload); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if title != "" {
		if err := mw.WriteField("title", title); err != nil {
			t.Fatalf("write title: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMissingIdentityRejected(t *testing.T) {
	app := newTestApp(t)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGuestUploadAndListFlow(t *testing.T) {
	app := newTestApp(t)

	req := uploadRequest(t, docxPayload(t, "The sky is blue and vast."), "essay.docx", "Essay")
	req.Header.Set("X-Guest-Id", "g1")
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.ID == 0 || created.Title != "Essay" {
		t.Fatalf("unexpected document: %+v", created)
	}

	// The uploader sees the document; another guest does not.
	listReq := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	listReq.Header.Set("X-Guest-Id", "g1")
	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, listReq)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Essay") {
		t.Fatalf("expected uploaded document in list: %s", w.Body.String())
	}

	otherReq := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/documents/%d", created.ID), nil)
	otherReq.Header.Set("X-Guest-Id", "g2")
	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, otherReq)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for other guest, got %d: %s", w.Code, w.Body.String())
	}

	textReq := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/documents/%d/extracted_text", created.ID), nil)
	textReq.Header.Set("X-Guest-Id", "g1")
	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, textReq)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "The sky is blue and vast.") {
		t.Fatalf("expected extracted text in response: %s", w.Body.String())
	}
}

func TestGenerateWithoutProviderFails(t *testing.T) {
	app := newTestApp(t)

	req := uploadRequest(t, docxPayload(t, "The sky is blue and vast."), "essay.docx", "")
	req.Header.Set("X-Guest-Id", "g1")
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload failed: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	payload := fmt.Sprintf(`{
		"text": "The sky is blue and vast.",
		"document_id": %d,
		"matched_sources": [{"url": "https://example.com", "title": "Example", "matchedText": ["The sky is blue"]}]
	}`, created.ID)
	genReq := httptest.NewRequest(http.MethodPost, "/api/v1/suggestions/generate", strings.NewReader(payload))
	genReq.Header.Set("Content-Type", "application/json")
	genReq.Header.Set("X-Guest-Id", "g1")
	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, genReq)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 without a configured provider, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminRoutesForbiddenForGuests(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/analytics", nil)
	req.Header.Set("X-Guest-Id", "g1")
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}
