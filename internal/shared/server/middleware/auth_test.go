package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reached := false
	r := gin.New()
	r.Use(Auth("dev"))
	r.Handle(http.MethodOptions, "/api/v1/documents", func(c *gin.Context) {
		reached = true
		c.Status(http.StatusOK)
	})
	r.GET("/api/v1/documents", func(c *gin.Context) {
		reached = true
		c.Status(http.StatusOK)
	})
	return r, &reached
}

func TestAuthPreflightShortCircuits(t *testing.T) {
	r, reached := newAuthRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/v1/documents", nil))

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if *reached {
		t.Fatal("preflight must not reach route handlers")
	}
}

func TestAuthGuestHeaderSetsIdentity(t *testing.T) {
	r, reached := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	req.Header.Set("X-Guest-Id", "g1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || !*reached {
		t.Fatalf("expected guest request to pass, got %d", w.Code)
	}
}

func TestAuthMissingIdentityRejected(t *testing.T) {
	r, reached := newAuthRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if *reached {
		t.Fatal("handler must not run without identity")
	}
}
