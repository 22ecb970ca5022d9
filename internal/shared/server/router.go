package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"plagiarism-backend/internal/admin"
	authgoogle "plagiarism-backend/internal/auth"
	"plagiarism-backend/internal/documents"
	"plagiarism-backend/internal/shared/metrics"
	"plagiarism-backend/internal/shared/server/middleware"
	"plagiarism-backend/internal/suggestions"
	"plagiarism-backend/internal/users"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Env              string
	CORSAllowOrigins []string

	Users       *users.Handler
	Google      *authgoogle.GoogleService
	Documents   *documents.Handler
	Suggestions *suggestions.Handler
	Admin       *admin.Handler

	// ActivityLogs feeds the write-audit middleware. Optional.
	ActivityLogs admin.LogsRepo
}

// NewRouter builds the gin engine with the full middleware chain and all
// route groups mounted under /api/v1.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(deps.CORSAllowOrigins))
	r.Use(middleware.Auth(deps.Env))
	r.Use(middleware.RateLimit(generationRateLimit()))
	if deps.ActivityLogs != nil {
		r.Use(admin.ActivityLogger(deps.ActivityLogs))
	}

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := api.Group("/auth")
	if deps.Users != nil {
		deps.Users.RegisterAuthRoutes(authGroup)
	}
	if deps.Google != nil {
		deps.Google.RegisterRoutes(authGroup)
	}

	if deps.Users != nil {
		deps.Users.RegisterRoutes(api)
	}
	if deps.Documents != nil {
		deps.Documents.RegisterRoutes(api)
	}
	if deps.Suggestions != nil {
		deps.Suggestions.RegisterRoutes(api)
	}

	if deps.Admin != nil {
		adminGroup := api.Group("/admin")
		adminGroup.Use(middleware.RequireAdmin())
		deps.Admin.RegisterRoutes(adminGroup)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

// generationRateLimit throttles the LLM-backed endpoint per identity. Other
// routes pass through unlimited; upstream quota errors surface as 429s with
// their own reset message.
func generationRateLimit() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"GENERATE": {Rate: 0.5, Burst: 3},
		},
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/suggestions/generate" {
				return "GENERATE"
			}
			return ""
		},
	}
}
