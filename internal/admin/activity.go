package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"plagiarism-backend/internal/shared/server/middleware"
	"plagiarism-backend/internal/shared/telemetry"
)

// ActivityLogger records successful write requests to the activity log.
// Read-only requests and auth endpoints are skipped to keep the log useful.
func ActivityLogger(logs LogsRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			return
		}
		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		actor := middleware.UserIDFromContext(c)
		if actor == "" {
			return
		}

		entry := ActivityLog{
			Actor:     actor,
			Action:    c.Request.Method + " " + c.FullPath(),
			Detail:    c.Request.URL.Path,
			CreatedAt: time.Now().UTC(),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := logs.Record(ctx, entry); err != nil {
			telemetry.Warn("failed to record activity", map[string]any{
				"action": entry.Action,
				"err":    err.Error(),
			})
		}
	}
}
