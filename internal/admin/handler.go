package admin

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"plagiarism-backend/internal/shared/server/middleware"
	"plagiarism-backend/internal/shared/server/respond"
	"plagiarism-backend/internal/shared/telemetry"
	"plagiarism-backend/internal/users"
)

// Handler serves the admin dashboard API.
type Handler struct {
	Logs      LogsRepo
	Settings  SettingsRepo
	Analytics AnalyticsRepo
	Users     *users.Service
}

// NewHandler constructs a Handler.
func NewHandler(logs LogsRepo, settings SettingsRepo, analytics AnalyticsRepo, usersSvc *users.Service) *Handler {
	return &Handler{Logs: logs, Settings: settings, Analytics: analytics, Users: usersSvc}
}

// RegisterRoutes attaches admin routes. Callers guard the group with
// middleware.RequireAdmin.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/analytics", h.analytics)
	rg.GET("/logs", h.listLogs)
	rg.GET("/settings", h.listSettings)
	rg.PUT("/settings/:key", h.putSetting)
	rg.GET("/users", h.listUsers)
}

func (h *Handler) analytics(c *gin.Context) {
	snapshot, err := h.Analytics.Snapshot(c.Request.Context())
	if err != nil {
		telemetry.Error("analytics snapshot failed", map[string]any{"err": err.Error()})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to compute analytics", nil)
		return
	}
	if snapshot.UploadsPerDay == nil {
		snapshot.UploadsPerDay = []DayCount{}
	}
	if snapshot.FileTypeCounts == nil {
		snapshot.FileTypeCounts = map[string]int64{}
	}
	respond.JSON(c, http.StatusOK, snapshot)
}

func (h *Handler) listLogs(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	logs, err := h.Logs.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list logs", nil)
		return
	}
	if logs == nil {
		logs = []ActivityLog{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"logs": logs})
}

func (h *Handler) listSettings(c *gin.Context) {
	settings, err := h.Settings.All(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list settings", nil)
		return
	}
	if settings == nil {
		settings = []Setting{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"settings": settings})
}

type putSettingRequest struct {
	Value *string `json:"value"`
}

func (h *Handler) putSetting(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "setting key is required", nil)
		return
	}

	var req putSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "value is required", nil)
		return
	}

	setting, err := h.Settings.Set(c.Request.Context(), key, *req.Value)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save setting", nil)
		return
	}

	if err := h.Logs.Record(c.Request.Context(), ActivityLog{
		Actor:  middleware.UserIDFromContext(c),
		Action: "settings.update",
		Detail: key,
	}); err != nil {
		telemetry.Warn("failed to record settings change", map[string]any{"err": err.Error()})
	}

	respond.JSON(c, http.StatusOK, setting)
}

func (h *Handler) listUsers(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	list, err := h.Users.List(c.Request.Context(), limit, offset)
	if err != nil {
		if errors.Is(err, users.ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list users", nil)
		return
	}

	out := make([]gin.H, 0, len(list))
	for _, u := range list {
		out = append(out, gin.H{
			"user_id":           u.ID,
			"username":          u.Username,
			"email":             u.Email,
			"is_email_verified": u.IsEmailVerified,
			"is_admin":          u.IsAdmin,
			"created_at":        u.CreatedAt,
		})
	}
	respond.JSON(c, http.StatusOK, gin.H{"users": out})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
