package documents

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"plagiarism-backend/internal/shared/server/middleware"
	"plagiarism-backend/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.DELETE("/documents/:id", h.delete)
	rg.GET("/documents/:id/extracted_text", h.extractedText)
	rg.GET("/documents/:id/download_text", h.downloadText)
	rg.PATCH("/documents/:id/score", h.updateScore)
}

func ownerFromContext(c *gin.Context) (ownerKey string, ownerID *string) {
	ownerKey = middleware.UserIDFromContext(c)
	if ownerKey != "" && !strings.HasPrefix(ownerKey, "guest:") {
		id := ownerKey
		ownerID = &id
	}
	return ownerKey, ownerID
}

func documentIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid document id", nil)
		return 0, false
	}
	return id, true
}

func (h *Handler) upload(c *gin.Context) {
	ownerKey, ownerID := ownerFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	title := c.PostForm("title")

	doc, err := h.Svc.Upload(c.Request.Context(), ownerKey, ownerID, title, fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedFormat):
			respond.Error(c, http.StatusBadRequest, "unsupported_format", ErrUnsupportedFormat.Error(), nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrExtraction):
			respond.Error(c, http.StatusUnprocessableEntity, "extraction_failed", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	ownerKey, _ := ownerFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	docs, err := h.Svc.List(c.Request.Context(), ownerKey, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	ownerKey, _ := ownerFromContext(c)
	id, ok := documentIDParam(c)
	if !ok {
		return
	}

	doc, err := h.Svc.Get(c.Request.Context(), ownerKey, id)
	if err != nil {
		respondDocumentError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

func (h *Handler) delete(c *gin.Context) {
	ownerKey, _ := ownerFromContext(c)
	id, ok := documentIDParam(c)
	if !ok {
		return
	}

	if err := h.Svc.Delete(c.Request.Context(), ownerKey, id); err != nil {
		respondDocumentError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) extractedText(c *gin.Context) {
	ownerKey, _ := ownerFromContext(c)
	id, ok := documentIDParam(c)
	if !ok {
		return
	}

	doc, err := h.Svc.Get(c.Request.Context(), ownerKey, id)
	if err != nil {
		respondDocumentError(c, err)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"id":             doc.ID,
		"title":          doc.Title,
		"extracted_text": doc.ExtractedText,
	})
}

func (h *Handler) downloadText(c *gin.Context) {
	ownerKey, _ := ownerFromContext(c)
	id, ok := documentIDParam(c)
	if !ok {
		return
	}

	doc, err := h.Svc.Get(c.Request.Context(), ownerKey, id)
	if err != nil {
		respondDocumentError(c, err)
		return
	}

	fileName := strings.ReplaceAll(doc.Title, "\"", "") + "_extracted.txt"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(doc.ExtractedText))
}

type updateScoreRequest struct {
	OriginalityScore *float64 `json:"originality_score"`
}

func (h *Handler) updateScore(c *gin.Context) {
	ownerKey, _ := ownerFromContext(c)
	id, ok := documentIDParam(c)
	if !ok {
		return
	}

	var req updateScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OriginalityScore == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "originality_score is required", nil)
		return
	}

	doc, err := h.Svc.UpdateScore(c.Request.Context(), ownerKey, id, *req.OriginalityScore)
	if err != nil {
		respondDocumentError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

func respondDocumentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "document operation failed", nil)
	}
}
