package suggestions

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"plagiarism-backend/internal/documents"
	"plagiarism-backend/internal/llm"
	"plagiarism-backend/internal/shared/server/middleware"
	"plagiarism-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the generator and repo.
type Handler struct {
	Gen  *Generator
	Repo SuggestionsRepo
	Docs DocumentVerifier
}

// NewHandler constructs a Handler.
func NewHandler(gen *Generator, repo SuggestionsRepo, docs DocumentVerifier) *Handler {
	return &Handler{Gen: gen, Repo: repo, Docs: docs}
}

// RegisterRoutes attaches suggestion routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/suggestions/generate", h.generate)
	rg.GET("/suggestions", h.list)
	rg.GET("/suggestions/:id", h.get)
	rg.GET("/documents/:id/suggestions", h.listByDocument)
}

type generateRequest struct {
	Text           string          `json:"text"`
	MatchedSources []MatchedSource `json:"matched_sources"`
	DocumentID     int64           `json:"document_id"`
}

func (h *Handler) generate(c *gin.Context) {
	ownerKey := middleware.UserIDFromContext(c)

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body: matched_sources must be a list of sources", nil)
		return
	}

	result, err := h.Gen.Generate(c.Request.Context(), GenerateInput{
		OwnerKey:       ownerKey,
		Text:           req.Text,
		MatchedSources: req.MatchedSources,
		DocumentID:     req.DocumentID,
	})
	if err != nil {
		if rl, ok := llm.IsRateLimit(err); ok {
			msg := rl.HumanMessage()
			respond.JSON(c, http.StatusTooManyRequests, GenerateResponse{
				Suggestions:      []SuggestionResponse{},
				RateLimited:      true,
				RateLimitMessage: &msg,
			})
			return
		}
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrGenerationFailed):
			respond.Error(c, http.StatusUnprocessableEntity, "generation_failed", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate suggestions", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, GenerateResponse{
		Suggestions: toResponses(result.Suggestions),
		RateLimited: false,
		Warning:     result.Warning,
	})
}

func (h *Handler) list(c *gin.Context) {
	ownerKey := middleware.UserIDFromContext(c)

	limit := 50
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

	list, err := h.Repo.ListByOwner(c.Request.Context(), ownerKey, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list suggestions", nil)
		return
	}
	respond.JSON(c, http.StatusOK, toResponses(list))
}

func (h *Handler) get(c *gin.Context) {
	ownerKey := middleware.UserIDFromContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid suggestion id", nil)
		return
	}

	s, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil || s.OwnerKey != ownerKey {
		if err != nil && !errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch suggestion", nil)
			return
		}
		respond.Error(c, http.StatusNotFound, "not_found", "suggestion not found", nil)
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(s))
}

func (h *Handler) listByDocument(c *gin.Context) {
	ownerKey := middleware.UserIDFromContext(c)

	docID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || docID <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid document id", nil)
		return
	}

	if _, err := h.Docs.Get(c.Request.Context(), ownerKey, docID); err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		return
	}

	list, err := h.Repo.ListByDocument(c.Request.Context(), docID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list suggestions", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"suggestions": toResponses(list)})
}
