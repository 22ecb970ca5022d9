package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"plagiarism-backend/internal/shared/server/middleware"
	"plagiarism-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterAuthRoutes attaches the unauthenticated registration/login flow.
func (h *Handler) RegisterAuthRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.register)
	rg.POST("/verify-otp", h.verifyOTP)
	rg.POST("/resend-otp", h.resendOTP)
	rg.POST("/login", h.login)
	rg.GET("/user-by-username", h.userByUsername)
}

// RegisterRoutes attaches routes that require an authenticated identity.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	user, err := h.Svc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrEmailTaken):
			respond.Error(c, http.StatusBadRequest, "already_registered", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "registration failed", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, gin.H{
		"user_id":               user.ID,
		"username":              user.Username,
		"email":                 user.Email,
		"message":               "Registration successful. Please verify your email with the OTP sent.",
		"requires_verification": true,
	})
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *Handler) verifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	user, token, err := h.Svc.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "user with this email does not exist", nil)
		case errors.Is(err, ErrOTPInvalid):
			respond.Error(c, http.StatusBadRequest, "otp_invalid", ErrOTPInvalid.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "verification failed", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"token":    token,
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
		"message":  "Email verification successful",
	})
}

type resendOTPRequest struct {
	Email string `json:"email"`
}

func (h *Handler) resendOTP(c *gin.Context) {
	var req resendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	err := h.Svc.ResendOTP(c.Request.Context(), req.Email)
	switch {
	case err == nil:
		respond.JSON(c, http.StatusOK, gin.H{
			"message": "New OTP sent successfully",
			"email":   req.Email,
		})
	case errors.Is(err, ErrNotFound):
		// Generic response to prevent email enumeration.
		respond.JSON(c, http.StatusOK, gin.H{
			"message": "If a user with this email exists, an OTP has been sent",
		})
	case errors.Is(err, ErrAlreadyVerified):
		respond.Error(c, http.StatusBadRequest, "already_verified", ErrAlreadyVerified.Error(), nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to resend OTP", nil)
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	user, token, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrInvalidCredentials):
			respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil)
		case errors.Is(err, ErrNotVerified):
			respond.JSON(c, http.StatusForbidden, gin.H{
				"requires_verification": true,
				"email":                 user.Email,
				"message":               "Email verification required. A new OTP has been sent.",
			})
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "login failed", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"token":    token,
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

func (h *Handler) userByUsername(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "username parameter is required", nil)
		return
	}

	email, err := h.Svc.EmailByUsername(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "lookup failed", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"email": email})
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch user", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"user_id":           user.ID,
		"username":          user.Username,
		"email":             user.Email,
		"is_email_verified": user.IsEmailVerified,
		"is_admin":          user.IsAdmin,
		"created_at":        user.CreatedAt,
	})
}
