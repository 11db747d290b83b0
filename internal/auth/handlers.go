package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ledgerchat/ledgerchat/internal/errors"
)

// Handlers exposes the auth HTTP endpoints
type Handlers struct {
	manager *Manager
}

// NewHandlers creates the auth handler set
func NewHandlers(manager *Manager) *Handlers {
	return &Handlers{manager: manager}
}

// SetupRoutes registers the auth endpoints on the given group
func (h *Handlers) SetupRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
}

// CredentialsRequest is the body for register and login
type CredentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new account
func (h *Handlers) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, apperrors.NewInvalidInputError("request body", err.Error()))
		return
	}

	user, err := h.manager.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		status := http.StatusInternalServerError
		if apperrors.IsCode(err, apperrors.ErrCodeUserExists) || apperrors.IsCode(err, apperrors.ErrCodeInvalidInput) {
			status = http.StatusBadRequest
		}
		writeError(c, status, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       user.ID,
		"username": user.Username,
	})
}

// Login verifies credentials and returns a token plus session ID
func (h *Handlers) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, apperrors.NewInvalidInputError("request body", err.Error()))
		return
	}

	result, err := h.manager.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		status := http.StatusInternalServerError
		if apperrors.IsCode(err, apperrors.ErrCodeInvalidCredentials) {
			status = http.StatusUnauthorized
		}
		writeError(c, status, err)
		return
	}

	c.SetCookie("session_id", result.SessionID, int(h.manager.config.SessionExpiry.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"token":      result.Token,
		"session_id": result.SessionID,
		"expires_at": result.ExpiresAt,
		"user": gin.H{
			"id":       result.User.ID,
			"username": result.User.Username,
		},
	})
}

// Logout invalidates the caller's session
func (h *Handlers) Logout(c *gin.Context) {
	sessionID := c.GetHeader(SessionHeader)
	if sessionID == "" {
		sessionID, _ = c.Cookie("session_id")
	}
	if sessionID != "" {
		if err := h.manager.Logout(c.Request.Context(), sessionID); err != nil {
			writeError(c, http.StatusInternalServerError, err)
			return
		}
	}

	c.SetCookie("session_id", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func writeError(c *gin.Context, status int, err error) {
	if enhanced, ok := err.(*apperrors.EnhancedError); ok {
		body := gin.H{
			"code":    enhanced.Code,
			"message": enhanced.Message,
		}
		if enhanced.Suggestion != "" {
			body["suggestion"] = enhanced.Suggestion
		}
		c.JSON(status, gin.H{"error": body})
		return
	}

	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": err.Error(),
		},
	})
}
