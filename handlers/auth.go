package handlers

import (
	"errors"
	"net/http"

	"campusrun/services/user"
	"campusrun/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler exposes account and authentication endpoints.
type UserHandler struct {
	Svc user.UserService
}

// NewUserHandler returns a UserHandler backed by the given service.
func NewUserHandler(svc user.UserService) *UserHandler {
	return &UserHandler{Svc: svc}
}

// Register creates an account and returns an auth token.
func (h *UserHandler) Register(c *gin.Context) {
	logger := getLogger(c)

	var req user.RegistrationData
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request: "+err.Error(), "VALIDATION_ERROR")
		return
	}

	resp, err := h.Svc.Register(req)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			utils.JSONError(c, http.StatusConflict, err.Error(), "EMAIL_TAKEN")
		case errors.Is(err, user.ErrInvalidRegistration):
			utils.JSONError(c, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		default:
			logger.Error("Registration failed", zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "Failed to register", "REGISTER_ERROR")
		}
		return
	}

	ok(c, http.StatusCreated, gin.H{"auth": resp})
}

// Login authenticates a user and returns an auth token.
func (h *UserHandler) Login(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Email and password are required", "VALIDATION_ERROR")
		return
	}

	resp, err := h.Svc.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			utils.JSONError(c, http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
			return
		}
		logger.Error("Login failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to log in", "LOGIN_ERROR")
		return
	}

	ok(c, http.StatusOK, gin.H{"auth": resp})
}

// Profile returns the authenticated user's own document.
func (h *UserHandler) Profile(c *gin.Context) {
	actor, okActor := getActor(c)
	if !okActor {
		return
	}
	ok(c, http.StatusOK, gin.H{"user": actor})
}

// Logout revokes the cached auth token.
func (h *UserHandler) Logout(c *gin.Context) {
	actor, okActor := getActor(c)
	if !okActor {
		return
	}
	if err := h.Svc.RevokeAuthToken(actor.ID); err != nil {
		getLogger(c).Error("Failed to revoke token", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to log out", "LOGOUT_ERROR")
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Logged out"})
}
