package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/andreee-ff/saferide-go/internal/middleware"
	"github.com/andreee-ff/saferide-go/internal/models"
	"github.com/andreee-ff/saferide-go/internal/service"
	"github.com/andreee-ff/saferide-go/pkg/response"
)

// AuthHandler handles HTTP requests for registration and login
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register handles POST /api/users
func (h *AuthHandler) Register(c *gin.Context) {
	var create models.UserCreate
	if err := c.ShouldBindJSON(&create); err != nil {
		response.BadRequest(c, "Invalid registration payload", err)
		return
	}

	user, err := h.auth.Register(create)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			response.Conflict(c, "Username already taken")
			return
		}
		response.InternalError(c, "Failed to register user", err)
		return
	}

	response.Created(c, user)
}

// Login handles POST /api/auth/login (form-encoded, like the original API)
func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		response.BadRequest(c, "Username and password are required", nil)
		return
	}

	token, err := h.auth.Login(username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "Invalid username or password")
			return
		}
		response.InternalError(c, "Failed to log in", err)
		return
	}

	response.Success(c, token)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "Not authenticated")
		return
	}
	response.Success(c, user)
}
