package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/minionops/minionbase/internal/auth"
	"github.com/minionops/minionbase/internal/pkg/errcode"
	"github.com/minionops/minionbase/internal/pkg/response"
)

type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{auth: authService}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Username == "" || req.Password == "" {
		response.Error(c, errcode.ErrInvalid, "username and password required")
		return
	}
	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"token": token})
}

type changePasswordRequest struct {
	Password string `json:"password"`
}

// ChangePassword rotates the password of the authenticated account.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Password == "" {
		response.Error(c, errcode.ErrInvalid, "password required")
		return
	}
	if err := h.auth.ChangePassword(c.Request.Context(), getUsername(c), req.Password); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}
