package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/middleware"
)

type AuthHandler struct {
	tokens *middleware.TokenManager
	logger *zap.Logger
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	TenantID string `json:"tenant_id,omitempty"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func NewAuthHandler(tokens *middleware.TokenManager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		tokens: tokens,
		logger: logger,
	}
}

// Login godoc
// @Summary Authenticate and get a JWT
// @Description Authenticate user credentials and return an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	// Credential storage is out of scope; development credentials only.
	var userID, role string
	switch req.Username {
	case "admin":
		if req.Password != "admin123" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		userID = "admin-user"
		role = "admin"
	case "user":
		if req.Password != "user123" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		if req.TenantID == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "tenant_id required for regular users"})
			return
		}
		userID = "regular-user"
		role = "user"
	default:
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		return
	}

	token, err := h.tokens.Generate(userID, req.TenantID, role)
	if err != nil {
		h.logger.Error("Failed to generate access token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to generate token"})
		return
	}

	h.logger.Info("User logged in",
		zap.String("user_id", userID),
		zap.String("role", role),
		zap.String("tenant_id", req.TenantID))

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   86400,
	})
}
