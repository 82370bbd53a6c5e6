package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopkeeper/pkg/clients/identity"
)

const userIDKey = "userID"

// AuthHandler exposes sign-up/sign-in passthroughs and the middleware that resolves
// bearer tokens to an owner id.
type AuthHandler struct {
	ids    identity.Client
	logger *zap.Logger
}

// NewAuthHandler constructs the auth handler adapter.
func NewAuthHandler(ids identity.Client, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{ids: ids, logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignUp creates an account with the identity service.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	session, err := h.ids.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("sign up failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign up failed"})
		return
	}

	c.JSON(http.StatusCreated, session)
}

// SignIn authenticates against the identity service.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	session, err := h.ids.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("sign in failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, session)
}

// Middleware resolves the Authorization bearer token to a user id and stores it in
// the request context. Every ledger route sits behind this; the owner id it sets is
// what scopes all store access.
func (h *AuthHandler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		user, err := h.ids.Lookup(c.Request.Context(), token)
		if err != nil {
			h.logger.Warn("token lookup failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(userIDKey, user.UserID)
		c.Next()
	}
}

// currentUserID returns the owner id the auth middleware resolved.
func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
