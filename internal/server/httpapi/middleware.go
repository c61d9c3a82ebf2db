package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dkotenko/authflow/internal/server/auth"
)

const (
	ctxClaimsKey       = "auth.claims"
	ctxRefreshTokenKey = "auth.refresh_token"
)

// requireAccessToken authenticates the request from the Authorization bearer
// token. Validation is signature + expiry only; the claims become the request
// identity.
func (h *Handler) requireAccessToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: "Missing access token."})
		return
	}

	claims, err := h.sessions.ValidateAccessToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: "Invalid access token."})
		return
	}

	c.Set(ctxClaimsKey, claims)
	c.Next()
}

// requireRefreshToken authenticates the request from the _rt cookie. Only the
// token's signature and expiry are checked here; the stored-hash comparison
// happens in the session service.
func (h *Handler) requireRefreshToken(c *gin.Context) {
	token, err := c.Cookie(refreshCookieName)
	if err != nil || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: "No refresh token found."})
		return
	}

	claims, err := h.sessions.ValidateRefreshToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: "Invalid refresh token."})
		return
	}

	c.Set(ctxClaimsKey, claims)
	c.Set(ctxRefreshTokenKey, token)
	c.Next()
}

// currentClaims returns the identity established by one of the auth
// middlewares.
func currentClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ctxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

// requestLogger logs each request with method, path, status, and latency.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
