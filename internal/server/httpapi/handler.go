// Package httpapi exposes the onboarding and session flows over HTTP. It is
// glue only: request binding, cookie handling, and error-to-status mapping
// around the services.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkotenko/authflow/internal/logging"
	"github.com/dkotenko/authflow/internal/server/config"
	"github.com/dkotenko/authflow/internal/server/services"
)

// refreshCookieName is the http-only cookie carrying the refresh token. The
// token is never returned in a response body.
const refreshCookieName = "_rt"

// Handler holds the HTTP endpoints of the auth API.
type Handler struct {
	cfg      *config.Config
	logger   logging.Logger
	otp      *services.OtpService
	sessions *services.SessionService
}

// NewHandler constructs the HTTP handler around the two services.
func NewHandler(cfg *config.Config, logger logging.Logger, otp *services.OtpService, sessions *services.SessionService) *Handler {
	return &Handler{cfg: cfg, logger: logger, otp: otp, sessions: sessions}
}

func (h *Handler) requestOtp(c *gin.Context) {
	var req requestOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid request body."})
		return
	}

	confirmation, err := h.otp.RequestOtp(c.Request.Context(), req.Email, req.FirstName, req.LastName)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, confirmation)
}

func (h *Handler) verifyOtp(c *gin.Context) {
	var req verifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid request body."})
		return
	}
	if len(req.Otp) != h.cfg.OtpLength {
		c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid request body."})
		return
	}

	confirmation, err := h.otp.VerifyOtp(c.Request.Context(), req.Email, req.Otp)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, confirmation)
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid request body."})
		return
	}

	confirmation, err := h.sessions.CreateAccount(c.Request.Context(), req.Email, req.FirstName, req.LastName, req.Password)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, confirmation)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid request body."})
		return
	}

	account, err := h.sessions.ValidateCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.renderError(c, err)
		return
	}

	pair, err := h.sessions.Login(c.Request.Context(), account)
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, loginResponse{AccessToken: pair.AccessToken})
}

func (h *Handler) refresh(c *gin.Context) {
	claims := currentClaims(c)
	presented := c.GetString(ctxRefreshTokenKey)

	pair, err := h.sessions.Refresh(c.Request.Context(), claims.Subject, presented)
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, loginResponse{AccessToken: pair.AccessToken})
}

func (h *Handler) logout(c *gin.Context) {
	claims := currentClaims(c)

	if err := h.sessions.Logout(c.Request.Context(), claims.Subject); err != nil {
		h.renderError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully."})
}

func (h *Handler) me(c *gin.Context) {
	claims := currentClaims(c)

	account, err := h.sessions.GetProfile(c.Request.Context(), claims.Subject)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, profileResponse{
		ID:        account.ID,
		Email:     account.Email,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		CreatedAt: account.CreatedAt,
	})
}

func (h *Handler) renderError(c *gin.Context, err error) {
	status, message := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err.Error())
	}
	c.JSON(status, errorResponse{Message: message})
}

func (h *Handler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token,
		int(h.cfg.RefreshTokenValidity.Seconds()), "/", "", h.cfg.IsProduction(), true)
}

func (h *Handler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, "/", "", h.cfg.IsProduction(), true)
}
