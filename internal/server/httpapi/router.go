package httpapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Router builds the gin engine with middleware and the /auth route group.
func (h *Handler) Router() *gin.Engine {
	if h.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(h.requestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{h.cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	auth := r.Group("/auth")
	{
		auth.POST("/request-otp", h.requestOtp)
		auth.POST("/verify-otp", h.verifyOtp)
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/refresh", h.requireRefreshToken, h.refresh)
		auth.POST("/logout", h.requireAccessToken, h.logout)
		auth.GET("/me", h.requireAccessToken, h.me)
	}

	return r
}
