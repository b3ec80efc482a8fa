package http

import (
	"github.com/gin-gonic/gin"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/middleware"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/session"
)

// Register mounts the auth routes. Public routes cover login,
// registration, and the password-reset flow; everything else requires a
// live session.
func (h *Handler) Register(rg *gin.RouterGroup, sessions *session.Store) {
	rg.POST("/login", h.login)
	rg.POST("/register", h.register)
	rg.GET("/security-questions", h.securityQuestions)
	rg.POST("/security-question", h.securityQuestion)
	rg.POST("/verify-answer", h.verifyAnswer)
	rg.POST("/reset-password", h.resetPassword)

	authed := rg.Group("")
	authed.Use(middleware.RequireSession(sessions))
	authed.POST("/logout", h.logout)
	authed.GET("/validate", h.validate)
	authed.GET("/allowlist", h.allowlistList)
	authed.POST("/allowlist", h.allowlistAdd)
	authed.DELETE("/allowlist/:email", h.allowlistRemove)
}
