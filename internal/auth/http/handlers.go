package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/domain"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/middleware"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/service"
)

// ManagerDropper lets logout tear down the identity's collection manager
// without the auth package importing it.
type ManagerDropper interface {
	Drop(email string)
}

type Handler struct {
	svc      *service.AuthService
	managers ManagerDropper
}

func NewHandler(svc *service.AuthService, managers ManagerDropper) *Handler {
	return &Handler{svc: svc, managers: managers}
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	user, token, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(authStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user, "session_token": token})
}

func (h *Handler) register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	id, err := h.svc.Register(c.Request.Context(), req.DisplayName, req.Email, req.Password, req.SecurityQuestion, req.SecurityAnswer)
	if err != nil {
		c.JSON(authStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "id": id})
}

func (h *Handler) logout(c *gin.Context) {
	email := c.GetString(middleware.CtxEmail)
	token := c.GetString(middleware.CtxToken)

	if err := h.svc.Logout(c.Request.Context(), email, token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if h.managers != nil {
		h.managers.Drop(email)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) validate(c *gin.Context) {
	// Reaching here means RequireSession already accepted the token.
	c.JSON(http.StatusOK, gin.H{"ok": true, "valid": true, "user": gin.H{
		"email":        c.GetString(middleware.CtxEmail),
		"role":         c.GetString(middleware.CtxRole),
		"display_name": c.GetString(middleware.CtxName),
	}})
}

func (h *Handler) securityQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "questions": domain.SecurityQuestions})
}

func (h *Handler) securityQuestion(c *gin.Context) {
	var req emailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	q, err := h.svc.SecurityQuestion(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(authStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "question": q})
}

func (h *Handler) verifyAnswer(c *gin.Context) {
	var req verifyAnswerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	if err := h.svc.VerifySecurityAnswer(c.Request.Context(), req.Email, req.Answer); err != nil {
		c.JSON(authStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req resetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), req.Email, req.NewPassword); err != nil {
		c.JSON(authStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) allowlistList(c *gin.Context) {
	emails, err := h.svc.AllowlistList(c.Request.Context(), c.GetString(middleware.CtxEmail), c.GetString(middleware.CtxToken))
	if err != nil {
		c.JSON(authStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "emails": emails})
}

func (h *Handler) allowlistAdd(c *gin.Context) {
	var req allowlistReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	if err := h.svc.AllowlistAdd(c.Request.Context(), c.GetString(middleware.CtxEmail), c.GetString(middleware.CtxToken), req.Email); err != nil {
		c.JSON(authStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) allowlistRemove(c *gin.Context) {
	email := c.Param("email")

	if err := h.svc.AllowlistRemove(c.Request.Context(), c.GetString(middleware.CtxEmail), c.GetString(middleware.CtxToken), email); err != nil {
		c.JSON(authStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrSessionInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrEmailNotAuthorized),
		errors.Is(err, domain.ErrAdminOnly):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAccountLocked):
		return http.StatusLocked
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrNameRequired),
		errors.Is(err, domain.ErrAnswerRequired),
		errors.Is(err, domain.ErrAnswerIncorrect):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
