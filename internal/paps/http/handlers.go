package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/middleware"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/paps"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/paps/domain"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/taxonomy"
)

// Handler serves the PAP collection for the authenticated identity. Each
// identity gets a hub-managed collection manager; handlers never touch
// the row store directly.
type Handler struct {
	hub *paps.Hub
}

func NewHandler(hub *paps.Hub) *Handler {
	return &Handler{hub: hub}
}

func (h *Handler) manager(c *gin.Context) *paps.Manager {
	return h.hub.Get(c.GetString(middleware.CtxEmail), c.GetString(middleware.CtxRole), c.GetString(middleware.CtxToken))
}

func (h *Handler) list(c *gin.Context) {
	m := h.manager(c)

	// Give a freshly created manager a moment to resolve ownership so
	// the first page load is not an empty flash. Failure falls through
	// to whatever status the manager holds.
	waitCtx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()
	m.WaitResolved(waitCtx)

	items, status := m.Snapshot()
	c.JSON(http.StatusOK, listResp{OK: true, Status: toStatusResp(status), Paps: items})
}

func (h *Handler) status(c *gin.Context) {
	st := h.manager(c).Status()
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": toStatusResp(st)})
}

func (h *Handler) create(c *gin.Context) {
	var draft domain.PAP
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if !taxonomy.ValidTriple(draft.DevelopmentArea, draft.Outcome, draft.Strategy) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unknown strategic context"})
		return
	}

	m := h.manager(c)

	// Brief wait so a create on a fresh session is not bounced while
	// ownership resolution is still in flight.
	waitCtx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()
	m.WaitResolved(waitCtx)

	id, err := m.Create(c.Request.Context(), draft)
	if err != nil {
		c.JSON(papStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}

	items, status := m.Snapshot()
	c.JSON(http.StatusCreated, gin.H{"ok": true, "id": id, "status": toStatusResp(status), "paps": items})
}

func (h *Handler) patch(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	patch := make(domain.Patch, len(body))
	for k, v := range body {
		f := domain.Field(k)
		if f == domain.FieldOwnerEmail {
			// Row attribution is fixed at create time.
			continue
		}
		if _, ok := f.Column(); ok {
			patch[f] = v
		}
	}
	if len(patch) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "no recognized fields"})
		return
	}

	if err := h.manager(c).Patch(c.Request.Context(), c.Param("id"), patch); err != nil {
		c.JSON(papStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.manager(c).Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(papStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) complete(c *gin.Context) {
	var req completeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	links := req.EvidenceLinks
	if len(links) == 0 && req.EvidenceText != "" {
		links = domain.ParseLinks(req.EvidenceText)
	}

	patch := domain.Patch{
		domain.FieldCompleted:     true,
		domain.FieldEvidenceLinks: links,
	}
	if err := h.manager(c).Patch(c.Request.Context(), c.Param("id"), patch); err != nil {
		c.JSON(papStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) reopen(c *gin.Context) {
	patch := domain.Patch{domain.FieldCompleted: false}
	if err := h.manager(c).Patch(c.Request.Context(), c.Param("id"), patch); err != nil {
		c.JSON(papStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) refetch(c *gin.Context) {
	m := h.manager(c)
	m.Refetch(c.Request.Context())
	items, status := m.Snapshot()
	c.JSON(http.StatusOK, listResp{OK: true, Status: toStatusResp(status), Paps: items})
}

// papStatus maps domain errors to HTTP status codes.
func papStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOwnerUnresolved):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTitleRequired),
		errors.Is(err, domain.ErrPersonnelRequired),
		errors.Is(err, domain.ErrIndicatorRequired),
		errors.Is(err, domain.ErrPartialContext),
		errors.Is(err, domain.ErrEvidenceRequired),
		errors.Is(err, domain.ErrEvidenceInvalid),
		errors.Is(err, domain.ErrActualsLocked):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
