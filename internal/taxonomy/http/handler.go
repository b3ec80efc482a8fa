// Package http exposes the strategic-context taxonomy to clients. The
// data is static; the endpoints exist so form dropdowns and the backend
// validate against the same source.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/taxonomy"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) tree(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "developmentAreas": taxonomy.DevelopmentAreas(), "tree": taxonomy.Tree()})
}

func (h *Handler) outcomes(c *gin.Context) {
	area := c.Query("developmentArea")
	if area == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "developmentArea is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "outcomes": taxonomy.Outcomes(area)})
}

func (h *Handler) strategies(c *gin.Context) {
	area, outcome := c.Query("developmentArea"), c.Query("outcome")
	if area == "" || outcome == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "developmentArea and outcome are required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "strategies": taxonomy.Strategies(area, outcome)})
}

// Register attaches the taxonomy routes to the given group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.tree)
	rg.GET("/outcomes", h.outcomes)
	rg.GET("/strategies", h.strategies)
}
