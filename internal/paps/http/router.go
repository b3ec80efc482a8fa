package http

import "github.com/gin-gonic/gin"

// Register attaches the PAP collection routes to an authenticated group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/status", h.status)
	rg.GET("/stream", h.stream)
	rg.GET("/report", h.reportPDF)
	rg.POST("/refetch", h.refetch)
	rg.PATCH("/:id", h.patch)
	rg.DELETE("/:id", h.delete)
	rg.POST("/:id/complete", h.complete)
	rg.POST("/:id/reopen", h.reopen)
}
