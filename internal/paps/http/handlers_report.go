package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/middleware"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/report"
)

// reportPDF renders the current snapshot as a downloadable PDF. Kind and
// quarter come from query params; unknown values fall back to the
// all-quarters targets report.
func (h *Handler) reportPDF(c *gin.Context) {
	kind := report.KindTargets
	if c.Query("kind") == string(report.KindList) {
		kind = report.KindList
	}

	quarter := report.QuarterAll
	switch q := c.Query("quarter"); q {
	case "q1", "q2", "q3", "q4":
		quarter = report.Quarter(q)
	}

	items, _ := h.manager(c).Snapshot()

	pdf, err := report.Build(items, report.Options{Kind: kind, Quarter: quarter})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	name := report.Filename(kind, c.GetString(middleware.CtxName), time.Now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
