package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/paps/domain"
)

// stream pushes collection updates to the client over Server-Sent Events.
// The manager already follows the change feed and re-fetches on every
// event, so the stream only has to watch the manager's snapshot for
// visible changes.
func (h *Handler) stream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	m := h.manager(c)

	items, status := m.Snapshot()
	initial, _ := json.Marshal(listResp{OK: true, Status: toStatusResp(status), Paps: items})
	fmt.Fprintf(c.Writer, "event: initial\ndata: %s\n\n", initial)
	flusher.Flush()

	lastPrint := fingerprint(items, status.Load.String())

	ctx := c.Request.Context()

	keepAlive := time.NewTicker(15 * time.Second)
	defer keepAlive.Stop()

	poll := time.NewTicker(1 * time.Second)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-keepAlive.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case <-poll.C:
			items, status := m.Snapshot()
			print := fingerprint(items, status.Load.String())
			if print == lastPrint {
				continue
			}
			lastPrint = print

			data, _ := json.Marshal(listResp{OK: true, Status: toStatusResp(status), Paps: items})
			fmt.Fprintf(c.Writer, "event: update\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// fingerprint is a cheap change detector over the snapshot: row count,
// newest update stamp, and the load state. Deletes change the count,
// writes bump updated_at.
func fingerprint(items []domain.PAP, load string) string {
	var newest time.Time
	for _, p := range items {
		if p.UpdatedAt.After(newest) {
			newest = p.UpdatedAt
		}
	}
	return fmt.Sprintf("%d|%d|%s", len(items), newest.UnixNano(), load)
}
