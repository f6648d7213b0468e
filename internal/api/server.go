// Package api exposes a read-only HTTP surface for health checks and
// pipeline status.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"repost_bot/internal/scheduler"
	"repost_bot/internal/storage"
)

// statusResponse is the JSON body of GET /status.
type statusResponse struct {
	Paused        bool   `json:"paused"`
	QueueLength   int    `json:"queue_length"`
	Posted        int    `json:"posted"`
	Filtered      int    `json:"filtered"`
	LastPostAt    string `json:"last_post_at,omitempty"`
	LastMessageID int    `json:"last_message_id,omitempty"`
}

// NewServer creates the HTTP engine with all routes configured.
func NewServer(state *scheduler.State, queue storage.Queue) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/status", func(c *gin.Context) {
		snap := state.Snapshot()
		resp := statusResponse{
			Paused:        snap.Paused,
			QueueLength:   queue.Len(),
			Posted:        snap.Posted,
			Filtered:      snap.Filtered,
			LastMessageID: snap.LastMessageID,
		}
		if !snap.LastPostAt.IsZero() {
			resp.LastPostAt = snap.LastPostAt.Format(time.RFC3339)
		}
		c.JSON(http.StatusOK, resp)
	})

	return r
}
