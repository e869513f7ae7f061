package handler

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// SuggestMessages streams AI-generated message suggestions to the client as
// plain text chunks.
func (h *Handler) SuggestMessages(c *gin.Context) {
	if h.suggester == nil || !h.suggester.Enabled() {
		fail(c, http.StatusServiceUnavailable, "message suggestions are not available")
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)

	flusher, canFlush := c.Writer.(http.Flusher)

	err := h.suggester.Stream(c.Request.Context(), func(text string) error {
		if _, err := c.Writer.WriteString(text); err != nil {
			return err
		}
		if canFlush {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		// headers are already out, all we can do is log and cut the stream
		log.Error("failed to stream suggestions", "error", err)
	}
}
