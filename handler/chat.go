package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"koatrip-agent/internal/domain"
)

// doneSentinel terminates every SSE response, including interrupted ones.
const doneSentinel = "[DONE]"

type chatRequest struct {
	Messages []domain.ChatMessage `json:"messages"`
}

type textFrame struct {
	Text string `json:"text"`
}

type errorFrame struct {
	Error string `json:"error"`
}

// streamChat proxies a transcript to the model and relays the reply as SSE
// frames: `data: {"text":...}` per fragment, one `data: {"error":...}` frame
// on a hard stream failure, and `data: [DONE]` as the sentinel either way.
func (h *Handler) streamChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "messages array is required"})
		return
	}

	fragments, err := h.streamer.StreamChat(c.Request.Context(), req.Messages)
	if err != nil {
		h.log.Error("chat stream start failed", "err", err)
		c.JSON(http.StatusBadGateway, errorResponse{Error: "assistant request failed"})
		return
	}

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	c.Status(http.StatusOK)

	for frag := range fragments {
		if frag.Err != nil {
			writeFrame(c, errorFrame{Error: "stream interrupted"})
			break
		}
		writeFrame(c, textFrame{Text: frag.Text})
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", doneSentinel)
	c.Writer.Flush()
}

func writeFrame(c *gin.Context, frame any) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
	c.Writer.Flush()
}
