package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"corpora/src/llm"
)

type searchRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k"`
}

func (h *Handler) Search(c *gin.Context) {
	id, ok := tenantID(c)
	if !ok {
		return
	}

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	results, err := h.kbService.Search(c.Request.Context(), id, req.Query, req.TopK)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

type chatRequest struct {
	Query   string        `json:"query" binding:"required"`
	History []llm.Message `json:"history"`
	TopK    int           `json:"top_k"`
}

// Chat retrieves the tenant's most relevant passages and streams a
// grounded answer as server-sent events, ending with a [DONE] event.
func (h *Handler) Chat(c *gin.Context) {
	id, ok := tenantID(c)
	if !ok {
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	results, err := h.kbService.Search(c.Request.Context(), id, req.Query, req.TopK)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	contextDocs := make([]string, 0, len(results))
	for _, r := range results {
		contextDocs = append(contextDocs, r.Content)
	}

	stream := h.genService.Generate(c.Request.Context(), id, req.Query, contextDocs, req.History)
	defer stream.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		chunk, err := stream.Recv()
		if err != nil {
			c.SSEvent("message", "[DONE]")
			return false
		}
		c.SSEvent("message", chunk)
		return true
	})
}
