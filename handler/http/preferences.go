package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"corpora/src/llm"
)

// PreferenceWriter stores a tenant's default model selection.
type PreferenceWriter interface {
	SetDefaultModel(ctx context.Context, tenantID int64, config llm.ModelConfig) error
}

type modelRequest struct {
	Provider   string `json:"provider" binding:"required"`
	ModelID    string `json:"model_id" binding:"required"`
	APIBaseURL string `json:"api_base_url" binding:"required"`
	APIKey     string `json:"api_key"`
}

// GetModel returns the model configuration that would serve the
// tenant's next chat request, with the API key redacted.
func (h *Handler) GetModel(c *gin.Context) {
	id, ok := tenantID(c)
	if !ok {
		return
	}

	config := h.genService.ResolveModel(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{
		"provider":     config.Provider,
		"model_id":     config.ModelID,
		"api_base_url": config.APIBaseURL,
		"api_key_set":  config.APIKey != "",
	})
}

// SetModel stores the tenant's preferred provider and model.
func (h *Handler) SetModel(c *gin.Context) {
	id, ok := tenantID(c)
	if !ok {
		return
	}
	if h.prefWriter == nil {
		sendError(c, http.StatusServiceUnavailable, fmt.Errorf("preference store is not configured"))
		return
	}

	var req modelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	config := llm.ModelConfig{
		Provider:   llm.ParseProvider(req.Provider),
		ModelID:    req.ModelID,
		APIBaseURL: req.APIBaseURL,
		APIKey:     req.APIKey,
	}
	if err := h.prefWriter.SetDefaultModel(c.Request.Context(), id, config); err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"provider": config.Provider, "model_id": config.ModelID})
}
