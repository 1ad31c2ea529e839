package llm

import (
	"context"
	"fmt"
	"net/http"
)

// CompatibleAdapter streams completions from any OpenAI-compatible chat
// API. It is the dispatch target for provider names outside the known
// set.
type CompatibleAdapter struct {
	client *http.Client
}

func NewCompatibleAdapter(client *http.Client) *CompatibleAdapter {
	return &CompatibleAdapter{client: client}
}

func (a *CompatibleAdapter) Stream(ctx context.Context, config ModelConfig, req StreamRequest) Stream {
	if config.APIKey == "" {
		return NewTextStream(fmt.Sprintf("Error: %s API key is not configured", config.Provider))
	}

	body := chatCompletionRequest{
		Model:       config.ModelID,
		Messages:    chatMessages(req),
		Temperature: 0.7,
		Stream:      true,
	}
	headers := map[string]string{"Authorization": "Bearer " + config.APIKey}

	return streamRequest(ctx, a.client, config.APIBaseURL+"/chat/completions", headers, body, openAIDelta, string(config.Provider))
}
