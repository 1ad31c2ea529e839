package llm

import (
	"context"
	"net/http"
)

// DeepSeekAdapter streams completions from the DeepSeek chat API.
type DeepSeekAdapter struct {
	client *http.Client
}

func NewDeepSeekAdapter(client *http.Client) *DeepSeekAdapter {
	return &DeepSeekAdapter{client: client}
}

func (a *DeepSeekAdapter) Stream(ctx context.Context, config ModelConfig, req StreamRequest) Stream {
	if config.APIKey == "" {
		return NewTextStream("Error: DeepSeek API key is not configured")
	}

	body := chatCompletionRequest{
		Model:       config.ModelID,
		Messages:    chatMessages(req),
		Temperature: 0.7,
		Stream:      true,
	}
	headers := map[string]string{"Authorization": "Bearer " + config.APIKey}

	return streamRequest(ctx, a.client, config.APIBaseURL+"/v1/chat/completions", headers, body, openAIDelta, "DeepSeek")
}
