package llm

import (
	"context"
	"net/http"
)

// OpenAIAdapter streams completions from the OpenAI chat API.
type OpenAIAdapter struct {
	client *http.Client
}

func NewOpenAIAdapter(client *http.Client) *OpenAIAdapter {
	return &OpenAIAdapter{client: client}
}

func (a *OpenAIAdapter) Stream(ctx context.Context, config ModelConfig, req StreamRequest) Stream {
	if config.APIKey == "" {
		return NewTextStream("Error: OpenAI API key is not configured")
	}

	body := chatCompletionRequest{
		Model:       config.ModelID,
		Messages:    chatMessages(req),
		Temperature: 0.7,
		Stream:      true,
	}
	headers := map[string]string{"Authorization": "Bearer " + config.APIKey}

	return streamRequest(ctx, a.client, config.APIBaseURL+"/chat/completions", headers, body, openAIDelta, "OpenAI")
}
