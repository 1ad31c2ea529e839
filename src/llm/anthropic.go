package llm

import (
	"context"
	"encoding/json"
	"net/http"

	"corpora/src/log"
)

const anthropicVersion = "2023-06-01"

// AnthropicAdapter streams completions from the Anthropic messages API.
// That protocol has no system slot in the conversation array used here,
// so when there is no history the system text is folded into the first
// user turn.
type AnthropicAdapter struct {
	client *http.Client
}

func NewAnthropicAdapter(client *http.Client) *AnthropicAdapter {
	return &AnthropicAdapter{client: client}
}

type anthropicRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
	Stream    bool      `json:"stream"`
}

func (a *AnthropicAdapter) Stream(ctx context.Context, config ModelConfig, req StreamRequest) Stream {
	if config.APIKey == "" {
		return NewTextStream("Error: Anthropic API key is not configured")
	}

	messages := TrimHistory(req.History)
	if len(messages) > 0 {
		messages = append(messages, Message{Role: RoleUser, Content: req.Prompt})
	} else {
		messages = append(messages, Message{Role: RoleUser, Content: req.System + "\n\n" + req.Prompt})
	}

	body := anthropicRequest{
		Model:     config.ModelID,
		MaxTokens: 1000,
		Messages:  messages,
		Stream:    true,
	}
	headers := map[string]string{
		"Authorization":     "Bearer " + config.APIKey,
		"anthropic-version": anthropicVersion,
	}

	return streamRequest(ctx, a.client, config.APIBaseURL+"/v1/messages", headers, body, anthropicDelta, "Anthropic")
}

// anthropicDelta reads the delta.text path of an Anthropic-shaped
// stream chunk.
func anthropicDelta(data []byte) (string, bool) {
	var chunk struct {
		Delta struct {
			Text string `json:"text"`
		} `json:"delta"`
	}
	if err := json.Unmarshal(data, &chunk); err != nil {
		log.Warn("failed to decode stream chunk", "error", err.Error())
		return "", false
	}
	if chunk.Delta.Text == "" {
		return "", false
	}
	return chunk.Delta.Text, true
}
