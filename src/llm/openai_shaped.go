package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"corpora/src/log"
)

// chatCompletionRequest is the body of an OpenAI-shaped streaming chat
// request, shared by the DeepSeek, OpenAI and generic-compatible
// adapters.
type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

// openAIDelta reads the choices[0].delta.content path of an
// OpenAI-shaped stream chunk.
func openAIDelta(data []byte) (string, bool) {
	var chunk struct {
		Choices []struct {
			Delta struct {
				Content string `json:"content"`
			} `json:"delta"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &chunk); err != nil {
		log.Warn("failed to decode stream chunk", "error", err.Error())
		return "", false
	}
	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
		return "", false
	}
	return chunk.Choices[0].Delta.Content, true
}

// chatMessages assembles system + trimmed history + final user prompt.
func chatMessages(req StreamRequest) []Message {
	messages := make([]Message, 0, HistoryWindow+2)
	messages = append(messages, Message{Role: RoleSystem, Content: req.System})
	messages = append(messages, TrimHistory(req.History)...)
	return append(messages, Message{Role: RoleUser, Content: req.Prompt})
}

// streamRequest issues one streaming POST and wraps the response body
// in an SSE stream. Any failure becomes a terminal one-chunk stream, so
// the caller always receives a well-formed, terminated sequence.
func streamRequest(ctx context.Context, client *http.Client, url string, headers map[string]string, body interface{}, delta deltaFunc, label string) Stream {
	jsonData, err := json.Marshal(body)
	if err != nil {
		log.Error(err, "failed to marshal provider request", "provider", label)
		return NewTextStream(fmt.Sprintf("%s API request failed: %v", label, err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		log.Error(err, "failed to create provider request", "provider", label)
		return NewTextStream(fmt.Sprintf("%s API request failed: %v", label, err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		log.Error(err, "provider request failed", "provider", label, "url", url)
		return NewTextStream(fmt.Sprintf("%s API request failed: %v", label, err))
	}

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		log.Error(fmt.Errorf("status %s", resp.Status), "provider returned error", "provider", label, "body", string(detail))
		return NewTextStream(fmt.Sprintf("%s API request failed: %s", label, resp.Status))
	}

	return newSSEStream(resp.Body, delta)
}
