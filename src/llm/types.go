package llm

import "context"

// Provider identifies one supported LLM vendor protocol.
type Provider string

const (
	ProviderDeepSeek   Provider = "deepseek"
	ProviderOpenAI     Provider = "openai"
	ProviderAnthropic  Provider = "anthropic"
	ProviderCompatible Provider = "compatible"
)

// ParseProvider maps a stored provider name to a known variant. Unknown
// names fall back to the generic OpenAI-compatible protocol.
func ParseProvider(name string) Provider {
	switch Provider(name) {
	case ProviderDeepSeek, ProviderOpenAI, ProviderAnthropic:
		return Provider(name)
	default:
		return ProviderCompatible
	}
}

// ModelConfig is the resolved model selection for one tenant.
type ModelConfig struct {
	Provider   Provider `json:"provider"`
	ModelID    string   `json:"model_id"`
	APIBaseURL string   `json:"api_base_url"`
	APIKey     string   `json:"api_key"`
}

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// HistoryWindow is the number of trailing conversation turns forwarded
// to a provider, bounding prompt size.
const HistoryWindow = 6

// TrimHistory keeps the last HistoryWindow user/assistant turns.
func TrimHistory(history []Message) []Message {
	trimmed := make([]Message, 0, HistoryWindow)
	for _, msg := range history {
		if msg.Role == RoleUser || msg.Role == RoleAssistant {
			trimmed = append(trimmed, msg)
		}
	}
	if len(trimmed) > HistoryWindow {
		trimmed = trimmed[len(trimmed)-HistoryWindow:]
	}
	return trimmed
}

// StreamRequest carries one grounded generation request to an adapter.
type StreamRequest struct {
	System  string
	Prompt  string
	History []Message
}

// StreamAdapter turns a grounded prompt plus history into a token
// stream from one vendor API. Implementations never fail outright: a
// missing key or upstream failure becomes a stream whose single
// terminal chunk describes the condition.
type StreamAdapter interface {
	Stream(ctx context.Context, config ModelConfig, req StreamRequest) Stream
}
