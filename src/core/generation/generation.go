package generation

import (
	"context"
	"net/http"
	"time"

	"corpora/src/llm"
	"corpora/src/log"
)

// providerTimeout bounds the total duration of one provider call.
const providerTimeout = 300 * time.Second

// PreferenceStore resolves a tenant's preferred model. It returns
// (nil, nil) when the tenant has no preference row.
type PreferenceStore interface {
	GetDefaultModel(ctx context.Context, tenantID int64) (*llm.ModelConfig, error)
}

// Service selects a provider adapter per tenant, builds the grounded
// prompt and streams the answer. Adapter failures surface as terminal
// text chunks inside the stream, never as errors from Generate.
type Service struct {
	prefs    PreferenceStore
	defaults llm.ModelConfig
	adapters map[llm.Provider]llm.StreamAdapter
}

// NewService wires the closed set of provider adapters over one shared
// HTTP client. prefs may be nil, in which case every tenant uses the
// default configuration.
func NewService(prefs PreferenceStore, defaults llm.ModelConfig) *Service {
	client := &http.Client{Timeout: providerTimeout}
	return &Service{
		prefs:    prefs,
		defaults: defaults,
		adapters: map[llm.Provider]llm.StreamAdapter{
			llm.ProviderDeepSeek:   llm.NewDeepSeekAdapter(client),
			llm.ProviderOpenAI:     llm.NewOpenAIAdapter(client),
			llm.ProviderAnthropic:  llm.NewAnthropicAdapter(client),
			llm.ProviderCompatible: llm.NewCompatibleAdapter(client),
		},
	}
}

// ResolveModel returns the tenant's preferred model configuration,
// falling back to the default provider when no preference exists or the
// preference store is unavailable. The fallback never fails.
func (s *Service) ResolveModel(ctx context.Context, tenantID int64) llm.ModelConfig {
	if s.prefs == nil {
		return s.defaults
	}

	config, err := s.prefs.GetDefaultModel(ctx, tenantID)
	if err != nil {
		log.Error(err, "failed to look up model preference, using default", "tenant", tenantID)
		return s.defaults
	}
	if config == nil {
		log.Warn("no model preference for tenant, using default", "tenant", tenantID)
		return s.defaults
	}

	config.Provider = llm.ParseProvider(string(config.Provider))
	return *config
}

// Generate resolves the tenant's model, builds the grounded prompt from
// the retrieved passages and history, and returns the provider's answer
// stream. The returned stream is always well-formed and terminated.
func (s *Service) Generate(ctx context.Context, tenantID int64, query string, contextDocs []string, history []llm.Message) llm.Stream {
	config := s.ResolveModel(ctx, tenantID)

	adapter, ok := s.adapters[config.Provider]
	if !ok {
		adapter = s.adapters[llm.ProviderCompatible]
	}

	req := llm.StreamRequest{
		System:  SystemMessage(tenantID),
		Prompt:  BuildPrompt(query, contextDocs, history),
		History: history,
	}

	log.Info("starting generation", "tenant", tenantID, "provider", config.Provider, "model", config.ModelID)
	return adapter.Stream(ctx, config, req)
}
