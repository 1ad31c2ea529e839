package generation_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"corpora/src/core/generation"
	"corpora/src/llm"
)

type stubPrefs struct {
	config *llm.ModelConfig
	err    error
}

func (s stubPrefs) GetDefaultModel(ctx context.Context, tenantID int64) (*llm.ModelConfig, error) {
	return s.config, s.err
}

var testDefaults = llm.ModelConfig{
	Provider:   llm.ProviderDeepSeek,
	ModelID:    "deepseek-chat",
	APIBaseURL: "https://api.deepseek.com",
	APIKey:     "default-key",
}

func TestResolveModel(t *testing.T) {
	ctx := context.Background()

	stored := &llm.ModelConfig{
		Provider:   "openai",
		ModelID:    "gpt-4o",
		APIBaseURL: "https://api.openai.com/v1",
		APIKey:     "tenant-key",
	}

	tests := []struct {
		name  string
		prefs generation.PreferenceStore
		want  llm.ModelConfig
	}{
		{
			name:  "nil store falls back to defaults",
			prefs: nil,
			want:  testDefaults,
		},
		{
			name:  "store error falls back to defaults",
			prefs: stubPrefs{err: errors.New("connection refused")},
			want:  testDefaults,
		},
		{
			name:  "no preference row falls back to defaults",
			prefs: stubPrefs{},
			want:  testDefaults,
		},
		{
			name:  "stored preference wins",
			prefs: stubPrefs{config: stored},
			want: llm.ModelConfig{
				Provider:   llm.ProviderOpenAI,
				ModelID:    "gpt-4o",
				APIBaseURL: "https://api.openai.com/v1",
				APIKey:     "tenant-key",
			},
		},
		{
			name: "unknown provider maps to compatible",
			prefs: stubPrefs{config: &llm.ModelConfig{
				Provider:   "mistral",
				ModelID:    "mistral-large",
				APIBaseURL: "https://api.mistral.ai",
				APIKey:     "k",
			}},
			want: llm.ModelConfig{
				Provider:   llm.ProviderCompatible,
				ModelID:    "mistral-large",
				APIBaseURL: "https://api.mistral.ai",
				APIKey:     "k",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := generation.NewService(tt.prefs, testDefaults)
			got := svc.ResolveModel(ctx, 42)
			if got != tt.want {
				t.Errorf("ResolveModel() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuildPromptWithoutHistory(t *testing.T) {
	prompt := generation.BuildPrompt("what is the sky", []string{"The sky is blue.", "Grass is green."}, nil)

	if !strings.Contains(prompt, "Document 1: The sky is blue.") {
		t.Errorf("prompt missing first document block:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Document 2: Grass is green.") {
		t.Errorf("prompt missing second document block:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Question: what is the sky") {
		t.Errorf("prompt missing question:\n%s", prompt)
	}
	if strings.Contains(prompt, "Conversation history") {
		t.Errorf("prompt without history mentions history:\n%s", prompt)
	}
}

func TestBuildPromptWithHistory(t *testing.T) {
	history := []llm.Message{
		{Role: llm.RoleUser, Content: "hi"},
		{Role: llm.RoleAssistant, Content: "hello"},
	}
	prompt := generation.BuildPrompt("and now?", []string{"doc text"}, history)

	if !strings.Contains(prompt, "Conversation history:") {
		t.Errorf("prompt missing history section:\n%s", prompt)
	}
	if !strings.Contains(prompt, "user: hi") || !strings.Contains(prompt, "assistant: hello") {
		t.Errorf("prompt missing history turns:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Current question: and now?") {
		t.Errorf("prompt missing current question:\n%s", prompt)
	}
}

func TestGenerateWithoutAPIKey(t *testing.T) {
	defaults := testDefaults
	defaults.APIKey = ""
	svc := generation.NewService(nil, defaults)

	stream := svc.Generate(context.Background(), 7, "question", []string{"doc"}, nil)
	defer stream.Close()

	chunk, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv() error = %v, want first chunk", err)
	}
	if !strings.Contains(chunk, "API key") {
		t.Errorf("chunk = %q, want API key error text", chunk)
	}
	if _, err := stream.Recv(); err != io.EOF {
		t.Errorf("second Recv() error = %v, want io.EOF", err)
	}
}
