package factory

import (
	"fmt"

	"ai-studypal-be/pkg/llm"
	"ai-studypal-be/pkg/llm/gemini"
	"ai-studypal-be/pkg/llm/ollama"
)

// NewLLMProvider builds the configured LLM backend.
func NewLLMProvider(provider, model, ollamaBaseURL, geminiAPIKey string) (llm.LLMProvider, error) {
	switch provider {
	case "gemini":
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires GOOGLE_GEMINI_API_KEY")
		}
		return gemini.NewGeminiProvider(geminiAPIKey, model), nil
	case "ollama":
		return ollama.NewOllamaProvider(ollamaBaseURL, model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", provider)
	}
}
