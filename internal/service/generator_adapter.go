package service

import (
	"context"

	"ai-studypal-be/pkg/gate"
	"ai-studypal-be/pkg/llm"
)

// llmGenerator adapts an llm.LLMProvider to the gate pipeline's Generator
// contract. The descriptor's model hint, when set, overrides the provider's
// configured default.
type llmGenerator struct {
	provider llm.LLMProvider
}

func NewLLMGenerator(provider llm.LLMProvider) gate.Generator {
	return &llmGenerator{provider: provider}
}

func (g *llmGenerator) Generate(ctx context.Context, desc gate.Descriptor) (string, error) {
	opts := []llm.Option{}
	if desc.ModelHint != "" {
		opts = append(opts, llm.WithModel(desc.ModelHint))
	}
	return g.provider.Generate(ctx, desc.Prompt, opts...)
}
