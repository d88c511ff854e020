package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

type OllamaProvider struct {
	baseURL   string
	modelName string
	client    *http.Client
}

func NewOllamaProvider(baseURL, modelName string) EmbeddingProvider {
	return &OllamaProvider{
		baseURL:   baseURL,
		modelName: modelName,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *OllamaProvider) Generate(text string, taskType string) ([]float32, error) {
	// Ollama has no task-type concept; taskType is accepted for interface parity.
	payload := ollamaEmbedRequest{
		Model:  p.modelName,
		Prompt: text,
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", p.baseURL+"/api/embeddings", bytes.NewBuffer(payloadJson))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama embedding error: status %d, body %s", res.StatusCode, string(resBytes))
	}

	var embRes ollamaEmbedResponse
	if err := json.Unmarshal(resBytes, &embRes); err != nil {
		return nil, err
	}
	return embRes.Embedding, nil
}
