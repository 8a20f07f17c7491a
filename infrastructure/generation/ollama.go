// Package generation provides the Ollama-backed implementation of the
// application's Generator port.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 120 * time.Second

// OllamaGenerator produces completions through an Ollama instance via
// its /api/generate endpoint, with streaming disabled so the whole
// completion arrives in one response.
type OllamaGenerator struct {
	endpoint string
	model    string
	client   *http.Client
	logger   *zap.Logger
}

// NewOllamaGenerator creates a generator for the given endpoint and model
func NewOllamaGenerator(endpoint, model string, logger *zap.Logger) *OllamaGenerator {
	return &OllamaGenerator{
		endpoint: endpoint,
		model:    model,
		client:   &http.Client{Timeout: defaultTimeout},
		logger:   logger,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate produces a completion for the given prompt
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{Model: g.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("generation request returned %d: %s", resp.StatusCode, string(body))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}

	text := strings.TrimSpace(result.Response)
	if text == "" {
		return "", fmt.Errorf("generation response was empty")
	}

	g.logger.Debug("Generated completion",
		zap.String("model", g.model),
		zap.Int("promptLength", len(prompt)),
		zap.Int("responseLength", len(text)),
		zap.Duration("duration", time.Since(start)),
	)

	return text, nil
}
