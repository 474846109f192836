package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"youthunion-chat/internal/common/config"
	"youthunion-chat/internal/common/errors"
	commonhttp "youthunion-chat/internal/common/http"
	"youthunion-chat/internal/common/metrics"
)

const generatePath = "/api/ai/generate"

// HTTPGenerator calls a text generation gateway that accepts
// {prompt, max_tokens, temperature} and answers {text}.
type HTTPGenerator struct {
	baseURL     string
	client      *commonhttp.Client
	maxTokens   int
	temperature float64
	logger      Logger
}

func NewHTTPGenerator(cfg config.GenAIConfig, log Logger) *HTTPGenerator {
	return &HTTPGenerator{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		client:      commonhttp.NewClient(config.GetDuration(cfg.Timeout), commonhttp.WithMaxRetries(cfg.MaxRetries)),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      log,
	}
}

type generateRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type generateResponse struct {
	Text string `json:"text"`
}

func (g *HTTPGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := g.generate(ctx, prompt)
	metrics.ObserveCollaborator(collaborator, err)
	if err != nil {
		g.logger.Error("generation failed", map[string]interface{}{
			"provider": "http",
			"error":    err.Error(),
		})
		return "", err
	}
	return text, nil
}

func (g *HTTPGenerator) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Prompt: prompt, MaxTokens: g.maxTokens, Temperature: g.temperature})
	if err != nil {
		return "", errors.NewGenAIRequestFailedError("http", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return "", errors.NewGenAIRequestFailedError("http", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.DoWithRetry(ctx, req)
	if err != nil {
		if errors.IsTimeout(err) || ctx.Err() != nil {
			return "", errors.NewGenAITimeoutError("http", err)
		}
		return "", errors.NewGenAIRequestFailedError("http", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", errors.NewGenAIRequestFailedError("http", fmt.Errorf("status %d: %s", resp.StatusCode, raw))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.NewGenAIRequestFailedError("http", fmt.Errorf("decode error: %w", err))
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", errors.NewGenAIRequestFailedError("http", fmt.Errorf("empty completion"))
	}
	return out.Text, nil
}
