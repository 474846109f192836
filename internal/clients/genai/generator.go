// Package genai wraps the generative text model used to phrase answers.
package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"youthunion-chat/internal/common/config"
	"youthunion-chat/internal/common/errors"
	"youthunion-chat/internal/common/metrics"
)

const collaborator = "genai"

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// New selects the implementation for cfg.Provider.
func New(ctx context.Context, cfg config.GenAIConfig, log Logger) (Generator, error) {
	if strings.EqualFold(cfg.Provider, "http") {
		return NewHTTPGenerator(cfg, log), nil
	}

	model, err := NewModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init %s model: %w", cfg.Provider, err)
	}
	return NewLangChainGenerator(model, cfg, log), nil
}

// NewModel builds a langchaingo model for googleai, openai or ollama.
func NewModel(ctx context.Context, cfg config.GenAIConfig) (llms.Model, error) {
	switch strings.ToLower(cfg.Provider) {
	case "googleai", "google", "gemini":
		return googleai.New(ctx,
			googleai.WithAPIKey(cfg.APIKey),
			googleai.WithDefaultModel(cfg.Model),
		)
	case "openai":
		opts := []openai.Option{
			openai.WithModel(cfg.Model),
			openai.WithToken(cfg.APIKey),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(opts...)
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		return ollama.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

// LangChainGenerator sends single-prompt completions through langchaingo.
type LangChainGenerator struct {
	model       llms.Model
	provider    string
	maxTokens   int
	temperature float64
	timeout     int
	logger      Logger
}

func NewLangChainGenerator(model llms.Model, cfg config.GenAIConfig, log Logger) *LangChainGenerator {
	return &LangChainGenerator{
		model:       model,
		provider:    cfg.Provider,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      log,
	}
}

func (g *LangChainGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.GetDuration(g.timeout))
		defer cancel()
	}

	var opts []llms.CallOption
	if g.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(g.maxTokens))
	}
	if g.temperature > 0 {
		opts = append(opts, llms.WithTemperature(g.temperature))
	}

	text, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt, opts...)
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("empty completion")
	}
	metrics.ObserveCollaborator(collaborator, err)
	if err != nil {
		g.logger.Error("generation failed", map[string]interface{}{
			"provider": g.provider,
			"error":    err.Error(),
		})
		if errors.IsTimeout(err) || ctx.Err() != nil {
			return "", errors.NewGenAITimeoutError(g.provider, err)
		}
		return "", errors.NewGenAIRequestFailedError(g.provider, err)
	}

	g.logger.Info("generation completed", map[string]interface{}{
		"provider":    g.provider,
		"promptChars": len(prompt),
		"answerChars": len(text),
	})
	return text, nil
}
