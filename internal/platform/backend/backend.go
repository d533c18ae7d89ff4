// Package backend resolves the configured LLM backend into a single
// generation.Client. Selection happens once at startup.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/questiongen/internal/config"
	"github.com/phrazzld/questiongen/internal/generation"
	"github.com/phrazzld/questiongen/internal/platform/anthropic"
	"github.com/phrazzld/questiongen/internal/platform/gemini"
	"github.com/phrazzld/questiongen/internal/platform/mockllm"
	"github.com/phrazzld/questiongen/internal/platform/openai"
)

// Resolve returns the backend name chosen for cfg without creating a client.
// Mock mode overrides every other setting; "auto" prefers OpenAI and falls
// back to Gemini.
func Resolve(cfg config.LLMConfig) (string, error) {
	if cfg.MockMode {
		return config.BackendMock, nil
	}

	switch cfg.Backend {
	case config.BackendAuto, "":
		switch {
		case cfg.OpenAIAPIKey != "":
			return config.BackendOpenAI, nil
		case cfg.GeminiAPIKey != "":
			return config.BackendGemini, nil
		default:
			return "", fmt.Errorf("%w: no LLM API key configured; set OPENAI_API_KEY or GOOGLE_API_KEY, or enable mock mode",
				generation.ErrInvalidConfig)
		}
	case config.BackendOpenAI, config.BackendGemini, config.BackendAnthropic, config.BackendMock:
		return cfg.Backend, nil
	default:
		return "", fmt.Errorf("%w: unknown backend %q", generation.ErrInvalidConfig, cfg.Backend)
	}
}

// New creates the raw client for the backend Resolve selects.
func New(ctx context.Context, cfg config.LLMConfig) (generation.Client, string, error) {
	name, err := Resolve(cfg)
	if err != nil {
		return nil, "", err
	}

	var client generation.Client
	switch name {
	case config.BackendOpenAI:
		client, err = openai.NewClient(openai.OptionsFromConfig(cfg))
	case config.BackendGemini:
		client, err = gemini.NewClient(ctx, gemini.OptionsFromConfig(cfg))
	case config.BackendAnthropic:
		client, err = anthropic.NewClient(anthropic.OptionsFromConfig(cfg))
	case config.BackendMock:
		client = mockllm.New(0)
	}
	if err != nil {
		return nil, "", err
	}
	return client, name, nil
}

// NewDecorated creates the backend client wrapped with logging, the per-call
// timeout and the shared concurrency limit.
func NewDecorated(ctx context.Context, cfg config.LLMConfig, l *slog.Logger) (generation.Client, string, error) {
	client, name, err := New(ctx, cfg)
	if err != nil {
		return nil, "", err
	}

	client = generation.WithTimeout(client, cfg.RequestTimeout)
	client = generation.WithLogging(client, l)
	client = generation.WithConcurrencyLimit(client, cfg.MaxConcurrent)

	l.Info("llm backend selected",
		slog.String("backend", name),
		slog.String("model", client.Model()),
		slog.Int("max_concurrent", cfg.MaxConcurrent),
		slog.Duration("request_timeout", cfg.RequestTimeout))
	return client, name, nil
}
