// Package openai implements generation.Client for OpenAI and any
// OpenAI-compatible chat completion endpoint (configured via a base URL).
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openaisdk "github.com/sashabaranov/go-openai"

	"github.com/phrazzld/questiongen/internal/config"
	"github.com/phrazzld/questiongen/internal/generation"
)

// Client implements generation.Client using the chat completions API.
type Client struct {
	client      *openaisdk.Client
	model       string
	temperature float32
	maxTokens   int
}

var _ generation.Client = (*Client)(nil)

// Options holds the settings NewClient reads from configuration.
type Options struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
}

// OptionsFromConfig extracts the OpenAI settings from cfg.
func OptionsFromConfig(cfg config.LLMConfig) Options {
	return Options{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		BaseURL:     cfg.OpenAIBaseURL,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
}

// NewClient creates an OpenAI client.
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrInvalidConfig)
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("%w: openai model cannot be empty", generation.ErrInvalidConfig)
	}

	cfg := openaisdk.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	return &Client{
		client:      openaisdk.NewClientWithConfig(cfg),
		model:       opts.Model,
		temperature: float32(opts.Temperature),
		maxTokens:   opts.MaxTokens,
	}, nil
}

// Generate implements generation.Client.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openaisdk.ChatCompletionRequest{
		Model: c.model,
		Messages: []openaisdk.ChatCompletionMessage{
			{Role: openaisdk.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
		// Compatible servers expect max_tokens rather than max_completion_tokens.
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", mapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in openai response", generation.ErrInvalidResponse)
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openaisdk.FinishReasonContentFilter {
		return "", fmt.Errorf("%w: response removed by content filter", generation.ErrContentBlocked)
	}

	text := strings.TrimSpace(choice.Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: openai returned empty content", generation.ErrInvalidResponse)
	}
	return text, nil
}

// Model implements generation.Client.
func (c *Client) Model() string { return c.model }

func mapError(err error) error {
	var apiErr *openaisdk.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: openai rejected credentials: %v", generation.ErrInvalidConfig, err)
		}
	}
	return fmt.Errorf("%w: openai: %v", generation.ErrGenerationFailed, err)
}
