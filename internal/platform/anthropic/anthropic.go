// Package anthropic implements generation.Client using Anthropic's Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/phrazzld/questiongen/internal/config"
	"github.com/phrazzld/questiongen/internal/generation"
)

// Client implements generation.Client.
type Client struct {
	client      *anthropicsdk.Client
	model       string
	temperature float64
	maxTokens   int64
}

var _ generation.Client = (*Client)(nil)

// Options holds the settings NewClient reads from configuration.
type Options struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	// BaseURL overrides the API endpoint; used by tests.
	BaseURL string
}

// OptionsFromConfig extracts the Anthropic settings from cfg.
func OptionsFromConfig(cfg config.LLMConfig) Options {
	return Options{
		APIKey:      cfg.AnthropicAPIKey,
		Model:       cfg.AnthropicModel,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
}

// NewClient creates an Anthropic client. SDK-level retries are disabled;
// a failed call fails its task.
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key cannot be empty", generation.ErrInvalidConfig)
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("%w: anthropic model cannot be empty", generation.ErrInvalidConfig)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := anthropicsdk.NewClient(reqOpts...)
	return &Client{
		client:      &client,
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   int64(opts.MaxTokens),
	}, nil
}

// Generate implements generation.Client.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropicsdk.MessageNewParams{
		Model:       anthropicsdk.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropicsdk.Float(c.temperature),
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", mapError(err)
	}

	if msg.StopReason == anthropicsdk.StopReasonRefusal {
		return "", fmt.Errorf("%w: model refused the request", generation.ErrContentBlocked)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: no text content in anthropic response", generation.ErrInvalidResponse)
	}
	return text, nil
}

// Model implements generation.Client.
func (c *Client) Model() string { return c.model }

func mapError(err error) error {
	var apiErr *anthropicsdk.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: anthropic rejected credentials: %v", generation.ErrInvalidConfig, err)
		}
	}
	return fmt.Errorf("%w: anthropic: %v", generation.ErrGenerationFailed, err)
}
