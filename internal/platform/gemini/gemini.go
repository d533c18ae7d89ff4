package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/phrazzld/questiongen/internal/config"
	"github.com/phrazzld/questiongen/internal/generation"
)

// Client implements generation.Client using the Gemini API.
type Client struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
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

// OptionsFromConfig extracts the Gemini settings from cfg.
func OptionsFromConfig(cfg config.LLMConfig) Options {
	return Options{
		APIKey:      cfg.GeminiAPIKey,
		Model:       cfg.GeminiModel,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
}

// NewClient creates a Gemini client.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("%w: gemini model cannot be empty", generation.ErrInvalidConfig)
	}

	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return &Client{
		client:      client,
		model:       opts.Model,
		temperature: float32(opts.Temperature),
		maxTokens:   int32(opts.MaxTokens),
	}, nil
}

// Generate implements generation.Client.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	temp := c.temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: c.maxTokens,
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", mapError(err)
	}

	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked: %s", generation.ErrContentBlocked, result.PromptFeedback.BlockReason)
	}
	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: response stopped by safety settings", generation.ErrContentBlocked)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("%w: gemini returned no text", generation.ErrInvalidResponse)
	}
	return text, nil
}

// Model implements generation.Client.
func (c *Client) Model() string { return c.model }

func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: gemini rejected credentials: %v", generation.ErrInvalidConfig, err)
		}
	}
	return fmt.Errorf("%w: gemini: %v", generation.ErrGenerationFailed, err)
}
