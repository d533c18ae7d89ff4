package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/phrazzld/questiongen/internal/platform/logger"
	"github.com/phrazzld/questiongen/internal/redact"
)

// loggingClient records the latency and outcome of every backend call.
type loggingClient struct {
	inner  Client
	logger *slog.Logger
}

// WithLogging wraps a Client with structured request logging. Error text is
// redacted before it is logged.
func WithLogging(c Client, l *slog.Logger) Client {
	return &loggingClient{inner: c, logger: l.With(slog.String("component", "llm_client"))}
}

func (c *loggingClient) Generate(ctx context.Context, prompt string) (string, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)
	start := time.Now()

	out, err := c.inner.Generate(ctx, prompt)

	attrs := []any{
		slog.String("model", c.inner.Model()),
		slog.Int("prompt_length", len(prompt)),
		slog.Duration("latency", time.Since(start)),
	}
	if err != nil {
		log.ErrorContext(ctx, "llm request failed", append(attrs, slog.String("error", redact.Error(err)))...)
		return "", err
	}

	log.DebugContext(ctx, "llm request completed",
		append(attrs,
			slog.Int("response_length", len(out)),
			slog.String("response_preview", redact.Preview(out, 500)))...)
	return out, nil
}

func (c *loggingClient) Model() string { return c.inner.Model() }

// timeoutClient bounds each backend call.
type timeoutClient struct {
	inner   Client
	timeout time.Duration
}

// WithTimeout wraps a Client so every call runs under a context deadline of d.
// A non-positive d returns c unchanged.
func WithTimeout(c Client, d time.Duration) Client {
	if d <= 0 {
		return c
	}
	return &timeoutClient{inner: c, timeout: d}
}

func (c *timeoutClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.inner.Generate(ctx, prompt)
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("%w: request exceeded %s: %w", ErrGenerationFailed, c.timeout, err)
	}
	return out, err
}

func (c *timeoutClient) Model() string { return c.inner.Model() }

// limitedClient caps the number of in-flight backend calls.
type limitedClient struct {
	inner Client
	sem   *semaphore.Weighted
}

// WithConcurrencyLimit wraps a Client so at most limit calls run at once.
// Callers block until a slot frees up or their context is cancelled.
func WithConcurrencyLimit(c Client, limit int) Client {
	if limit < 1 {
		limit = 1
	}
	return &limitedClient{inner: c, sem: semaphore.NewWeighted(int64(limit))}
}

func (c *limitedClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%w: waiting for backend capacity: %w", ErrGenerationFailed, err)
	}
	defer c.sem.Release(1)
	return c.inner.Generate(ctx, prompt)
}

func (c *limitedClient) Model() string { return c.inner.Model() }
