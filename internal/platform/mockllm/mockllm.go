// Package mockllm provides an offline generation.Client that fabricates
// well-formed question JSON from the prompt. It backs mock mode, which lets
// the service run end to end without any provider credentials.
package mockllm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/questiongen/internal/domain"
	"github.com/phrazzld/questiongen/internal/generation"
)

// ModelName is reported by Client.Model.
const ModelName = "mock"

var (
	countPattern     = regexp.MustCompile(`generate (\d+) `)
	materialsPattern = regexp.MustCompile(`(?s)Materials:\n(.*?)\n\n`)
)

var difficulties = []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard}

var templates = []string{
	"What is the central idea of the passage beginning %q?",
	"Summarize the key terms introduced in %q.",
	"How would you apply the concept described in %q to a new example?",
	"What evidence supports the main claim in %q?",
	"Compare the ideas in %q with a related concept you know.",
}

// Client implements generation.Client without network access.
type Client struct {
	// Latency is slept before answering to mimic a remote call.
	Latency time.Duration
}

var _ generation.Client = (*Client)(nil)

// New returns a mock client with the given simulated latency.
func New(latency time.Duration) *Client {
	return &Client{Latency: latency}
}

// Generate implements generation.Client.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %w", generation.ErrGenerationFailed, ctx.Err())
		}
	}

	count := domain.MaxQuestions
	if m := countPattern.FindStringSubmatch(prompt); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			count = n
		}
	}

	subject := "the provided materials"
	if m := materialsPattern.FindStringSubmatch(prompt); m != nil {
		if s := firstWords(m[1], 8); s != "" {
			subject = s
		}
	}
	withExplanation := strings.Contains(prompt, `"explanation"`)

	questions := make([]domain.QuestionRecord, 0, count)
	for i := 0; i < count; i++ {
		q := domain.QuestionRecord{
			Question:   fmt.Sprintf(templates[i%len(templates)], subject),
			Answer:     fmt.Sprintf("A complete answer restates the main points of %q and supports them with details from the text.", subject),
			Difficulty: difficulties[i%len(difficulties)],
			Topic:      "general",
		}
		if withExplanation {
			q.Explanation = "This question checks recall and understanding of the materials."
		}
		questions = append(questions, q)
	}

	out, err := json.MarshalIndent(map[string]any{"questions": questions}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}
	return string(out), nil
}

// Model implements generation.Client.
func (c *Client) Model() string { return ModelName }

func firstWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}
