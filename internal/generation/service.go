package generation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/phrazzld/questiongen/internal/domain"
	"github.com/phrazzld/questiongen/internal/platform/logger"
)

// Generator produces exam questions from materials. It is the capability the
// task manager and the synchronous HTTP endpoints depend on.
type Generator interface {
	Generate(ctx context.Context, materials string, count int) (*domain.GenerationResult, error)
}

// ResultCache stores generation results keyed by a digest of the request.
type ResultCache interface {
	Get(key string) (*domain.GenerationResult, bool)
	Set(key string, result *domain.GenerationResult)
}

// Service wires the prompt builder, a Client and the parser together.
type Service struct {
	client  Client
	builder *PromptBuilder
	parser  *Parser
	cache   ResultCache
	logger  *slog.Logger
}

var _ Generator = (*Service)(nil)

// ServiceOption configures optional Service behaviour.
type ServiceOption func(*Service)

// WithCache makes the Service reuse results for identical prompts.
func WithCache(c ResultCache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// NewService creates a Service. The parser follows the builder's explanation setting.
func NewService(client Client, builder *PromptBuilder, l *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		client:  client,
		builder: builder,
		parser:  NewParser(builder.IncludeExplanation()),
		logger:  l.With(slog.String("component", "generation_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Model reports the backend model name.
func (s *Service) Model() string { return s.client.Model() }

// Generate validates the request, renders the prompt, calls the backend and
// parses its output. Only validation, template and backend errors are
// returned; unparseable output degrades to best-effort records.
func (s *Service) Generate(ctx context.Context, materials string, count int) (*domain.GenerationResult, error) {
	if err := domain.ValidateGenerationRequest(materials, count); err != nil {
		return nil, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	prompt, err := s.builder.Build(materials, count)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	key := s.cacheKey(prompt, count)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			log.DebugContext(ctx, "generation cache hit", slog.Int("num_questions", count))
			return cached.Clone(), nil
		}
	}

	start := time.Now()
	raw, err := s.client.Generate(ctx, prompt)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}

	result, path := s.parser.ParseWithPath(raw, materials, count, elapsed)
	if path != PathStrict {
		log.WarnContext(ctx, "model output was not valid JSON, recovered heuristically",
			slog.String("parse_path", string(path)),
			slog.Int("recovered", len(result.Questions)))
	}
	log.InfoContext(ctx, "questions generated",
		slog.Int("requested", count),
		slog.Int("generated", len(result.Questions)),
		slog.Float64("generation_time", result.GenerationTime),
		slog.String("parse_path", string(path)))

	// Recovered results are not cached.
	if s.cache != nil && path == PathStrict {
		s.cache.Set(key, result.Clone())
	}
	return &result, nil
}

func (s *Service) cacheKey(prompt string, count int) string {
	h := sha256.New()
	h.Write([]byte(s.client.Model()))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(count)))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}
