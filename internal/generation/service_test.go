package generation_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/phrazzld/questiongen/internal/domain"
	"github.com/phrazzld/questiongen/internal/generation"
	"github.com/phrazzld/questiongen/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validResponse = `{"questions": [
	{"question": "What is photosynthesis?", "answer": "Turning light into chemical energy.", "difficulty": "easy", "topic": "biology"},
	{"question": "Which organelle hosts it?", "answer": "The chloroplast.", "difficulty": "medium", "topic": "biology"},
	{"question": "Which gas is released?", "answer": "Oxygen.", "difficulty": "easy", "topic": "biology"}
]}`

// mapCache is a minimal ResultCache for tests.
type mapCache struct {
	mu   sync.Mutex
	data map[string]*domain.GenerationResult
}

func newMapCache() *mapCache { return &mapCache{data: map[string]*domain.GenerationResult{}} }

func (c *mapCache) Get(key string) (*domain.GenerationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.data[key]
	return r, ok
}

func (c *mapCache) Set(key string, r *domain.GenerationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = r
}

func newService(t *testing.T, client generation.Client, opts ...generation.ServiceOption) *generation.Service {
	t.Helper()
	b, err := generation.NewPromptBuilder("", false)
	require.NoError(t, err)
	_, l := logger.NewTestLogger(t)
	return generation.NewService(client, b, l, opts...)
}

func TestService_Generate(t *testing.T) {
	mock := generation.NewMockClient(generation.MockResponse{Text: validResponse})
	svc := newService(t, mock)

	result, err := svc.Generate(context.Background(), sampleMaterials, 2)
	require.NoError(t, err)

	require.Len(t, result.Questions, 2)
	assert.Equal(t, "What is photosynthesis?", result.Questions[0].Question)
	assert.GreaterOrEqual(t, result.GenerationTime, 0.0)
	require.Equal(t, 1, mock.Calls())
	assert.Contains(t, mock.Prompts[0], sampleMaterials)
	assert.Contains(t, mock.Prompts[0], "generate 2 high-quality")
}

func TestService_GenerateValidation(t *testing.T) {
	mock := generation.NewMockClient(generation.MockResponse{Text: validResponse})
	svc := newService(t, mock)

	_, err := svc.Generate(context.Background(), "  ", 3)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Generate(context.Background(), sampleMaterials, 11)
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Zero(t, mock.Calls(), "invalid requests never reach the backend")
}

func TestService_GenerateClientError(t *testing.T) {
	failure := errors.New("backend down")
	svc := newService(t, generation.NewMockClient(generation.MockResponse{Err: failure}))

	result, err := svc.Generate(context.Background(), sampleMaterials, 2)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, failure)
}

func TestService_GenerateUnparseableOutputStillSucceeds(t *testing.T) {
	svc := newService(t, generation.NewMockClient(generation.MockResponse{Text: "no structure at all"}))

	result, err := svc.Generate(context.Background(), sampleMaterials, 2)
	require.NoError(t, err)
	require.Len(t, result.Questions, 1)
	assert.True(t, result.Questions[0].Valid())
}

func TestService_Cache(t *testing.T) {
	mock := generation.NewMockClient(generation.MockResponse{Text: validResponse})
	cache := newMapCache()
	svc := newService(t, mock, generation.WithCache(cache))

	first, err := svc.Generate(context.Background(), sampleMaterials, 3)
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), sampleMaterials, 3)
	require.NoError(t, err)

	assert.Equal(t, 1, mock.Calls())
	assert.Equal(t, first, second)

	second.Questions[0].Question = "mutated"
	third, err := svc.Generate(context.Background(), sampleMaterials, 3)
	require.NoError(t, err)
	assert.Equal(t, "What is photosynthesis?", third.Questions[0].Question, "cached results are copied")

	_, err = svc.Generate(context.Background(), sampleMaterials, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, mock.Calls(), "a different count is a different request")
}

func TestService_CacheSkipsRecoveredResults(t *testing.T) {
	mock := generation.NewMockClient(generation.MockResponse{Text: "Question: Why?\nAnswer: Because."})
	cache := newMapCache()
	svc := newService(t, mock, generation.WithCache(cache))

	_, err := svc.Generate(context.Background(), sampleMaterials, 1)
	require.NoError(t, err)
	_, err = svc.Generate(context.Background(), sampleMaterials, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, mock.Calls())
}
