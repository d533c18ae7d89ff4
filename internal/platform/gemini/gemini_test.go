package gemini_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/questiongen/internal/config"
	"github.com/phrazzld/questiongen/internal/generation"
	"github.com/phrazzld/questiongen/internal/platform/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *gemini.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := gemini.NewClient(context.Background(), gemini.Options{
		APIKey:      "test-key",
		Model:       "gemini-2.0-flash",
		Temperature: 0.7,
		MaxTokens:   2000,
		BaseURL:     server.URL,
	})
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestClient_Generate(t *testing.T) {
	var gotPath, gotBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		writeJSON(t, w, http.StatusOK, map[string]any{
			"candidates": []map[string]any{{
				"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": `{"questions": []}`}}},
				"finishReason": "STOP",
			}},
		})
	})

	out, err := c.Generate(context.Background(), "make questions")
	require.NoError(t, err)

	assert.Equal(t, `{"questions": []}`, out)
	assert.Contains(t, gotPath, "gemini-2.0-flash:generateContent")
	assert.Contains(t, gotBody, "make questions")
	assert.Equal(t, "gemini-2.0-flash", c.Model())
}

func TestClient_GenerateSafetyBlock(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"promptFeedback": map[string]any{"blockReason": "SAFETY"},
		})
	})

	_, err := c.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, generation.ErrContentBlocked)
}

func TestClient_GenerateEmptyText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"candidates": []map[string]any{}})
	})

	_, err := c.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)
}

func TestClient_GenerateAPIErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusForbidden, want: generation.ErrInvalidConfig},
		{name: "server error", status: http.StatusInternalServerError, want: generation.ErrGenerationFailed},
		{name: "rate limited", status: http.StatusTooManyRequests, want: generation.ErrGenerationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tt.status, map[string]any{
					"error": map[string]any{"code": tt.status, "message": "nope", "status": strings.ToUpper(tt.name)},
				})
			})

			_, err := c.Generate(context.Background(), "prompt")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewClient_Validation(t *testing.T) {
	_, err := gemini.NewClient(context.Background(), gemini.Options{Model: "m"})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = gemini.NewClient(context.Background(), gemini.Options{APIKey: "k"})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestOptionsFromConfig(t *testing.T) {
	opts := gemini.OptionsFromConfig(config.LLMConfig{
		GeminiAPIKey: "g-key",
		GeminiModel:  "gemini-2.0-flash",
		Temperature:  0.3,
		MaxTokens:    512,
	})
	assert.Equal(t, gemini.Options{APIKey: "g-key", Model: "gemini-2.0-flash", Temperature: 0.3, MaxTokens: 512}, opts)
}
