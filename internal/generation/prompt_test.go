package generation_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/phrazzld/questiongen/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptBuilder_Build(t *testing.T) {
	b, err := generation.NewPromptBuilder("", false)
	require.NoError(t, err)

	prompt, err := b.Build("Mitochondria produce ATP.", 3)
	require.NoError(t, err)

	assert.Contains(t, prompt, "generate 3 high-quality exam questions")
	assert.Contains(t, prompt, "Mitochondria produce ATP.")
	assert.Contains(t, prompt, `"questions": [`)
	assert.Contains(t, prompt, `"difficulty": "medium"`)
	assert.NotContains(t, prompt, "explanation")
}

func TestPromptBuilder_BuildWithExplanation(t *testing.T) {
	b, err := generation.NewPromptBuilder("", true)
	require.NoError(t, err)
	assert.True(t, b.IncludeExplanation())

	prompt, err := b.Build("Mitochondria produce ATP.", 1)
	require.NoError(t, err)
	assert.Contains(t, prompt, `"explanation": "why the answer is correct"`)
}

func TestPromptBuilder_LongMaterialsUseFirstChunk(t *testing.T) {
	b, err := generation.NewPromptBuilder("", false)
	require.NoError(t, err)

	head := strings.Repeat("alpha ", 700)
	tail := strings.Repeat("omega ", 1000)
	materials := head + "\n\n" + tail
	require.Greater(t, utf8.RuneCountInString(materials), generation.SplitThreshold)

	prompt, err := b.Build(materials, 2)
	require.NoError(t, err)

	assert.Contains(t, prompt, "alpha")
	assert.NotContains(t, prompt, "omega")
}

func TestPromptBuilder_ShortMaterialsUntouched(t *testing.T) {
	b, err := generation.NewPromptBuilder("", false)
	require.NoError(t, err)

	materials := strings.Repeat("x", generation.SplitThreshold)
	prompt, err := b.Build(materials, 2)
	require.NoError(t, err)
	assert.Contains(t, prompt, materials)
}

func TestPromptBuilder_CustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("{{.NumQuestions}} about: {{.Materials}}"), 0o600))

	b, err := generation.NewPromptBuilder(path, false)
	require.NoError(t, err)

	prompt, err := b.Build("stars", 4)
	require.NoError(t, err)
	assert.Equal(t, "4 about: stars", prompt)
}

func TestNewPromptBuilder_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := generation.NewPromptBuilder(filepath.Join(t.TempDir(), "nope.tmpl"), false)
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})

	t.Run("unparseable template", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.tmpl")
		require.NoError(t, os.WriteFile(path, []byte("{{.Materials"), 0o600))

		_, err := generation.NewPromptBuilder(path, false)
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})
}

func TestPromptBuilder_BrokenTemplateFailsAtBuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unknown.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("{{.Syllabus}}"), 0o600))

	b, err := generation.NewPromptBuilder(path, false)
	require.NoError(t, err)

	_, err = b.Build("stars", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute prompt template")
}
