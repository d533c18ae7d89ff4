package generation

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"text/template"
	"unicode/utf8"
)

//go:embed templates/questions.tmpl
var templateFS embed.FS

// promptData is the data passed to the prompt template.
type promptData struct {
	Materials          string
	NumQuestions       int
	IncludeExplanation bool
}

// PromptBuilder renders the question-generation prompt.
type PromptBuilder struct {
	tmpl               *template.Template
	splitter           *TextSplitter
	includeExplanation bool
}

// NewPromptBuilder parses the prompt template. An empty templatePath selects
// the embedded default.
func NewPromptBuilder(templatePath string, includeExplanation bool) (*PromptBuilder, error) {
	var (
		content []byte
		err     error
	)
	if templatePath == "" {
		content, err = templateFS.ReadFile("templates/questions.tmpl")
	} else {
		content, err = os.ReadFile(templatePath)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read prompt template: %v", ErrInvalidConfig, err)
	}

	tmpl, err := template.New("questions").Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", ErrInvalidConfig, err)
	}

	return &PromptBuilder{
		tmpl:               tmpl,
		splitter:           NewTextSplitter(ChunkSize, ChunkOverlap),
		includeExplanation: includeExplanation,
	}, nil
}

// Build renders the prompt for materials and count. Materials longer than
// SplitThreshold runes are cut down to the first chunk; the tail is dropped.
func (b *PromptBuilder) Build(materials string, count int) (string, error) {
	if utf8.RuneCountInString(materials) > SplitThreshold {
		if chunks := b.splitter.SplitText(materials); len(chunks) > 0 {
			materials = chunks[0]
		}
	}

	var buf bytes.Buffer
	err := b.tmpl.Execute(&buf, promptData{
		Materials:          materials,
		NumQuestions:       count,
		IncludeExplanation: b.includeExplanation,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// IncludeExplanation reports whether prompts ask for an explanation field.
func (b *PromptBuilder) IncludeExplanation() bool {
	return b.includeExplanation
}
