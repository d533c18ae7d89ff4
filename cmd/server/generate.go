package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/phrazzld/questiongen/internal/domain"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate questions from a text or PDF file and print them as JSON",
		Example: "  questiongen generate --file notes.txt -n 3\n" +
			"  questiongen generate --file chapter1.pdf --num-questions 5",
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}
	cmd.Flags().StringP("file", "f", "", "Path to the materials file (text or PDF)")
	cmd.Flags().IntP("num-questions", "n", domain.DefaultQuestions, "Number of questions to generate (1-10)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")
	count, _ := cmd.Flags().GetInt("num-questions")

	// Logs go to stderr so stdout carries only the result.
	cfg, l, err := initializeApp(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	app, err := newApplication(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer app.cleanup(context.WithoutCancel(ctx))

	result, err := app.generateFromFile(ctx, path, count)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

// generateFromFile extracts materials from the file at path and runs one
// synchronous generation.
func (app *application) generateFromFile(ctx context.Context, path string, count int) (*domain.GenerationResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open materials file: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat materials file: %w", err)
	}

	text, source, err := app.extractor.ExtractWithSource(ctx, f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	app.logger.Info("materials loaded", "path", path, "source", source, "text_chars", len([]rune(text)))

	return app.generator.Generate(ctx, text, count)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
