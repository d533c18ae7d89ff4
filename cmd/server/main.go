// Package main implements the entry point for the question generation
// service. It serves the HTTP API and offers one-shot generation and token
// commands for operators.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/questiongen/internal/config"
	"github.com/phrazzld/questiongen/internal/platform/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running the binary without a
// subcommand starts the server.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "questiongen",
		Short:        "Exam question generation service",
		Long:         "questiongen turns study materials into exam questions with answers using a language model.",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.PersistentFlags().String("config", "", "Path to a YAML config file (default ./config.yaml if present)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newTokenCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, l, err := initializeApp(cmd, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, l)
	if err != nil {
		l.Error("Failed to initialize application", "error", err)
		return err
	}
	return app.Run(ctx)
}

// initializeApp loads configuration and sets up structured logging on w.
func initializeApp(cmd *cobra.Command, w io.Writer) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.SetupWithWriter(cfg.Server, w)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"llm_backend", cfg.LLM.Backend,
		"mock_mode", cfg.LLM.MockMode)
	if cfg.Auth.AuthEnabled() {
		l.Debug("Auth configuration", "jwt_secret_present", true)
	}
	return cfg, l, nil
}

// commandContext returns the command context, never nil.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
