package main

import (
	"errors"
	"fmt"

	"github.com/phrazzld/questiongen/internal/auth"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the task API",
		Args:  cobra.NoArgs,
		RunE:  runToken,
	}
	cmd.Flags().String("subject", "", "Token subject, e.g. the client name")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func runToken(cmd *cobra.Command, _ []string) error {
	subject, _ := cmd.Flags().GetString("subject")

	cfg, _, err := initializeApp(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	svc, err := auth.NewJWTService(cfg.Auth)
	if errors.Is(err, auth.ErrDisabled) {
		return fmt.Errorf("cannot mint tokens: set auth.jwt_secret (QGEN_AUTH_JWT_SECRET) first")
	}
	if err != nil {
		return err
	}

	token, err := svc.GenerateToken(commandContext(cmd), subject)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
