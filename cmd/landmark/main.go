package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/Eih3/walking/internal/cli"
	"github.com/Eih3/walking/internal/infrastructure/observability"
	"github.com/Eih3/walking/pkg/config"
	"github.com/Eih3/walking/pkg/secrets"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}

	// Secrets from Vault land in the environment before config is read
	if _, err := secrets.NewLoader(secrets.VaultConfigFromEnv(), nil).Apply(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Failed to load secrets from Vault")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr so stdout stays readable.
	observability.InitLogger("landmark-cli", cfg.Env, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Run(ctx, os.Args[1:], cfg, os.Stdout); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
