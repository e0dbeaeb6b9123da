package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/matt-dz/tidyplan/internal/ai"
	"github.com/matt-dz/tidyplan/internal/ai/anthropic"
	"github.com/matt-dz/tidyplan/internal/ai/mock"
	"github.com/matt-dz/tidyplan/internal/api"
	"github.com/matt-dz/tidyplan/internal/config"
	"github.com/matt-dz/tidyplan/internal/env"
	tpHttp "github.com/matt-dz/tidyplan/internal/http"
	"github.com/matt-dz/tidyplan/internal/invitations"
	"github.com/matt-dz/tidyplan/internal/log"
	"github.com/matt-dz/tidyplan/internal/setup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	const setupTime = 30 * time.Second
	setupCtx, cancel := context.WithTimeout(ctx, setupTime)
	defer cancel()

	// .env is optional, real deployments set the environment directly.
	_ = godotenv.Load()

	logger := log.New(nil)

	conf, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := setup.Database(setupCtx, conf)
	if err != nil {
		logger.Error("failed to setup database", slog.Any("error", err))
		os.Exit(1)
	}

	invitationService := invitations.New(db, logger, invitations.Config{
		TTL:     conf.Invitation.TTL,
		MaxUses: conf.Invitation.MaxUses,
	})

	var aiProvider ai.Provider
	if conf.Anthropic.APIKey != "" {
		aiProvider, err = anthropic.New(anthropic.Config{
			APIKey: conf.Anthropic.APIKey,
			Model:  conf.Anthropic.Model,
		}, tpHttp.DefaultConfig(), logger)
		if err != nil {
			logger.Error("failed to setup AI provider", slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		logger.Info("ANTHROPIC_API_KEY not set, using mock AI provider")
		aiProvider = mock.New(logger)
	}

	env := &env.Env{
		Logger:      logger,
		Database:    db,
		Invitations: invitationService,
		AI:          aiProvider,
		Config:      conf,
	}

	logger.DebugContext(ctx, "setting up admin")
	if err := setup.Admin(setupCtx, env); err != nil {
		logger.Error("failed to setup admin", slog.Any("error", err))
		os.Exit(1)
	}

	if err := api.Start(env); err != nil {
		env.Logger.Error("API Failed", slog.Any("error", err))
		os.Exit(1)
	}
}
