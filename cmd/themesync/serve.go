package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/themesync/internal/analysis"
	"github.com/MikeSquared-Agency/themesync/internal/api"
	"github.com/MikeSquared-Agency/themesync/internal/events"
	"github.com/MikeSquared-Agency/themesync/internal/extractor"
	"github.com/MikeSquared-Agency/themesync/internal/prompts"
	"github.com/MikeSquared-Agency/themesync/internal/slack"
	"github.com/MikeSquared-Agency/themesync/internal/store"
	"github.com/MikeSquared-Agency/themesync/internal/themes"
	"github.com/MikeSquared-Agency/themesync/internal/voting"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		slog.Info("themesync starting", "port", cfg.Port)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Database
		if cfg.DatabaseURL != "" {
			if err := store.Migrate(cfg.DatabaseURL); err != nil {
				return err
			}
		}
		db, err := store.Open(ctx, cfg.DatabaseURL, slog.Default())
		if err != nil {
			return err
		}
		defer db.Close()
		project, err := db.EnsureDefaultProject(ctx)
		if err != nil {
			return err
		}

		// Prompt templates
		registry := prompts.NewRegistry(slog.Default())
		if cfg.TemplatesFile != "" {
			n, err := registry.LoadFile(cfg.TemplatesFile)
			if err != nil {
				return err
			}
			slog.Info("prompt templates loaded", "path", cfg.TemplatesFile, "count", n)
		}

		// Model provider (optional, analysis endpoints answer 400 without one)
		provider, err := newProvider(ctx, cfg)
		if err != nil {
			return err
		}
		if provider == nil {
			slog.Warn("no model API key configured, AI analysis disabled")
		}
		ext := extractor.New(provider, registry, slog.Default())

		// NATS (optional)
		var pub events.Publisher = events.Nop{}
		if cfg.NatsURL != "" {
			client, err := events.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
			if err != nil {
				return err
			}
			defer client.Close()
			pub = client
			slog.Info("NATS connected", "url", cfg.NatsURL)
		}

		themeSvc := themes.NewService(db, pub, slog.Default())
		votingSvc := voting.NewService(db, pub, slog.Default())
		pipeline := analysis.New(db, ext, pub, slog.Default())
		if provider != nil {
			pipeline.SetProviderName(provider.Name())
		}

		// Slack (optional)
		if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
			poster := slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default())
			pipeline.SetNotifier(poster)
			votingSvc.SetAnnouncer(poster)
			slog.Info("slack poster ready", "channel", cfg.SlackChannel)
		} else {
			slog.Warn("slack not configured, summaries will not be posted")
		}

		srv := api.NewServer(cfg.Port, api.Deps{
			Store:     db,
			Themes:    themeSvc,
			Voting:    votingSvc,
			Analysis:  pipeline,
			Templates: registry,
			ProjectID: project.ID,
			APIToken:  cfg.APIToken,
			Logger:    slog.Default(),
		})

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return srv.Run(gctx) })
		if cfg.TemplatesFile != "" {
			g.Go(func() error { return registry.Watch(gctx, cfg.TemplatesFile) })
		}

		slog.Info("themesync ready", "port", cfg.Port, "project_id", project.ID)
		err = g.Wait()
		slog.Info("themesync stopped")
		return err
	},
}
