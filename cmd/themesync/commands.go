package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/themesync/internal/analysis"
	"github.com/MikeSquared-Agency/themesync/internal/domain"
	"github.com/MikeSquared-Agency/themesync/internal/events"
	"github.com/MikeSquared-Agency/themesync/internal/export"
	"github.com/MikeSquared-Agency/themesync/internal/extractor"
	"github.com/MikeSquared-Agency/themesync/internal/prompts"
	"github.com/MikeSquared-Agency/themesync/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}

		statusOnly, _ := cmd.Flags().GetBool("status")
		if !statusOnly {
			if err := store.Migrate(cfg.DatabaseURL); err != nil {
				return err
			}
		}
		status, err := store.GetMigrationStatus(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		fmt.Printf("current version: %d\nlatest version:  %d\ndirty: %t\npending: %t\n",
			status.CurrentVersion, status.LatestVersion, status.Dirty, status.Pending)
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Extract themes from a transcript file and print them as Markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		content, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		provider, err := newProvider(ctx, cfg)
		if err != nil {
			return err
		}
		registry := prompts.NewRegistry(slog.Default())
		if cfg.TemplatesFile != "" {
			if _, err := registry.LoadFile(cfg.TemplatesFile); err != nil {
				return err
			}
		}

		db := store.NewMemory()
		project, err := db.EnsureDefaultProject(ctx)
		if err != nil {
			return err
		}
		pipeline := analysis.New(db, extractor.New(provider, registry, slog.Default()), events.Nop{}, slog.Default())

		transcriptType, _ := cmd.Flags().GetString("type")
		goal, _ := cmd.Flags().GetString("goal")
		template, _ := cmd.Flags().GetString("template")
		res, err := pipeline.Analyze(ctx, analysis.AnalyzeRequest{
			ProjectID:         project.ID,
			TranscriptContent: string(content),
			TranscriptType:    transcriptType,
			SprintGoal:        goal,
			TemplateKey:       template,
		})
		if err != nil {
			return err
		}

		md := export.Markdown(export.Data{
			Themes:         res.Themes,
			TranscriptType: transcriptType,
			SprintGoal:     goal,
			ExportDate:     export.DefaultExportDate(time.Now()),
		})
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Print(md)
			return nil
		}
		renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err != nil {
			return err
		}
		out, err := renderer.Render(md)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the prompt templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry := prompts.NewRegistry(slog.Default())
		if cfg.TemplatesFile != "" {
			if _, err := registry.LoadFile(cfg.TemplatesFile); err != nil {
				return err
			}
		}
		all := registry.All()
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Printf("%-20s %-28s %s\n", k, all[k].Name, all[k].Description)
		}
		return nil
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print every event published on NATS until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.NatsURL == "" {
			return errors.New("NATS_URL is required")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client, err := events.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			return err
		}
		defer client.Close()

		err = client.Subscribe(events.SubjectAll, func(env events.Envelope, raw []byte) {
			fmt.Printf("%s %s %s\n", env.OccurredAt.Format(time.RFC3339), env.Subject, raw)
		})
		if err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	},
}

func init() {
	migrateCmd.Flags().Bool("status", false, "only print the migration status")

	analyzeCmd.Flags().String("type", domain.TranscriptExpertInterviews, "transcript type: expert_interviews, testing_notes or general_research")
	analyzeCmd.Flags().String("goal", "", "sprint goal given to the model")
	analyzeCmd.Flags().String("template", "", "prompt template key, overrides --type for prompt selection")
	analyzeCmd.Flags().Bool("raw", false, "print plain Markdown instead of rendering it")
}
