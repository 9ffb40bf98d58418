package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/themesync/internal/anthropic"
	"github.com/MikeSquared-Agency/themesync/internal/config"
	"github.com/MikeSquared-Agency/themesync/internal/gemini"
	"github.com/MikeSquared-Agency/themesync/internal/llm"
	"github.com/MikeSquared-Agency/themesync/internal/openai"
)

var rootCmd = &cobra.Command{
	Use:   "themesync",
	Short: "Design sprint theme extraction service",
	Long: `ThemeSync turns interview transcripts and testing notes into categorized
insight themes, lets a team vote on them and exports the board.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, analyzeCmd, templatesCmd, eventsCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration and installs the JSON logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	setupLogging(cfg.LogLevel)
	return cfg, nil
}

// newProvider builds the configured model client. It returns nil, without
// error, when no provider has a key.
func newProvider(ctx context.Context, cfg config.Config) (llm.Provider, error) {
	key := cfg.ProviderKey()
	if key == "" {
		return nil, nil
	}
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		slog.Info("anthropic client ready", "model", cfg.AnthropicModel)
		return anthropic.NewClient(key, cfg.AnthropicModel), nil
	case config.ProviderOpenAI:
		slog.Info("openai client ready", "model", cfg.OpenAIModel)
		return openai.NewClient(key, cfg.OpenAIModel), nil
	case config.ProviderGemini:
		c, err := gemini.NewClient(ctx, key, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		slog.Info("gemini client ready", "model", cfg.GeminiModel)
		return c, nil
	}
	return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
