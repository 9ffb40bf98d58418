package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Model providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

type Config struct {
	Port            int
	LogLevel        string
	DatabaseURL     string
	LLMProvider     string
	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIAPIKey    string
	OpenAIModel     string
	GeminiAPIKey    string
	GeminiModel     string
	NatsURL         string
	NatsToken       string
	SlackBotToken   string
	SlackChannel    string
	APIToken        string
	TemplatesFile   string
}

// key is the config file key; env is the variable that overrides it.
type setting struct {
	key, env string
	def      any
}

var settings = []setting{
	{"port", "THEMESYNC_PORT", 8760},
	{"log_level", "LOG_LEVEL", "info"},
	{"database_url", "DATABASE_URL", ""},
	{"llm_provider", "LLM_PROVIDER", ""},
	{"anthropic_api_key", "ANTHROPIC_API_KEY", ""},
	{"anthropic_model", "ANTHROPIC_MODEL", "claude-3-haiku-20240307"},
	{"openai_api_key", "OPENAI_API_KEY", ""},
	{"openai_model", "OPENAI_MODEL", "gpt-4o"},
	{"gemini_api_key", "GEMINI_API_KEY", ""},
	{"gemini_model", "GEMINI_MODEL", "gemini-2.0-flash"},
	{"nats_url", "NATS_URL", ""},
	{"nats_token", "NATS_TOKEN", ""},
	{"slack_bot_token", "SLACK_BOT_TOKEN", ""},
	{"slack_channel", "SLACK_CHANNEL", ""},
	{"api_token", "THEMESYNC_API_TOKEN", ""},
	{"templates_file", "THEMESYNC_TEMPLATES", ""},
}

// Load reads defaults, then the file named by THEMESYNC_CONFIG if set, then
// the environment.
func Load() (Config, error) {
	v := viper.New()
	for _, s := range settings {
		v.SetDefault(s.key, s.def)
		if err := v.BindEnv(s.key, s.env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", s.env, err)
		}
	}

	if path := os.Getenv("THEMESYNC_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		Port:            intOr(v, "port", 8760),
		LogLevel:        v.GetString("log_level"),
		DatabaseURL:     v.GetString("database_url"),
		LLMProvider:     strings.ToLower(v.GetString("llm_provider")),
		AnthropicAPIKey: v.GetString("anthropic_api_key"),
		AnthropicModel:  v.GetString("anthropic_model"),
		OpenAIAPIKey:    v.GetString("openai_api_key"),
		OpenAIModel:     v.GetString("openai_model"),
		GeminiAPIKey:    v.GetString("gemini_api_key"),
		GeminiModel:     v.GetString("gemini_model"),
		NatsURL:         v.GetString("nats_url"),
		NatsToken:       v.GetString("nats_token"),
		SlackBotToken:   v.GetString("slack_bot_token"),
		SlackChannel:    v.GetString("slack_channel"),
		APIToken:        v.GetString("api_token"),
		TemplatesFile:   v.GetString("templates_file"),
	}
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = cfg.inferProvider()
	}
	return cfg, nil
}

// inferProvider picks the first provider with a key, Anthropic first.
func (c Config) inferProvider() string {
	switch {
	case c.AnthropicAPIKey != "":
		return ProviderAnthropic
	case c.OpenAIAPIKey != "":
		return ProviderOpenAI
	case c.GeminiAPIKey != "":
		return ProviderGemini
	}
	return ""
}

// ProviderKey returns the API key of the selected provider.
func (c Config) ProviderKey() string {
	switch c.LLMProvider {
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderGemini:
		return c.GeminiAPIKey
	}
	return ""
}

func intOr(v *viper.Viper, key string, fallback int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key))); err == nil {
		return n
	}
	return fallback
}
