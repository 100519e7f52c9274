package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"platingreport/internal/summarizer"
)

type Config struct {
	Provider          string        `env:"LLM_PROVIDER"       envDefault:"gemini"`
	GeminiAPIKey      string        `env:"GEMINI_API_KEY"`
	OpenAIAPIKey      string        `env:"OPENAI_API_KEY"`
	Model             string        `env:"MODEL"              envDefault:"gemini-2.0-flash"`
	MaxRetries        int           `env:"MAX_RETRIES"        envDefault:"4"`
	InitialBackoff    time.Duration `env:"INITIAL_BACKOFF"    envDefault:"1s"`
	BackoffMultiplier float64       `env:"BACKOFF_MULTIPLIER" envDefault:"2.0"`

	WorkbookPath  string   `env:"WORKBOOK_PATH"  envDefault:"電鍍履歷表.xlsx"`
	Sheets        []string `env:"SHEETS"         envDefault:"EP15,EP16"`
	RulesPath     string   `env:"RULES_PATH"`
	LatestRecords int      `env:"LATEST_RECORDS" envDefault:"7"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	TelegramToken  string `env:"TELEGRAM_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID"`
	Schedule       string `env:"SCHEDULE"        envDefault:"0 * * * *"`
	MetricsAddress string `env:"METRICS_ADDRESS"`
}

// LoadConfig reads .env files (when present) and then the process
// environment. Variables already set in the environment win.
func LoadConfig(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	return cfg, nil
}

// APIKey returns the credential for the configured provider.
func (c Config) APIKey() string {
	if c.Provider == summarizer.ProviderOpenAI {
		return strings.TrimSpace(c.OpenAIAPIKey)
	}
	return strings.TrimSpace(c.GeminiAPIKey)
}

// APIKeyEnvVar names the variable APIKey reads, for error messages.
func (c Config) APIKeyEnvVar() string {
	if c.Provider == summarizer.ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}

func (c Config) SummarizerOptions() summarizer.Options {
	return summarizer.Options{
		Model:             c.Model,
		MaxRetries:        c.MaxRetries,
		InitialBackoff:    c.InitialBackoff,
		BackoffMultiplier: c.BackoffMultiplier,
	}
}

func (c Config) TelegramEnabled() bool {
	return strings.TrimSpace(c.TelegramToken) != "" && c.TelegramChatID != 0
}
