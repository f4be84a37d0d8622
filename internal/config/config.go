package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// FileEnv names the environment variable that points at an optional TOML
// config file.
const FileEnv = "NPC_CONFIG_FILE"

type Config struct {
	Port        string `toml:"port" env:"PORT"`
	Environment string `toml:"environment" env:"ENVIRONMENT"`
	LogLevel    string `toml:"log_level" env:"LOG_LEVEL"`

	LLMProvider     string `toml:"llm_provider" env:"LLM_PROVIDER"` // openai, anthropic or mock
	ModelName       string `toml:"model_name" env:"MODEL_NAME"`
	OpenAIAPIKey    string `toml:"openai_api_key" env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `toml:"openai_base_url" env:"OPENAI_BASE_URL"`
	AnthropicAPIKey string `toml:"anthropic_api_key" env:"ANTHROPIC_API_KEY"`

	HistoryLimit       int           `toml:"history_limit" env:"HISTORY_LIMIT"`
	AffectionThreshold int           `toml:"affection_threshold" env:"AFFECTION_THRESHOLD"`
	CompletionTimeout  time.Duration `toml:"completion_timeout" env:"COMPLETION_TIMEOUT"`

	RedisURL   string `toml:"redis_url" env:"REDIS_URL"`     // empty uses the in-memory cache
	AvatarDir  string `toml:"avatar_dir" env:"AVATAR_DIR"`
	RosterFile string `toml:"roster_file" env:"ROSTER_FILE"` // empty uses the built-in roster

	ConfigFile string `toml:"-"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Port:               "8080",
		Environment:        "development",
		LogLevel:           "info",
		LLMProvider:        "openai",
		ModelName:          "gpt-3.5-turbo",
		HistoryLimit:       6,
		AffectionThreshold: 5,
		CompletionTimeout:  60 * time.Second,
		AvatarDir:          "./static",
	}
}

// Load builds the configuration from defaults, then the optional TOML file
// named by NPC_CONFIG_FILE, then environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv(FileEnv); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.HistoryLimit < 1 {
		return errors.New("history_limit must be at least 1")
	}
	if c.AffectionThreshold < 1 {
		return errors.New("affection_threshold must be at least 1")
	}
	if c.CompletionTimeout < 0 {
		return errors.New("completion_timeout cannot be negative")
	}
	switch c.LLMProvider {
	case "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("unknown llm_provider %q", c.LLMProvider)
	}
	return nil
}

// Level maps LogLevel onto a slog level; unknown values mean info.
func (c *Config) Level() slog.Level {
	return parseLogLevel(c.LogLevel)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
