package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// BHASHA_LLM_GEMINI_API_KEY for llm.gemini_api_key.
const EnvPrefix = "BHASHA"

// Load configuration from environment variables and optionally config files.
// Sources in increasing precedence: defaults, ./config.yaml, then the
// environment (a .env file is merged into the environment first without
// overriding variables that are already set).
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom behaves like Load but looks for config.yaml and .env in dir.
func LoadFrom(dir string) (*Config, error) {
	if err := godotenv.Load(strings.TrimSuffix(dir, "/") + "/.env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// setDefaults registers every key so that AutomaticEnv can bind it during
// Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.openai_api_key", "")
	v.SetDefault("llm.openai_base_url", "")
	v.SetDefault("llm.model_name", "gemini-pro")
	v.SetDefault("llm.prompt_catalog_path", "")

	v.SetDefault("ratelimit.requests_per_window", 50)
	v.SetDefault("ratelimit.window_seconds", 60)
	v.SetDefault("ratelimit.poll_interval_ms", 1000)

	v.SetDefault("session.ttl_minutes", 1440)
	v.SetDefault("session.max_chat_turns", 100)
	v.SetDefault("session.sweep_interval_minutes", 10)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "bhasha-api")
	v.SetDefault("tracing.otlp_endpoint", "")
	v.SetDefault("tracing.sample_ratio", 0.1)
}
