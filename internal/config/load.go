package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional config
// file. Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults mirror the local development topology: a pub/sub sidecar on
	// localhost:3500 and the topics the three services share.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("broker.base_url", "http://localhost:3500")
	v.SetDefault("broker.pubsub_name", "pubsub-kafka")
	v.SetDefault("broker.task_events_topic", "task-events")
	v.SetDefault("broker.reminders_topic", "reminders")
	v.SetDefault("broker.publish_timeout_seconds", 5)
	v.SetDefault("broker.retry_interval_seconds", 5)
	v.SetDefault("reminder.scan_interval_minutes", 15)
	v.SetDefault("reminder.window_hours", 24)

	// Optional config file next to the binary or at an explicit path.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing config file is fine; environment variables may carry
		// everything we need.
	}

	// Environment variables with the TODOSTREAM_ prefix override file values,
	// e.g. TODOSTREAM_DATABASE_URL, TODOSTREAM_BROKER_BASE_URL.
	v.SetEnvPrefix("TODOSTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env-only keys through Unmarshal,
	// so bind the known keys explicitly.
	for _, key := range []string{
		"server.port", "server.log_level",
		"database.url",
		"auth.jwt_secret", "auth.token_lifetime_minutes",
		"broker.base_url", "broker.pubsub_name",
		"broker.task_events_topic", "broker.reminders_topic",
		"broker.publish_timeout_seconds", "broker.retry_interval_seconds",
		"reminder.scan_interval_minutes", "reminder.window_hours",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env key %q: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
