package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
// The same Config is loaded by all three binaries; each consumes the
// sections relevant to it.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Broker   BrokerConfig   `mapstructure:"broker"   validate:"required"`
	Reminder ReminderConfig `mapstructure:"reminder"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
// The URL is required by the binaries that open a database; the
// notification service runs without one.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// AuthConfig contains authentication settings for the primary backend.
// The consumer services do not authenticate inbound broker pushes, so the
// section is optional for them.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"omitempty,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"omitempty,gt=0"`
}

// BrokerConfig describes the pub/sub sidecar the publisher talks to and the
// topics the system uses. The sidecar exposes an HTTP publish endpoint per
// topic and pushes deliveries back over HTTP.
type BrokerConfig struct {
	BaseURL               string `mapstructure:"base_url"                validate:"required"`
	PubSubName            string `mapstructure:"pubsub_name"             validate:"required"`
	TaskEventsTopic       string `mapstructure:"task_events_topic"       validate:"required"`
	RemindersTopic        string `mapstructure:"reminders_topic"         validate:"required"`
	PublishTimeoutSeconds int    `mapstructure:"publish_timeout_seconds" validate:"required,gt=0"`
	RetryIntervalSeconds  int    `mapstructure:"retry_interval_seconds"  validate:"required,gt=0"`
}

// ReminderConfig controls the due-soon reminder scanner in the primary backend.
type ReminderConfig struct {
	ScanIntervalMinutes int `mapstructure:"scan_interval_minutes" validate:"omitempty,gt=0"`
	WindowHours         int `mapstructure:"window_hours"          validate:"omitempty,gt=0"`
}
