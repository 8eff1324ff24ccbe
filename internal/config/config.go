// Package config provides configuration loading and validation for the
// chatkeeper application. Values come from defaults, an optional config.yaml,
// and CHATKEEPER_* environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the application configuration for all components:
// logging, the Discord transport, ingestion filtering, enrichment,
// persistence, retention, resource monitoring, and maintenance tasks.
type Config struct {
	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogJSON  bool   `mapstructure:"log_json"`

	DiscordToken string `mapstructure:"discord_token" validate:"required"`

	// Timezone is the reference time zone for timestamp stamping and all
	// cron schedules.
	Timezone string `mapstructure:"timezone" validate:"required"`

	DBPath string `mapstructure:"db_path" validate:"required"`

	// MetricsAddr enables the Prometheus listener when non-empty,
	// e.g. ":9090".
	MetricsAddr string `mapstructure:"metrics_addr"`

	Filter    FilterConfig    `mapstructure:"filter"`
	Enrich    EnrichConfig    `mapstructure:"enrich"`
	Retention RetentionConfig `mapstructure:"retention"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// FilterConfig holds the ingestion filter chain settings. All ID lists carry
// Discord snowflakes as strings.
type FilterConfig struct {
	// BotIDs are known automation accounts, rejected unconditionally.
	BotIDs []string `mapstructure:"bot_ids"`

	IgnoredUserIDs    []string `mapstructure:"ignored_user_ids"`
	IgnoredChannelIDs []string `mapstructure:"ignored_channel_ids"`

	// AllowedGuildIDs restricts ingestion to the listed guilds. An empty
	// list disables the restriction. Events without a guild ID always pass
	// this check.
	AllowedGuildIDs []string `mapstructure:"allowed_guild_ids"`

	// MinWords is the minimum whitespace-separated word count; the boundary
	// is inclusive (a message with exactly MinWords words is accepted).
	MinWords int `mapstructure:"min_words" validate:"min=1"`
}

// EnrichConfig controls the AWS-backed enrichment clients.
type EnrichConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Region  string `mapstructure:"region"`

	// TranslateMinWords gates translation: only texts with strictly more
	// words than this are translated.
	TranslateMinWords int `mapstructure:"translate_min_words" validate:"min=1"`
}

// RetentionConfig controls the retention scheduler.
type RetentionConfig struct {
	// Cron defines the sweep cadence in the reference time zone. Both
	// 5-field and 6-field (with seconds) expressions are accepted.
	Cron string `mapstructure:"cron" validate:"required"`

	// Window is how long records are kept before becoming eligible for
	// deletion.
	Window time.Duration `mapstructure:"window" validate:"min=1h"`

	// RetryBackoff is the fixed wait between failed delete attempts.
	RetryBackoff time.Duration `mapstructure:"retry_backoff" validate:"min=1s"`
}

// MonitorConfig controls the resource monitor's cadences and alerting.
type MonitorConfig struct {
	SampleInterval  time.Duration `mapstructure:"sample_interval" validate:"min=1s"`
	AlertInterval   time.Duration `mapstructure:"alert_interval" validate:"min=1s"`
	ConsoleInterval time.Duration `mapstructure:"console_interval" validate:"min=1s"`

	// AlertThreshold is the used-memory percentage above which (strictly)
	// an alert is emitted.
	AlertThreshold float64 `mapstructure:"alert_threshold" validate:"gt=0,lte=100"`

	// ReportCron anchors the daily report broadcast to a wall-clock time in
	// the reference time zone.
	ReportCron string `mapstructure:"report_cron" validate:"required"`

	AlertChannelID string `mapstructure:"alert_channel_id" validate:"required"`
	AlertUserID    string `mapstructure:"alert_user_id"    validate:"required"`
}

// SchedulerConfig holds the maintenance task schedules, keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig is the schedule definition for a single maintenance task.
type TaskConfig struct {
	Schedule string `mapstructure:"schedule"`
	Enabled  bool   `mapstructure:"enabled"`
}

// Load reads configuration from the given path (optional), applies defaults
// and environment overrides, and validates the result. Any validation failure
// is fatal to startup.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("CHATKEEPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
		// Missing config file is fine, defaults and env cover it.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	v.SetDefault("discord_token", "")
	v.SetDefault("timezone", "Asia/Seoul")
	v.SetDefault("db_path", "storage.db")
	v.SetDefault("metrics_addr", "")

	v.SetDefault("filter.bot_ids", []string{})
	v.SetDefault("filter.ignored_user_ids", []string{})
	v.SetDefault("filter.ignored_channel_ids", []string{})
	v.SetDefault("filter.allowed_guild_ids", []string{})
	v.SetDefault("filter.min_words", 5)

	v.SetDefault("enrich.enabled", false)
	v.SetDefault("enrich.region", "")
	v.SetDefault("enrich.translate_min_words", 20)

	v.SetDefault("retention.cron", "0 1 * * 1")
	v.SetDefault("retention.window", 3*7*24*time.Hour)
	v.SetDefault("retention.retry_backoff", 5*time.Minute)

	v.SetDefault("monitor.sample_interval", 2*time.Minute)
	v.SetDefault("monitor.alert_interval", time.Hour)
	v.SetDefault("monitor.console_interval", 24*time.Hour)
	v.SetDefault("monitor.alert_threshold", 95.0)
	v.SetDefault("monitor.report_cron", "56 22 * * *")
	v.SetDefault("monitor.alert_channel_id", "")
	v.SetDefault("monitor.alert_user_id", "")

	v.SetDefault("scheduler.tasks.sql_maintenance.schedule", "0 4 * * *")
	v.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
}
