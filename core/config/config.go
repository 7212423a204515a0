package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// BotConfig identifies the engine instance and its matching defaults.
type BotConfig struct {
	// Name scopes persisted sessions to one bot instance.
	Name          string `yaml:"name" envconfig:"BOT_NAME"`
	DefaultLocale string `yaml:"default_locale" envconfig:"BOT_DEFAULT_LOCALE"`
	// MatchMode selects how overlapping commands are resolved: strict or exclusive.
	MatchMode string `yaml:"match_mode" envconfig:"BOT_MATCH_MODE"`
}

// SessionConfig controls session expiration and callback token lifetime.
type SessionConfig struct {
	// ExpirationSeconds is the inactivity timeout after which a session is swept; 0 disables the sweep.
	ExpirationSeconds int `yaml:"expiration_seconds" envconfig:"SESSION_EXPIRATION_SECONDS"`
	// SweepIntervalSeconds is how often the janitor runs; 0 -> default
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds" envconfig:"SESSION_SWEEP_INTERVAL_SECONDS"`
	// CallbackTTLSeconds bounds the lifetime of unconsumed callback tokens; 0 -> default
	CallbackTTLSeconds int `yaml:"callback_ttl_seconds" envconfig:"SESSION_CALLBACK_TTL_SECONDS"`
}

// Expiration returns the session inactivity timeout as a duration.
func (s SessionConfig) Expiration() time.Duration {
	return time.Duration(s.ExpirationSeconds) * time.Second
}

// SweepInterval returns the janitor tick interval.
func (s SessionConfig) SweepInterval() time.Duration {
	return time.Duration(s.SweepIntervalSeconds) * time.Second
}

// CallbackTTL returns the callback token lifetime.
func (s SessionConfig) CallbackTTL() time.Duration {
	return time.Duration(s.CallbackTTLSeconds) * time.Second
}

// TelegramConfig holds Telegram transport settings common for all bots.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// DatabaseConfig holds connection settings for the session store.
type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
	// Disabled runs the engine session-less: no repository, saves become no-ops.
	Disabled bool `yaml:"disabled" envconfig:"DB_DISABLED"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// MatchModeStrict resolves overlapping commands by priority, first full match wins.
	MatchModeStrict = "strict"
	// MatchModeExclusive rejects a message as ambiguous when two commands fully match.
	MatchModeExclusive = "exclusive"
)

// Config aggregates the configuration that belongs to the reusable core.
type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Session  SessionConfig  `yaml:"session"`
	Telegram TelegramConfig `yaml:"telegram"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Logging  LoggingConfig  `yaml:"logging"`
	Database DatabaseConfig `yaml:"database"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if strings.TrimSpace(cfg.Bot.Name) == "" {
		return fmt.Errorf("bot.name is required")
	}
	if cfg.Bot.DefaultLocale == "" {
		cfg.Bot.DefaultLocale = "en"
	}

	mm := strings.ToLower(strings.TrimSpace(cfg.Bot.MatchMode))
	if mm == "" {
		mm = MatchModeStrict
	}
	switch mm {
	case MatchModeStrict, MatchModeExclusive:
	default:
		return fmt.Errorf("invalid bot.match_mode %q; allowed: strict, exclusive", cfg.Bot.MatchMode)
	}
	cfg.Bot.MatchMode = mm

	if cfg.Session.ExpirationSeconds < 0 {
		return fmt.Errorf("session.expiration_seconds must be >= 0")
	}
	if cfg.Session.SweepIntervalSeconds <= 0 {
		cfg.Session.SweepIntervalSeconds = 300
	}
	if cfg.Session.CallbackTTLSeconds <= 0 {
		cfg.Session.CallbackTTLSeconds = 3600
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if !cfg.Database.Disabled {
		if strings.TrimSpace(cfg.Database.Host) == "" {
			return fmt.Errorf("database.host is required unless database.disabled is set")
		}
		if cfg.Database.MaxConnections <= 0 {
			cfg.Database.MaxConnections = 4
		}
	}
	return nil
}
