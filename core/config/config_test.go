package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Bot:      BotConfig{Name: "testbot"},
		Telegram: TelegramConfig{Token: "123:abc"},
		Database: DatabaseConfig{Host: "localhost"},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Bot.DefaultLocale != "en" {
		t.Fatalf("default_locale = %q", cfg.Bot.DefaultLocale)
	}
	if cfg.Bot.MatchMode != MatchModeStrict {
		t.Fatalf("match_mode = %q", cfg.Bot.MatchMode)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run_mode = %q", cfg.Telegram.RunMode)
	}
	if cfg.Session.SweepIntervalSeconds != 300 {
		t.Fatalf("sweep_interval_seconds = %d", cfg.Session.SweepIntervalSeconds)
	}
	if cfg.Session.CallbackTTLSeconds != 3600 {
		t.Fatalf("callback_ttl_seconds = %d", cfg.Session.CallbackTTLSeconds)
	}
}

func TestNormalizeRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing bot name", func(c *Config) { c.Bot.Name = " " }, "bot.name"},
		{"bad match mode", func(c *Config) { c.Bot.MatchMode = "fuzzy" }, "match_mode"},
		{"missing token", func(c *Config) { c.Telegram.Token = "" }, "token"},
		{"bad run mode", func(c *Config) { c.Telegram.RunMode = "carrier-pigeon" }, "run_mode"},
		{"webhook without url", func(c *Config) { c.Telegram.RunMode = RunModeWebhook }, "webhook.url"},
		{"missing db host", func(c *Config) { c.Database.Host = "" }, "database.host"},
		{"negative expiration", func(c *Config) { c.Session.ExpirationSeconds = -1 }, "expiration_seconds"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := Normalize(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, expected mention of %s", err, tc.want)
			}
		})
	}
}

func TestNormalizeDisabledDatabaseSkipsHostCheck(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Host = ""
	cfg.Database.Disabled = true
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
}

func TestNormalizeAcceptsPollingAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "polling"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run_mode = %q", cfg.Telegram.RunMode)
	}
}
