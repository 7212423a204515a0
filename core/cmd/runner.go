// Package cmd hosts the reusable entrypoint shared by bot binaries: config
// loading, bootstrap, janitor startup, and the Telegram run loop.
package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m3rciful/convocore/core/bootstrap"
	coreconfig "github.com/m3rciful/convocore/core/config"
	"github.com/m3rciful/convocore/core/engine"
	"github.com/m3rciful/convocore/core/logger"
	coretelegram "github.com/m3rciful/convocore/core/telegram"
)

// Options describe how to locate configuration and what to run.
type Options struct {
	// ConfigEnvVar names the environment variable carrying the config
	// path; defaults to CONFIG_PATH.
	ConfigEnvVar      string
	DefaultConfigPath string

	// Commands is the command set registered into the engine.
	Commands []engine.Command

	// Telegram customizes transport behaviour beyond the defaults.
	Telegram coretelegram.RunOptions
}

// Run loads configuration, bootstraps the engine, and runs the bot until
// the process receives an interrupt.
func Run(opts Options) error {
	env := opts.ConfigEnvVar
	if env == "" {
		env = "CONFIG_PATH"
	}
	cfgPath := os.Getenv(env)
	if cfgPath == "" {
		cfgPath = opts.DefaultConfigPath
	}
	if cfgPath == "" {
		return fmt.Errorf("cmd: config path not provided via %s or DefaultConfigPath", env)
	}

	log.Printf("loading config: %s", cfgPath)
	cfg, err := coreconfig.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("cmd: failed to load config: %w", err)
	}

	boot, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg,
		Commands: opts.Commands,
	})
	if err != nil {
		return fmt.Errorf("cmd: bootstrap failed: %w", err)
	}
	defer func() {
		if err := boot.Close(); err != nil {
			log.Printf("shutdown error: %v", err)
		}
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go boot.Janitor.Run(ctx)

	runOpts := opts.Telegram
	runOpts.Config = cfg
	runOpts.Dispatcher = boot.Dispatcher

	startedAt := time.Now()
	prevStart := runOpts.OnStart
	runOpts.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
		if prevStart != nil {
			if err := prevStart(ctx, rt); err != nil {
				return err
			}
		}
		logger.Info(ctx, "app", "ready",
			slog.String("bot", cfg.Bot.Name),
			slog.Duration("startup_duration", logger.Took(startedAt)),
		)
		return nil
	}

	prevStop := runOpts.OnStop
	runOpts.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		logger.Info(ctx, "app", "shutdown")
		if prevStop != nil {
			return prevStop(ctx, rt)
		}
		return nil
	}

	return coretelegram.RunTelegram(ctx, runOpts)
}
