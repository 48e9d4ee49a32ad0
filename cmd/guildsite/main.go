// Package main contains the entrypoint that serves the guild web client and
// runs the chat bot alongside it.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/edgard/guildsite/internal/app"
	"github.com/edgard/guildsite/internal/config"
	"github.com/edgard/guildsite/internal/discord"
	"github.com/edgard/guildsite/internal/logger"
	"github.com/edgard/guildsite/internal/responder"
	"github.com/edgard/guildsite/internal/scheduler"
	"github.com/edgard/guildsite/internal/telegram"
	"github.com/edgard/guildsite/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run builds every component from the environment, runs them until the web
// server stops, and returns the process exit code.
func run(ctx context.Context) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.LogLevel, cfg.LogJSON)
	slog.SetDefault(log)
	log.Info("Configuration loaded", "config", cfg.String())

	web.CheckBuildDir(cfg.StaticDir, log)
	server := web.NewServer(cfg.Addr(), cfg.StaticDir, log)

	ping := responder.NewPing(log)
	gateways := []app.Gateway{
		discord.NewGateway(cfg.DiscordToken, ping, log),
	}
	if cfg.TelegramEnabled() {
		gateways = append(gateways, telegram.NewGateway(cfg.TelegramToken, ping, log))
	}

	opts := []app.Option{app.WithShutdownTimeout(cfg.ShutdownTimeout)}
	if cfg.StatusInterval > 0 {
		sched, err := scheduler.New(log)
		if err != nil {
			log.Error("Failed to create scheduler", "error", err)
			return 1
		}
		opts = append(opts, app.WithScheduler(sched, cfg.StatusInterval))
	}

	if err := app.New(log, server, gateways, opts...).Run(ctx); err != nil {
		log.Error("Stopped due to error", "error", err)
		return 1
	}

	log.Info("Stopped gracefully")
	return 0
}
