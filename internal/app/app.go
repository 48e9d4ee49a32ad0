// Package app runs the chat gateways as supervised background tasks and the
// web server as the foreground task.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/guildsite/internal/responder"
	"github.com/edgard/guildsite/internal/scheduler"
)

// DefaultShutdownTimeout bounds how long Run waits for gateways after the server stops.
const DefaultShutdownTimeout = 10 * time.Second

// Gateway is a long-lived chat connection.
type Gateway interface {
	Name() string
	State() responder.State
	Run(ctx context.Context) error
}

// Server is the foreground task; the process lives as long as it runs.
type Server interface {
	Run(ctx context.Context) error
}

// App owns the started components and their shutdown.
type App struct {
	logger          *slog.Logger
	server          Server
	gateways        []Gateway
	scheduler       *scheduler.Scheduler
	statusInterval  time.Duration
	shutdownTimeout time.Duration
}

// Option configures an App.
type Option func(*App)

// WithScheduler enables the periodic gateway status report.
func WithScheduler(s *scheduler.Scheduler, interval time.Duration) Option {
	return func(a *App) {
		a.scheduler = s
		a.statusInterval = interval
	}
}

// WithShutdownTimeout overrides DefaultShutdownTimeout.
func WithShutdownTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.shutdownTimeout = d
		}
	}
}

// New creates the application from already constructed components.
func New(logger *slog.Logger, server Server, gateways []Gateway, opts ...Option) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		logger:          logger.With("component", "app"),
		server:          server,
		gateways:        gateways,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts every gateway in the background and then blocks on the server.
// A gateway failure only stops that gateway. When the server returns (or ctx
// is cancelled) the gateways are cancelled and joined for at most the
// shutdown timeout; any still running after that are abandoned.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var bg errgroup.Group
	for _, gw := range a.gateways {
		gw := gw
		bg.Go(func() error {
			return a.runGateway(ctx, gw)
		})
	}

	if a.scheduler != nil && a.statusInterval > 0 {
		if err := a.startStatusReport(); err != nil {
			a.logger.Warn("Gateway status report disabled", "error", err)
		}
	}

	a.logger.Info("Starting web server...")
	serverErr := a.server.Run(ctx)
	if serverErr != nil {
		a.logger.Error("Web server stopped due to error", "error", serverErr)
	}

	a.logger.Info("Initiating shutdown...")
	cancel()

	if a.scheduler != nil {
		if err := a.scheduler.Stop(); err != nil {
			a.logger.Error("Error stopping scheduler", "error", err)
		}
	}

	a.joinGateways(&bg)
	return serverErr
}

func (a *App) runGateway(ctx context.Context, gw Gateway) error {
	log := a.logger.With("gateway", gw.Name())
	log.Info("Starting gateway...")

	err := gw.Run(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		log.Info("Gateway stopped")
		return nil
	default:
		log.Error("Gateway failed", "error", err)
		return fmt.Errorf("%s gateway: %w", gw.Name(), err)
	}
}

func (a *App) joinGateways(bg *errgroup.Group) {
	done := make(chan error, 1)
	go func() {
		done <- bg.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			a.logger.Debug("Gateways finished with error", "error", err)
		}
		a.logger.Info("All gateways stopped")
	case <-time.After(a.shutdownTimeout):
		a.logger.Warn("Gateways did not stop in time, abandoning", "timeout", a.shutdownTimeout)
	}
}

func (a *App) startStatusReport() error {
	if err := a.scheduler.Add(StatusTask(a.logger, a.gateways, a.statusInterval)); err != nil {
		return err
	}
	return a.scheduler.Start()
}

// StatusTask logs the connection state of every gateway.
func StatusTask(logger *slog.Logger, gateways []Gateway, interval time.Duration) scheduler.Task {
	return scheduler.Task{
		Name:     "gateway_status",
		Interval: interval,
		Run: func(ctx context.Context) error {
			for _, gw := range gateways {
				logger.InfoContext(ctx, "Gateway status", "gateway", gw.Name(), "state", gw.State().String())
			}
			return nil
		},
	}
}
