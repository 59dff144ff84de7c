package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"CurveWatch/internal/handler/ws"
	"CurveWatch/internal/usecase"
	"CurveWatch/pkg/cache"
	"CurveWatch/pkg/config"
	xhttp "CurveWatch/pkg/http"
	applogger "CurveWatch/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	svc        *usecase.CurveService
	handler    xhttp.Handler
	hub        *ws.Hub
	store      cache.Store
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	svc *usecase.CurveService,
	handler xhttp.Handler,
	hub *ws.Hub,
	store cache.Store,
) *App {
	return &App{
		cfg:     cfg,
		logger:  logger,
		svc:     svc,
		handler: handler,
		hub:     hub,
		store:   store,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)

	// Refresh pushes reach the dashboard over /ws.
	a.hub.RegisterRoutes(a.httpServer.Echo())
	a.svc.AddRefreshListener(a.hub.NotifyRefreshed)

	// Warm the snapshot so the first dashboard request is served from cache.
	go func() {
		if _, err := a.svc.Snapshot(ctx); err != nil {
			a.logger.Warn("initial snapshot failed", applogger.Error(err))
		}
	}()

	refresher := usecase.NewRefresher(a.svc, a.cfg.Analytics.RefreshInterval, a.logger)
	go refresher.Run(ctx)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Duration("refresh_interval", a.cfg.Analytics.RefreshInterval),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	a.hub.Close()

	if err := a.store.Close(); err != nil {
		a.logger.Warn("cache close error", applogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
