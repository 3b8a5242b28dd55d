package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/repository"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/engine"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/cache"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/config"
	xhttp "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/http"
	applogger "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/logger"
)

// App encapsulates the application lifecycle: the HTTP/WebSocket
// surface, the distribution engine, and the optional side sinks.
type App struct {
	cfg       *config.Config
	log       *applogger.Logger
	eng       *engine.Engine
	handler   xhttp.Handler
	cache     cache.Service
	publisher repository.Publisher
	history   repository.HistoryStore

	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	eng *engine.Engine,
	handler xhttp.Handler,
	c cache.Service,
	publisher repository.Publisher,
	history repository.HistoryStore,
) *App {
	return &App{
		cfg:       cfg,
		log:       l,
		eng:       eng,
		handler:   handler,
		cache:     c,
		publisher: publisher,
		history:   history,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}

	a.httpServer = xhttp.NewServer(a.handler, a.log,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)
	if err := a.httpServer.Start(); err != nil {
		return err
	}
	a.log.Info("market data service started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops accepting connections first, then drains the engine
// and closes the side sinks.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.eng.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
