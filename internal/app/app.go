package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/joao-cbj/silowatch/internal/analytics"
	"github.com/joao-cbj/silowatch/internal/gateway"
	"github.com/joao-cbj/silowatch/internal/log"
	"github.com/joao-cbj/silowatch/internal/managers"
	"github.com/joao-cbj/silowatch/internal/meteo"
	"github.com/joao-cbj/silowatch/internal/session"
	"github.com/joao-cbj/silowatch/pkg/config"
)

// App represents the main application
type App struct {
	cfgData *config.ConfigData
	logger  *zap.SugaredLogger
}

// New creates a new application instance
func New(cfgData *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		cfgData: cfgData,
		logger:  logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Session store first: the gateway client draws its bearer token from it.
	store, err := session.NewStore(a.cfgData.Session.Path, a.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	gw := gateway.NewClient(a.cfgData.Gateway, store, a.logger)
	store.AttachGateway(gw)
	gw.SetUnauthorizedHandler(store.Clear)

	// Revalidate any persisted session before serving; a rejected token is
	// cleared, not fatal.
	if err := store.Init(ctx); err != nil {
		return err
	}

	deps := managers.Deps{
		Session:   store,
		Gateway:   gw,
		Analytics: analytics.NewClient(a.cfgData.Analytics, a.logger),
		Weather:   meteo.NewClient(a.cfgData.Weather, a.logger),
	}

	cm, err := managers.NewControllerManager(ctx, &wg, a.cfgData, deps, a.logger)
	if err != nil {
		return err
	}
	if err := cm.StartControllers(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
