package managers

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/joao-cbj/silowatch/internal/analytics"
	"github.com/joao-cbj/silowatch/internal/dashboard"
	"github.com/joao-cbj/silowatch/internal/gateway"
	"github.com/joao-cbj/silowatch/internal/meteo"
	"github.com/joao-cbj/silowatch/internal/session"
	"github.com/joao-cbj/silowatch/pkg/config"
)

// ControllerManager interface for the controller manager
type ControllerManager interface {
	StartControllers() error
}

// Controller is an interface that provides standard methods for various controller backends
type Controller interface {
	StartController() error
}

// Deps are the shared clients the controllers operate on.
type Deps struct {
	Session   *session.Store
	Gateway   *gateway.Client
	Analytics *analytics.Client
	Weather   *meteo.Client
}

// NewControllerManager creates a new controller manager
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, cfgData *config.ConfigData, deps Deps, logger *zap.SugaredLogger) (ControllerManager, error) {
	cm := &controllerManager{
		ctx:         ctx,
		wg:          wg,
		config:      cfgData,
		deps:        deps,
		logger:      logger,
		controllers: make([]Controller, 0),
	}

	dash, err := dashboard.NewController(ctx, wg, cfgData, deps.Session, deps.Gateway, deps.Analytics, deps.Weather, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating dashboard controller: %v", err)
	}
	cm.controllers = append(cm.controllers, dash)

	return cm, nil
}

type controllerManager struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	config      *config.ConfigData
	deps        Deps
	logger      *zap.SugaredLogger
	controllers []Controller
}

func (c *controllerManager) StartControllers() error {
	c.logger.Info("Starting controller manager...")

	for _, controller := range c.controllers {
		err := controller.StartController()
		if err != nil {
			return fmt.Errorf("error starting controller: %v", err)
		}
	}

	c.logger.Infof("Started %d controllers successfully", len(c.controllers))
	return nil
}
