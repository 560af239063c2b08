// Package dashboard implements the local HTTP server that backs the silo
// monitoring UI. Every endpoint is a thin composition over the external
// gateway, analytics and weather clients; the only local computation is
// the time-series bucketing done for charts.
package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/joao-cbj/silowatch/internal/analytics"
	"github.com/joao-cbj/silowatch/internal/gateway"
	"github.com/joao-cbj/silowatch/internal/log"
	"github.com/joao-cbj/silowatch/internal/meteo"
	"github.com/joao-cbj/silowatch/internal/session"
	"github.com/joao-cbj/silowatch/pkg/config"
)

// Controller represents the dashboard HTTP server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	cfg        config.DashboardData
	weatherCfg config.WeatherData
	Server     http.Server

	session   *session.Store
	gateway   *gateway.Client
	analytics *analytics.Client
	weather   *meteo.Client
	poller    *Poller
	logger    *zap.SugaredLogger
	handlers  *Handlers
}

// NewController creates a new dashboard controller.
func NewController(ctx context.Context, wg *sync.WaitGroup, cfgData *config.ConfigData,
	store *session.Store, gw *gateway.Client, an *analytics.Client, weather *meteo.Client,
	logger *zap.SugaredLogger) (*Controller, error) {

	cfg := cfgData.Dashboard
	if cfg.ListenAddr == "" {
		logger.Info("dashboard.listen_addr not provided; defaulting to 127.0.0.1")
		cfg.ListenAddr = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = config.DefaultDashboardPort
	}

	pollInterval := time.Duration(cfg.PollIntervalSeconds) * time.Second
	if pollInterval == 0 {
		pollInterval = time.Duration(config.DefaultPollIntervalSeconds) * time.Second
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		cfg:        cfg,
		weatherCfg: cfgData.Weather,
		session:    store,
		gateway:    gw,
		analytics:  an,
		weather:    weather,
		poller:     NewPoller(ctx, wg, gw, pollInterval, logger),
		logger:     logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", cfg.ListenAddr, cfg.Port)
	ctrl.Server.Handler = gorillahandlers.CombinedLoggingHandler(zapLogWriter{logger}, router)

	return ctrl, nil
}

// StartController starts the dashboard server and its polling loop.
func (c *Controller) StartController() error {
	log.Info("Starting dashboard controller...")

	c.poller.Start()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		if c.cfg.TLSCertPath != "" && c.cfg.TLSKeyPath != "" {
			if err := c.Server.ListenAndServeTLS(c.cfg.TLSCertPath, c.cfg.TLSKeyPath); err != http.ErrServerClosed {
				log.Errorf("dashboard server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("dashboard server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the dashboard server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.Use(c.requestIDMiddleware)

	// Session endpoints work without authentication; everything else under
	// /api requires a verified session.
	router.HandleFunc("/api/session/login", c.handlers.Login).Methods(http.MethodPost)
	router.HandleFunc("/api/session", c.handlers.GetSession).Methods(http.MethodGet)
	router.HandleFunc("/healthz", c.handlers.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(c.authMiddleware)

	api.HandleFunc("/session", c.handlers.Logout).Methods(http.MethodDelete)
	api.HandleFunc("/session/profile", c.handlers.UpdateProfile).Methods(http.MethodPut)

	api.HandleFunc("/chart/{deviceID}", c.handlers.GetChart).Methods(http.MethodGet)
	api.HandleFunc("/latest", c.handlers.GetLatest).Methods(http.MethodGet)
	api.HandleFunc("/alerts/{deviceID}", c.handlers.GetAlerts).Methods(http.MethodGet)
	api.HandleFunc("/climate", c.handlers.GetClimate).Methods(http.MethodGet)
	api.HandleFunc("/metrics", c.handlers.GetMetrics).Methods(http.MethodGet)

	api.HandleFunc("/export/{kind}/{deviceID}", c.handlers.Export).Methods(http.MethodGet)

	api.HandleFunc("/indicators/{indicator}/{deviceID}", c.handlers.GetIndicator).Methods(http.MethodGet)
	api.HandleFunc("/analytics/summary/{deviceID}", c.handlers.GetDeviceSummary).Methods(http.MethodGet)
	api.HandleFunc("/analytics/trends/{deviceID}", c.handlers.GetTrends).Methods(http.MethodGet)

	// Registered before the {id} routes so the literal path wins.
	api.HandleFunc("/silos/estatisticas", c.handlers.GetSiloStatistics).Methods(http.MethodGet)
	api.HandleFunc("/silos", c.handlers.ListSilos).Methods(http.MethodGet)
	api.HandleFunc("/silos", c.handlers.CreateSilo).Methods(http.MethodPost)
	api.HandleFunc("/silos/{id}", c.handlers.UpdateSilo).Methods(http.MethodPut)
	api.HandleFunc("/silos/{id}", c.handlers.DeleteSilo).Methods(http.MethodDelete)

	api.HandleFunc("/users", c.handlers.ListUsers).Methods(http.MethodGet)
	api.HandleFunc("/users", c.handlers.CreateUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}", c.handlers.UpdateUser).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", c.handlers.DeleteUser).Methods(http.MethodDelete)
	api.HandleFunc("/users/{id}/password", c.handlers.ChangePassword).Methods(http.MethodPut)

	api.HandleFunc("/mfa/status", c.handlers.GetMFAStatus).Methods(http.MethodGet)
	api.HandleFunc("/mfa/setup", c.handlers.SetupMFA).Methods(http.MethodPost)
	api.HandleFunc("/mfa/verify", c.handlers.VerifyMFA).Methods(http.MethodPost)
	api.HandleFunc("/mfa/disable", c.handlers.DisableMFA).Methods(http.MethodPost)

	api.HandleFunc("/provisioning/status", c.handlers.GetProvisioningStatus).Methods(http.MethodGet)
	api.HandleFunc("/provisioning/scan", c.handlers.ScanDevices).Methods(http.MethodPost)
	api.HandleFunc("/provisioning/provision", c.handlers.ProvisionDevice).Methods(http.MethodPost)
	api.HandleFunc("/provisioning/unpair", c.handlers.UnpairDevice).Methods(http.MethodPost)

	return router
}

// requestIDMiddleware tags every request with an ID for log correlation.
func (c *Controller) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// authMiddleware rejects requests until the session store holds a verified
// session.
func (c *Controller) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !c.session.Authenticated() {
			writeError(w, http.StatusUnauthorized, "não autenticado")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// zapLogWriter adapts the sugared logger to the io.Writer the gorilla
// logging middleware expects.
type zapLogWriter struct {
	logger *zap.SugaredLogger
}

func (z zapLogWriter) Write(p []byte) (int, error) {
	z.logger.Debug(string(p))
	return len(p), nil
}
