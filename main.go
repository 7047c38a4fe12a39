package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/mux"
	_ "github.com/joho/godotenv/autoload"

	"alias-heaven-calculator/internal/buildinfo"
	"alias-heaven-calculator/internal/constants"
	"alias-heaven-calculator/internal/roles"
	"alias-heaven-calculator/internal/session"
	"alias-heaven-calculator/internal/web"
	"alias-heaven-calculator/pkg/config"
	"alias-heaven-calculator/pkg/container"
	"alias-heaven-calculator/pkg/health"
	"alias-heaven-calculator/pkg/logging"
	"alias-heaven-calculator/pkg/metrics"
	"alias-heaven-calculator/pkg/monitoring"
)

// buildContainer registers every provider the server needs.
func buildContainer(loadConfig func() *config.Config) *container.Container {
	c := container.New()

	// Config (singleton)
	_ = c.Provide(func() (*config.Config, error) {
		cfg := loadConfig()
		return cfg, cfg.Validate()
	}, true)

	_ = c.Provide(func(cfg *config.Config) *logging.Logger {
		return logging.NewLogger(logging.LogConfig{
			Level:  logging.ParseLevel(cfg.LogLevel),
			Format: cfg.LogFormat,
			Output: os.Stdout,
		})
	}, true)
	_ = c.Provide(func() *metrics.Registry { return metrics.Default }, true)
	_ = c.Provide(func() buildinfo.Info { return buildinfo.Get() }, true)

	// Role configuration and the swappable calculator built from it
	_ = c.Provide(func(cfg *config.Config) (roles.Config, error) { return config.LoadRoles(cfg.RolesFile) }, true)
	_ = c.Provide(func(rc roles.Config) (*roles.Provider, error) {
		calc, err := roles.New(rc)
		if err != nil {
			return nil, err
		}
		return roles.NewProvider(calc), nil
	}, true)

	_ = c.Provide(session.NewStore, true)
	_ = c.Provide(func() (*web.Templates, error) { return web.LoadTemplates(Templates()) }, true)

	_ = c.Provide(func(cfg *config.Config, p *roles.Provider, s *session.Store, ts *web.Templates, l *logging.Logger, reg *metrics.Registry, bi buildinfo.Info) *web.Handler {
		return web.NewHandler(web.Options{
			Provider:  p,
			Sessions:  s,
			Templates: ts,
			Logger:    l,
			Metrics:   reg,
			BasePath:  cfg.BasePath,
			Build:     bi,
		})
	}, true)

	_ = c.Provide(func(p *roles.Provider, s *session.Store, bi buildinfo.Info) *health.Manager {
		m := health.NewManager(bi.Version, constants.HealthTimeoutDefault)
		m.Register("roles", func(ctx context.Context) health.ComponentHealth {
			calc := p.Calculator()
			if calc == nil {
				return health.ComponentHealth{Status: health.StatusUnhealthy, Message: "no calculator loaded"}
			}
			if err := calc.Config().Validate(); err != nil {
				return health.ComponentHealth{Status: health.StatusUnhealthy, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusHealthy}
		})
		m.Register("sessions", func(ctx context.Context) health.ComponentHealth {
			return health.ComponentHealth{
				Status:   health.StatusHealthy,
				Metadata: map[string]interface{}{"active": s.Count()},
			}
		})
		return m
	}, true)

	return c
}

// newRouter mounts the calculator under the base path and the operational
// endpoints at the root.
func newRouter(c *container.Container) (*mux.Router, error) {
	router := mux.NewRouter()
	err := c.Invoke(func(cfg *config.Config, h *web.Handler, hm *health.Manager, l *logging.Logger, reg *metrics.Registry) {
		router.Use(monitoring.Middleware(reg, l.WithComponent("http")))

		router.HandleFunc(cfg.HealthCheckPath, hm.Handler()).Methods("GET")
		if cfg.MetricsEnabled {
			router.Handle(cfg.MetricsPath, reg.Handler()).Methods("GET")
		}

		staticPath := cfg.BasePath + "static/"
		router.PathPrefix(staticPath).Handler(http.StripPrefix(staticPath, http.FileServer(http.FS(Static()))))

		app := router
		if cfg.BasePath != "/" {
			app = router.PathPrefix(strings.TrimSuffix(cfg.BasePath, "/")).Subrouter()
		}
		h.Register(app)
	})
	return router, err
}

func main() {
	c := buildContainer(config.Load)

	var (
		cfg    *config.Config
		logger *logging.Logger
	)
	if err := c.Resolve(&cfg); err != nil {
		log.Fatal("config: ", err)
	}
	if err := c.Resolve(&logger); err != nil {
		log.Fatal("logger resolve: ", err)
	}
	slog.SetDefault(logger.Slog())

	var (
		rolesCfg roles.Config
		provider *roles.Provider
		sessions *session.Store
		reg      *metrics.Registry
	)
	if err := c.Resolve(&rolesCfg); err != nil {
		logger.Error("Failed to load roles", err, logging.String("path", cfg.RolesFile))
		os.Exit(1)
	}
	for _, target := range []interface{}{&provider, &sessions, &reg} {
		if err := c.Resolve(target); err != nil {
			logger.Error("Dependency resolve failed", err)
			os.Exit(1)
		}
	}
	logger.Info("Starting Alias' Heaven Calculator", logging.Fields(cfg.GetConfigSummary())...)

	router, err := newRouter(c)
	if err != nil {
		logger.Error("Router setup failed", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Roles hot-reload: a bad file keeps the previous calculator in place
	cw := config.NewWatcher(cfg.RolesFile, cfg.ReloadInterval(), rolesCfg)
	changes := cw.Subscribe()
	cw.Start()
	defer cw.Close()
	go func() {
		for chg := range changes {
			if chg.Err != nil {
				logger.Warn("Roles reload failed, keeping previous roles",
					logging.String("path", chg.Path), logging.String("error", chg.Err.Error()))
				continue
			}
			calc, err := roles.New(chg.New)
			if err != nil {
				logger.Error("Reloaded roles rejected", err, logging.String("path", chg.Path))
				continue
			}
			provider.Swap(calc)
			logger.Info("Roles reloaded", logging.String("path", chg.Path))
		}
	}()

	active := reg.Gauge("sessions_active", "Sessions currently held in memory")
	sessions.StartJanitor(ctx, constants.SessionJanitorInterval, cfg.SessionTTL, func(removed, left int) {
		active.Set(float64(left))
		if removed > 0 {
			logger.Debug("Expired sessions swept", logging.Int("removed", removed), logging.Int("left", left))
		}
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: constants.ReadHeaderTimeoutDefault,
		IdleTimeout:       constants.IdleTimeoutDefault,
	}
	go func() {
		logger.Info("Server starting",
			logging.String("port", cfg.Port),
			logging.String("base_path", cfg.BasePath),
			logging.Bool("metrics_enabled", cfg.MetricsEnabled))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal, initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.GracefulShutdownTimeoutDefault)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", err)
	}
	logger.Info("Application shutdown complete")
}
