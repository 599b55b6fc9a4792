package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/safety-management/internal/annotation"
	"github.com/frahmantamala/safety-management/internal/auth"
	"github.com/frahmantamala/safety-management/internal/certificate"
	"github.com/frahmantamala/safety-management/internal/company"
	"github.com/frahmantamala/safety-management/internal/employee"
	"github.com/frahmantamala/safety-management/internal/transport"
	"github.com/frahmantamala/safety-management/internal/transport/rest"
	"github.com/frahmantamala/safety-management/internal/transport/swagger"
	"github.com/go-chi/chi"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer()
	},
}

func startHTTPServer() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	router, err := newRouter(app)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		app.Logger.Info("starting HTTP server", "address", addr)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		app.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			app.Logger.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	app.Logger.Info("server stopped")
	return nil
}

func newRouter(app *App) (*chi.Mux, error) {
	cfg := app.Config
	base := transport.NewBaseHandler(app.Logger)

	notes, err := annotation.Open(cfg.Annotations.Path, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open notes store: %w", err)
	}

	handlers := rest.Handlers{
		Auth:        auth.NewHandler(base, app.Auth),
		Certificate: certificate.NewHandler(base, app.Certificates),
		Employee:    employee.NewHandler(base, app.Employees),
		Company:     company.NewHandler(base, app.Companies),
		Annotation:  annotation.NewHandler(base, notes),
		Health:      rest.NewHealthHandler(healthChecks(app)),
	}
	if cfg.Observability.Metrics.Enabled {
		handlers.Metrics = app.Metrics
		handlers.MetricsPath = cfg.Observability.Metrics.Path
	}
	if cfg.Server.OpenAPIPath != "" {
		spec, err := swagger.LoadSpec(context.Background(), cfg.Server.OpenAPIPath)
		if err != nil {
			return nil, err
		}
		handlers.Spec = spec
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, handlers, cfg.Server.AllowedOrigins, app.Logger)
	return router, nil
}

func healthChecks(app *App) map[string]rest.CheckFunc {
	checks := map[string]rest.CheckFunc{
		"postgres": app.SQLX.PingContext,
	}
	if k := app.Config.Events.Kafka; k.Enabled {
		checks["kafka"] = func(ctx context.Context) error {
			conn, err := (&kafka.Dialer{}).DialContext(ctx, "tcp", k.Brokers[0])
			if err != nil {
				return err
			}
			return conn.Close()
		}
	}
	return checks
}
