package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/de-tools/posture-exporter/pkg/handlers/scrape"
	"github.com/de-tools/posture-exporter/pkg/metrics"
	exportermiddleware "github.com/de-tools/posture-exporter/pkg/server/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const (
	defaultMetricsPath     = "/metrics"
	defaultShutdownTimeout = 10 * time.Second
)

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Registry *metrics.Registry
	Logger   zerolog.Logger
}

type Config struct {
	Addr            string
	MetricsPath     string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

// ConfigureRouter builds the exposition router. The metrics endpoint is the
// only inbound route.
func ConfigureRouter(config Config) *chi.Mux {
	logger := config.Dependencies.Logger
	scrapeHandler := scrape.NewHandler(config.Dependencies.Registry)

	router := chi.NewRouter()

	router.Use(exportermiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	path := config.MetricsPath
	if path == "" {
		path = defaultMetricsPath
	}
	router.Get(path, scrapeHandler.Metrics)

	return router
}

func NewWebAPI(config Config) *WebAPI {
	router := ConfigureRouter(config)
	logger := config.Dependencies.Logger

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
		shutdownTimeout: timeout,
	}
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding scrapes a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
