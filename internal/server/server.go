// Package server exposes the analysis session over HTTP so rendering
// collaborators (dashboards, notebooks, scripts) can drive recalculation and
// fetch the report, charts and workbook of the current dataset.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/rewired-gh/countrystats/internal/analysis"
	"github.com/rewired-gh/countrystats/internal/errsink"
	countrymiddleware "github.com/rewired-gh/countrystats/internal/server/middleware"
)

type WebAPI struct {
	router          http.Handler
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Session  *analysis.Session
	Sink     *errsink.Slot
	History  HistoryLister
	Notifier Notifier
	Logger   zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

// ConfigureRouter builds the API router.
func ConfigureRouter(config Config) http.Handler {
	h := NewHandler(config.Dependencies)
	logger := config.Dependencies.Logger

	router := chi.NewRouter()
	router.Use(countrymiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", h.GetCatalog)
		r.Get("/error", h.GetError)
		r.Get("/history", h.ListHistory)
		r.Route("/analysis", func(r chi.Router) {
			r.Get("/", h.GetAnalysis)
			r.Post("/", h.Recalculate)
			r.Get("/report", h.GetReport)
			r.Get("/chart", h.GetChart)
			r.Get("/workbook", h.GetWorkbook)
		})
	})

	return router
}

func NewWebAPI(config Config) *WebAPI {
	router := ConfigureRouter(config)
	logger := config.Dependencies.Logger

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &WebAPI{
		router:          router,
		logger:          &logger,
		shutdownTimeout: shutdownTimeout,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start serves until the listener fails or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

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
