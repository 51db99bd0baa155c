package main

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/importcalc/internal/currency"
	"github.com/Simplici0/importcalc/internal/logging"
	"github.com/Simplici0/importcalc/internal/pricing"
	"github.com/Simplici0/importcalc/internal/vehicle"
	"github.com/Simplici0/importcalc/web"
)

const (
	maxBodyBytes    = 20 << 20
	shutdownTimeout = 10 * time.Second
)

type server struct {
	schedule pricing.Schedule
	rates    *currency.Cache
	analyzer *vehicle.Analyzer
	logger   *zap.Logger
	pages    *template.Template

	// refYear is the BPM reference year; zero means the calendar year of now().
	refYear int
	now     func() time.Time
}

func newServer(schedule pricing.Schedule, rates *currency.Cache, analyzer *vehicle.Analyzer, logger *zap.Logger, refYear int) (*server, error) {
	pages, err := web.Pages(nil)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &server{
		schedule: schedule,
		rates:    rates,
		analyzer: analyzer,
		logger:   logger,
		pages:    pages,
		refYear:  refYear,
		now:      time.Now,
	}, nil
}

func (s *server) referenceYear() int {
	if s.refYear > 0 {
		return s.refYear
	}
	return s.now().Year()
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(maxBodyBytes))

	r.Get("/", s.handleHome)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze-vehicle", s.handleAnalyzeVehicle)
		r.Post("/clarify-vehicle", s.handleClarifyVehicle)
		r.Post("/calculate-costs", s.handleCalculateCosts)
		r.Post("/estimate-market-price", s.handleEstimateMarketPrice)
		r.Get("/exchange-rates", s.handleExchangeRates)
		r.Get("/convert", s.handleConvert)
	})
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// serve listens on addr until ctx is cancelled or SIGINT/SIGTERM arrives, then drains connections.
func (s *server) serve(ctx context.Context, addr string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown initiated")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("graceful shutdown failed", zap.Error(err))
		return httpServer.Close()
	}
	return nil
}
