package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/transitlab/railcast/internal/chat"
	"github.com/transitlab/railcast/internal/config"
	"github.com/transitlab/railcast/internal/dataset"
	"github.com/transitlab/railcast/internal/feature"
	"github.com/transitlab/railcast/internal/model"
	"github.com/transitlab/railcast/internal/risk"
	"github.com/transitlab/railcast/internal/server/middleware"
)

const maxBodyBytes = 1 << 20

// Server owns the loaded history, the model store, and the HTTP surface.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger

	table       *dataset.Table
	fingerprint string
	schema      feature.Schema
	store       *model.Store
	delayModel  model.Regressor
	translator  risk.Translator
	assistant   *chat.Client

	httpServer *http.Server
}

// New loads the configured datasets and assembles the server. The chat
// assistant is only wired when enabled in config.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	tbl, err := dataset.Load(cfg.Data.CancellationsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load cancellations data: %w", err)
	}
	tbl = tbl.FilterCategory(cfg.Data.Category)

	fingerprint, err := dataset.Fingerprint(cfg.Data.CancellationsPath)
	if err != nil {
		return nil, err
	}

	if cfg.Data.PerformancePath != "" {
		perf, err := dataset.LoadPerformance(cfg.Data.PerformancePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load performance data: %w", err)
		}
		tbl = tbl.JoinPerformance(perf)

		perfFP, err := dataset.Fingerprint(cfg.Data.PerformancePath)
		if err != nil {
			return nil, err
		}
		fingerprint += "+" + perfFP
	}

	kind, err := model.ParseKind(cfg.Model.Kind)
	if err != nil {
		return nil, err
	}
	opts := model.Options{
		Kind:            kind,
		Seed:            cfg.Model.Seed,
		NEstimators:     cfg.Model.NEstimators,
		MaxDepth:        cfg.Model.MaxDepth,
		MinSamplesLeaf:  cfg.Model.MinSamplesLeaf,
		MinObservations: cfg.Model.MinObservations,
	}

	s := &Server{
		cfg:         cfg,
		logger:      logger,
		table:       tbl,
		fingerprint: fingerprint,
		schema:      feature.SchemaFor(tbl),
		store:       model.NewStore(opts, cfg.Model.ArtifactPath, cfg.Model.CacheSize, logger),
		translator: risk.Translator{
			UnitCost:         cfg.Cost.UnitCostPerEvent,
			RecoveryFraction: cfg.Cost.RecoveryFraction,
		},
	}

	if cfg.Model.DelayArtifactPath != "" {
		s.delayModel, err = model.LoadArtifact(cfg.Model.DelayArtifactPath, feature.DelaySchema())
		if err != nil {
			return nil, fmt.Errorf("failed to load trip-delay model: %w", err)
		}
	}

	if cfg.Chat.Enabled {
		var faq *chat.FAQ
		if cfg.Chat.FAQPath != "" {
			faq, err = chat.LoadFAQ(cfg.Chat.FAQPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load faq: %w", err)
			}
		}
		s.assistant = chat.NewClient(chat.Options{
			BaseURL:      cfg.Chat.BaseURL,
			APIKey:       cfg.Chat.APIKey,
			Model:        cfg.Chat.Model,
			MaxTokens:    cfg.Chat.MaxTokens,
			Temperature:  cfg.Chat.Temperature,
			HistoryLimit: cfg.Chat.HistoryLimit,
			Timeout:      cfg.Chat.Timeout(),
		}, faq, logger)
	}

	logger.Info("history loaded",
		"rows", tbl.Len(),
		"schema", s.schema,
		"model", cfg.Model.Kind)

	return s, nil
}

// Handler builds the full middleware-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	middlewares := []middleware.Middleware{
		middleware.Recovery(s.logger),
		middleware.Logging(s.logger),
		middleware.MaxBody(maxBodyBytes),
	}

	if s.cfg.Auth.Enabled {
		middlewares = append(middlewares,
			middleware.BasicAuth(s.cfg.Auth.User, s.cfg.Auth.Password, "/health", "/metrics"))
	}
	if s.cfg.Server.RateLimit.Enabled {
		middlewares = append(middlewares,
			middleware.RateLimit(s.cfg.Server.RateLimit.RequestsPerSecond, s.cfg.Server.RateLimit.Burst))
	}

	return middleware.Chain(s.routes(), middlewares...)
}

// ListenAndServe blocks until the context is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return s.httpServer.Shutdown(shutdownCtx)
}

// fitModel resolves the regressor for the requested target.
func (s *Server) fitModel(target string) (model.Regressor, error) {
	if target == targetDelays {
		return s.store.GetDelay(s.table, s.schema, s.fingerprint)
	}
	return s.store.Get(s.table, s.schema, s.fingerprint)
}

// historicalMean is the observed average for the requested target.
func (s *Server) historicalMean(target string) float64 {
	summary := s.table.Summarize()
	if target == targetDelays {
		return summary.MeanDelay
	}
	return summary.MeanCancel
}
