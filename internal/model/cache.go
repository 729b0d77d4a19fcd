package model

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bluele/gcache"

	"github.com/transitlab/railcast/internal/dataset"
	"github.com/transitlab/railcast/internal/feature"
)

// Store memoizes fitted models keyed by the training data fingerprint,
// so repeated forecast calls against unchanged data reuse one fit. When
// an artifact path is configured it is tried before fitting, and fresh
// fits are written back to it.
type Store struct {
	cache        gcache.Cache
	opts         Options
	artifactPath string
	logger       *slog.Logger
}

func NewStore(opts Options, artifactPath string, cacheSize int, logger *slog.Logger) *Store {
	if cacheSize < 1 {
		cacheSize = 1
	}
	return &Store{
		cache:        gcache.New(cacheSize).LRU().Build(),
		opts:         opts,
		artifactPath: artifactPath,
		logger:       logger,
	}
}

// Options returns the fit parameters the store was built with.
func (s *Store) Options() Options { return s.opts }

// Get returns a fitted model for the table, fitting only when neither
// the in-memory cache nor the artifact can serve it.
func (s *Store) Get(t *dataset.Table, schema feature.Schema, fingerprint string) (Regressor, error) {
	key := cacheKey(s.opts.Kind, schema, fingerprint)

	if cached, err := s.cache.Get(key); err == nil {
		return cached.(Regressor), nil
	}

	if s.artifactPath != "" {
		m, err := LoadArtifact(s.artifactPath, schema)
		if err == nil && m.Kind() == s.opts.Kind {
			s.cache.Set(key, m)
			return m, nil
		}
		if err != nil && !errors.Is(err, ErrLoad) && !errors.Is(err, ErrSchemaMismatch) {
			return nil, err
		}
	}

	m, err := Fit(t, schema, s.opts)
	if err != nil {
		return nil, err
	}

	if s.artifactPath != "" {
		if err := Save(s.artifactPath, m); err != nil {
			s.logger.Warn("failed to persist model artifact",
				"path", s.artifactPath, "error", err)
		}
	}

	s.cache.Set(key, m)
	return m, nil
}

// GetDelay is the delay-target counterpart of Get. Delay fits are cached
// but never persisted; the artifact slot belongs to the cancellation model.
func (s *Store) GetDelay(t *dataset.Table, schema feature.Schema, fingerprint string) (Regressor, error) {
	key := "delay|" + cacheKey(s.opts.Kind, schema, fingerprint)

	if cached, err := s.cache.Get(key); err == nil {
		return cached.(Regressor), nil
	}

	m, err := FitDelay(t, schema, s.opts)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, m)
	return m, nil
}

func cacheKey(kind Kind, schema feature.Schema, fingerprint string) string {
	return fmt.Sprintf("%s|%s|%s", kind, strings.Join(schema, ","), fingerprint)
}
