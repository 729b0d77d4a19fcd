package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}

	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Data.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("data: %w", err))
	}

	if err := c.Model.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("model: %w", err))
	}

	if err := c.Forecast.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("forecast: %w", err))
	}

	if err := c.Cost.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("cost: %w", err))
	}

	if err := c.Chat.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("chat: %w", err))
	}

	return errors.Join(errs...)
}

func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}
	if s.RateLimit.Enabled {
		if s.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limit.requests_per_second must be positive")
		}
		if s.RateLimit.Burst < 1 {
			return fmt.Errorf("rate_limit.burst must be at least 1")
		}
	}
	return nil
}

func (a *AuthConfig) Validate() error {
	if a.Enabled {
		if a.User == "" {
			return fmt.Errorf("user cannot be empty when auth is enabled")
		}
		if a.Password == "" {
			return fmt.Errorf("password cannot be empty when auth is enabled")
		}
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", l.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[l.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, text)", l.Format)
	}

	return nil
}

func (d *DataConfig) Validate() error {
	if d.CancellationsPath == "" {
		return fmt.Errorf("cancellations_path cannot be empty")
	}
	return nil
}

func (m *ModelConfig) Validate() error {
	var errs []error

	validKinds := map[string]bool{
		"random_forest": true,
		"linear":        true,
	}
	if !validKinds[m.Kind] {
		errs = append(errs, fmt.Errorf("invalid model kind: %s (valid: random_forest, linear)", m.Kind))
	}

	if m.NEstimators < 1 {
		errs = append(errs, fmt.Errorf("n_estimators must be at least 1"))
	}
	if m.MinSamplesLeaf < 1 {
		errs = append(errs, fmt.Errorf("min_samples_leaf must be at least 1"))
	}
	if m.MinObservations < 2 {
		errs = append(errs, fmt.Errorf("min_observations must be at least 2"))
	}
	if m.CacheSize < 1 {
		errs = append(errs, fmt.Errorf("cache_size must be at least 1"))
	}

	return errors.Join(errs...)
}

func (f *ForecastConfig) Validate() error {
	if f.HorizonMonths < 1 {
		return fmt.Errorf("horizon_months must be at least 1")
	}
	return nil
}

func (c *CostConfig) Validate() error {
	if c.UnitCostPerEvent < 0 {
		return fmt.Errorf("unit_cost_per_event must be non-negative")
	}
	if c.RecoveryFraction < 0 || c.RecoveryFraction > 1 {
		return fmt.Errorf("recovery_fraction must be between 0 and 1")
	}
	return nil
}

func (c *ChatConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	var errs []error

	if c.BaseURL == "" {
		errs = append(errs, fmt.Errorf("base_url cannot be empty when chat is enabled"))
	}
	if c.APIKey == "" {
		errs = append(errs, fmt.Errorf("api_key cannot be empty when chat is enabled"))
	}
	if c.HistoryLimit < 0 {
		errs = append(errs, fmt.Errorf("history_limit must be non-negative"))
	}
	if c.TimeoutSec < 1 {
		errs = append(errs, fmt.Errorf("timeout_sec must be at least 1"))
	}

	return errors.Join(errs...)
}
