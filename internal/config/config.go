package config

import "time"

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Data     DataConfig     `yaml:"data"`
	Model    ModelConfig    `yaml:"model"`
	Forecast ForecastConfig `yaml:"forecast"`
	Cost     CostConfig     `yaml:"cost"`
	Chat     ChatConfig     `yaml:"chat"`
}

type ServerConfig struct {
	Host      string          `yaml:"host"`
	Port      int             `yaml:"port"`
	PIDFile   string          `yaml:"pid_file"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type AuthConfig struct {
	Enabled  bool   `yaml:"enabled"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DataConfig points at the historical tables the pipeline trains on.
// PerformancePath is optional; when present the fleet metrics
// (mean distance before failure, on-time percentage) are joined in and
// become part of the feature schema.
type DataConfig struct {
	CancellationsPath string `yaml:"cancellations_path"`
	PerformancePath   string `yaml:"performance_path"`
	Category          string `yaml:"category"`
}

// ModelConfig selects and parameterizes the regressor.
type ModelConfig struct {
	// Kind: random_forest or linear
	Kind string `yaml:"kind"`

	// Seed makes forest fitting deterministic.
	Seed int64 `yaml:"seed"`

	// Forest params
	NEstimators    int `yaml:"n_estimators"`
	MaxDepth       int `yaml:"max_depth"`
	MinSamplesLeaf int `yaml:"min_samples_leaf"`

	// Minimum rows before a fit is allowed.
	MinObservations int `yaml:"min_observations"`

	// ArtifactPath, when set, is tried before fitting; a fresh fit is
	// saved back to it.
	ArtifactPath string `yaml:"artifact_path"`

	// DelayArtifactPath points at the pre-trained trip-delay model. The
	// trip-delay endpoint is only served when this is set.
	DelayArtifactPath string `yaml:"delay_artifact_path"`

	// CacheSize bounds the fitted-model memoization cache.
	CacheSize int `yaml:"cache_size"`
}

type ForecastConfig struct {
	HorizonMonths int `yaml:"horizon_months"`
}

type CostConfig struct {
	UnitCostPerEvent float64 `yaml:"unit_cost_per_event"`
	RecoveryFraction float64 `yaml:"recovery_fraction"`
}

// ChatConfig configures the FAQ-grounded support assistant. The API key is
// injected here (the config layer substitutes ${VARS}); nothing deeper in
// the call path reads the environment.
type ChatConfig struct {
	Enabled      bool    `yaml:"enabled"`
	BaseURL      string  `yaml:"base_url"`
	APIKey       string  `yaml:"api_key"`
	Model        string  `yaml:"model"`
	MaxTokens    int     `yaml:"max_tokens"`
	Temperature  float64 `yaml:"temperature"`
	HistoryLimit int     `yaml:"history_limit"`
	TimeoutSec   int     `yaml:"timeout_sec"`
	FAQPath      string  `yaml:"faq_path"`
}

func (c *ChatConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}
