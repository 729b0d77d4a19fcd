package config

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			PIDFile: "",
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerSecond: 50,
				Burst:             100,
			},
		},
		Auth: AuthConfig{
			Enabled:  false,
			User:     "",
			Password: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Data: DataConfig{
			CancellationsPath: "data/RAIL_CANCELLATIONS_DATA.csv",
			PerformancePath:   "",
			Category:          "Mechanical",
		},
		Model: ModelConfig{
			Kind:              "random_forest",
			Seed:              42,
			NEstimators:       100,
			MaxDepth:          10,
			MinSamplesLeaf:    1,
			MinObservations:   2,
			ArtifactPath:      "",
			DelayArtifactPath: "",
			CacheSize:         8,
		},
		Forecast: ForecastConfig{
			HorizonMonths: 6,
		},
		Cost: CostConfig{
			UnitCostPerEvent: 5000,
			RecoveryFraction: 0.15,
		},
		Chat: ChatConfig{
			Enabled:      false,
			BaseURL:      "https://api.openai.com/v1",
			APIKey:       "",
			Model:        "gpt-3.5-turbo",
			MaxTokens:    200,
			Temperature:  0.7,
			HistoryLimit: 5,
			TimeoutSec:   15,
			FAQPath:      "",
		},
	}
}
