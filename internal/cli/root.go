package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/transitlab/railcast/internal/config"
	"github.com/transitlab/railcast/internal/logger"
)

var (
	version = "dev"

	flagConfig   string
	flagHost     string
	flagPort     int
	flagJSON     bool
	flagVerbose  bool
	flagUser     string
	flagPassword string
)

var rootCmd = &cobra.Command{
	Use:   "railcast",
	Short: "Rail cancellation and delay forecasting service",
	Long: `railcast trains regression models on historical rail cancellation and
delay data and serves forecasts, feature importances, and risk
assessments over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// SetVersion is called from main with the build version.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "", "server host (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&flagPort, "port", "p", 0, "server port (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "raw JSON output for client commands")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "basic auth user for client commands")
	rootCmd.PersistentFlags().StringVar(&flagPassword, "password", "", "basic auth password for client commands")
}

// loadConfig resolves config from the file (or defaults) and applies
// flag overrides.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if flagConfig != "" {
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	if flagHost != "" {
		cfg.Server.Host = flagHost
	}
	if flagPort != 0 {
		cfg.Server.Port = flagPort
	}
	if flagVerbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(cfg.Logging.Level, cfg.Logging.Format)
}
