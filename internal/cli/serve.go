package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/transitlab/railcast/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the forecasting server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	if cfg.Server.PIDFile != "" {
		pid := strconv.Itoa(os.Getpid())
		if err := os.WriteFile(cfg.Server.PIDFile, []byte(pid), 0644); err != nil {
			return fmt.Errorf("failed to write pid file: %w", err)
		}
		defer os.Remove(cfg.Server.PIDFile)
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// SIGHUP reloads config and data by rebuilding the server.
	for {
		srv, err := server.New(cfg, log)
		if err != nil {
			return err
		}

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- srv.ListenAndServe(runCtx) }()

		select {
		case <-hup:
			log.Info("reload requested")
			cancel()
			if err := <-done; err != nil {
				return err
			}
			if reloaded, err := loadConfig(); err != nil {
				log.Error("reload failed, keeping previous config", "error", err)
			} else {
				cfg = reloaded
				log = newLogger(cfg)
			}
			continue

		case err := <-done:
			cancel()
			return err
		}
	}
}
