package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/flat-stake/internal/api"
	"github.com/yourusername/flat-stake/internal/display"
	"github.com/yourusername/flat-stake/internal/health"
	"github.com/yourusername/flat-stake/internal/service"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and live websocket sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	svc, err := newAllocationService()
	if err != nil {
		return err
	}
	formatter := display.Default()
	sharer, err := newSharer(formatter)
	if err != nil {
		return err
	}

	healthHandler := health.NewHandler(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Logger:      appLog,
		Checks: []health.Checker{
			health.CheckFunc{CheckName: "allocator", Fn: svc.SelfCheck},
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := api.NewServer(ctx, cfg, api.Dependencies{
		Allocator: svc,
		Checker:   service.NewStateValidator(svc.Unit(), appLog),
		Formatter: formatter,
		Sharer:    sharer,
		Health:    healthHandler,
		Logger:    appLog,
	})

	appLog.WithFields(logrus.Fields{
		"version":     Version,
		"commit":      GitCommit,
		"environment": cfg.App.Environment,
		"stake_unit":  cfg.Allocation.StakeUnit,
	}).Info("Starting flat-stake server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigChan:
		appLog.WithField("signal", sig).Info("Shutdown signal received")
	}

	// close live sessions before draining HTTP
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	appLog.Info("Server stopped")
	return nil
}
