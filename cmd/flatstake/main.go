package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/flat-stake/internal/config"
	"github.com/yourusername/flat-stake/internal/display"
	"github.com/yourusername/flat-stake/internal/logger"
	"github.com/yourusername/flat-stake/internal/metrics"
	"github.com/yourusername/flat-stake/internal/service"
	"github.com/yourusername/flat-stake/internal/share"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	rootCmd.AddCommand(allocateCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "flatstake",
	Short: "Flat-profit stake calculator",
	Long: `Splits a budget across several outcomes so that the payout is roughly the
same whichever outcome wins. Stakes are whole multiples of the stake unit.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		setupDependencies(cmd)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "flatstake %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	loaded, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if err := config.Validate(loaded); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = loaded
	return nil
}

func setupDependencies(cmd *cobra.Command) {
	if cmd.Name() == serveCmd.Name() {
		appLog = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	} else {
		// one-shot commands print results on stdout; log to stderr and keep it quiet
		appLog = logger.NewLoggerWithOutput(os.Stderr, cfg.App.LogLevel, cfg.App.Environment)
		if appLog.GetLevel() == logrus.InfoLevel {
			appLog.SetLevel(logrus.WarnLevel)
		}
	}
	metrics.InitRegistry()
}

func newAllocationService() (*service.AllocationService, error) {
	return service.NewAllocationService(cfg.Allocation.StakeUnit, appLog)
}

func newSharer(formatter *display.Formatter) (*share.Sharer, error) {
	return share.New(share.Options{
		Title:     cfg.Share.Title,
		IntentURL: cfg.Share.IntentURL,
		PageURL:   cfg.Share.PageURL,
		Hashtags:  cfg.Share.Hashtags,
	}, formatter)
}
