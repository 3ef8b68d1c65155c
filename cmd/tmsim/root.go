// cmd/tmsim/root.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tamzrod/tmrobot-sim/internal/config"
	"github.com/tamzrod/tmrobot-sim/internal/logging"
)

var (
	configPath string
	logLevel   string
	logFormat  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tmsim",
	Short: "TM robot Modbus TCP simulator and latency tester.",
	Long: `tmsim serves a simulated TM robot controller over Modbus TCP and ` +
		`measures request latency against it (or against a real controller).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"YAML config file (defaults are used when omitted)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format: console|json")
}

// setup loads, overrides, validates and normalizes the config, then builds the logger.
// apply receives the loaded config before validation so command flags win over the file.
func setup(apply func(cfg *config.Config)) (*config.Config, *logging.Logger, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if apply != nil {
		apply(cfg)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	log, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
