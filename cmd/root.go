package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/pkloom-cli/internal/config"
	"github.com/KaramelBytes/pkloom-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "pkloom",
	Short: "pkloom: pharmacokinetic exposure report from concentration-time data",
	Long: `pkloom merges a concentration-time dataset with subject demographics, cleans
sex and age, computes per-subject AUC with the trapezoidal rule, and reports
descriptive statistics with t-based confidence intervals overall and by sex.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.pkloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text | json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config reload and report the error
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		logging.Init("info", logFormat)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	if debug {
		cfg.LogLevel = "debug"
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)
}

// requireConfig returns the loaded config or the error that prevented loading it.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}
