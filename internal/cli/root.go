package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"doelab/internal/config"
	"doelab/internal/infrastructure"
)

var rootCmd = &cobra.Command{
	Use:   "doelab",
	Short: "Design of experiments and process statistics",
	Long: `doelab generates experiment design matrices and runs the statistical
analyses behind the DOE Lab API from the command line.

Designs are read from YAML or JSON files; tabular data from CSV or XLSX.
Results are printed as JSON unless an output file is given.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
}

// Persistent flags
var (
	configFile string
	logLevel   string
)

// Loaded by loadRuntime before every command
var (
	cfg    *config.Config
	logger *slog.Logger
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: DOELAB_CONFIG_FILE or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
}

// loadRuntime reads configuration and builds a stderr logger so command
// output on stdout stays machine readable
func loadRuntime(cmd *cobra.Command, args []string) error {
	var err error
	if configFile != "" {
		cfg, err = config.LoadFrom(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	logCfg := cfg.Logging
	logCfg.Output = "console"
	logCfg.Level = logLevel
	logger, err = infrastructure.NewLogger(logCfg, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	return nil
}
