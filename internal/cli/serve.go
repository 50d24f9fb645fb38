package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"doelab/internal/app"
	"doelab/pkg/contracts"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the DOE Lab HTTP API with the loaded configuration.

Examples:
  doelab serve
  doelab serve --port 9000`,
	RunE: runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
		return err
	},
}

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Override the listen port")
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	application, err := app.NewApplicationWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return application.Run()
}
