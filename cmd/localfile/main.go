package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"localfile/internal/config"
	"localfile/internal/logging"
)

var (
	// Global flags
	dataDir      string
	groupID      string
	entityID     string
	fiscalYear   string
	templatePath string
	verbose      bool

	cfg    config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "localfile",
	Short: "Layered assembly engine for transfer pricing local files",
	Long: `localfile assembles transfer pricing local file reports from a
four-layer content cascade (universal, firm, group, entity), a group
record store and per-deliverable blueprints.

Content overrides are plain Markdown files; the record store and
blueprints are JSON under the group data directory. Every command
resolves the same way the editing surface does, so a deliverable
assembles identically wherever it is rendered.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		if verbose {
			cfg.LogLevel = "debug"
		}
		var err error
		logger, err = logging.New(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Group data directory root (default: LOCALFILE_DATA_DIR or ./data)")
	rootCmd.PersistentFlags().StringVarP(&groupID, "group", "g", "", "Group id")
	rootCmd.PersistentFlags().StringVarP(&entityID, "entity", "e", "", "Entity id")
	rootCmd.PersistentFlags().StringVarP(&fiscalYear, "fiscal-year", "y", "", "Fiscal year, e.g. 2024")
	rootCmd.PersistentFlags().StringVar(&templatePath, "template", "", "Section template JSON file (default: built-in playbook)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(assembleCmd)
	rootCmd.AddCommand(blueprintCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(gatewayCmd)
	rootCmd.AddCommand(syncCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
