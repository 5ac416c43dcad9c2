package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/underwrite-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "underwrite",
	Short: "Underwriting flag evaluator for company financial statements",
	Long:  "Reads financial statement documents, selects the reporting period, computes revenue, leverage and interest-cover metrics and assigns a risk flag to each.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
