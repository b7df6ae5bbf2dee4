package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/founder-resolve/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "founder-resolve",
	Short:        "Deduplicate and import founder records",
	Long:         "Matches incoming founder rows against the founder store by LinkedIn profile, email and fuzzy name, then creates, merges or skips them in chunked batches.",
	SilenceUsage: true,
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
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
