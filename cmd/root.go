package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/edu-demography/county-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "county-cli",
	Short: "Historical county boundary toolkit",
	Long:  "Builds county crosswalks between decennial census years from NHGIS boundary files, assigns geocoded colleges to historical counties, and summarizes boundary changes.",
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
