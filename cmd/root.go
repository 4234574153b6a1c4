package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/partsignal/sourcing-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sourcing-cli",
	Short: "Electronic-component sourcing risk analysis",
	Long:  "Aggregates part data from distributor APIs, tracks stock and price history, and derives supply-chain risk indicators.",
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
