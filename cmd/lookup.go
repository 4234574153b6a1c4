package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var lookupPart string

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up sourcing risk for a single part",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initAggregator(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := env.Aggregator.Lookup(ctx, lookupPart)
		if err != nil {
			return eris.Wrap(err, "lookup")
		}

		zap.L().Info("lookup complete",
			zap.String("part", rec.PartNumber),
			zap.String("single_sourced", string(rec.SingleSourced)),
			zap.Float64("risk_score", rec.RiskScore),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	lookupCmd.Flags().StringVar(&lookupPart, "part", "", "part number (required)")
	_ = lookupCmd.MarkFlagRequired("part")
	rootCmd.AddCommand(lookupCmd)
}
