package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var historyPart string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Dump the recorded observation history for a part",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		samples, err := st.Query(ctx, historyPart)
		if err != nil {
			return eris.Wrap(err, "query history")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(samples)
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyPart, "part", "", "part number (required)")
	_ = historyCmd.MarkFlagRequired("part")
	rootCmd.AddCommand(historyCmd)
}
