package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/partsignal/sourcing-cli/internal/bom"
	"github.com/partsignal/sourcing-cli/internal/model"
)

var (
	bomFile   string
	bomColumn string
	bomSheet  string
	bomLimit  int
)

var bomCmd = &cobra.Command{
	Use:   "bom",
	Short: "Look up sourcing risk for every part in a BOM file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		parts, err := bom.Load(bomFile, bom.Options{Column: bomColumn, SheetName: bomSheet})
		if err != nil {
			return eris.Wrap(err, "load bom")
		}

		env, err := initAggregator(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		records, err := processParts(ctx, parts, bomLimit, cfg.Lookup.MaxConcurrentParts, func(ctx context.Context, partNumber string) (*model.PartRecord, error) {
			return env.Aggregator.Lookup(ctx, partNumber)
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	},
}

func init() {
	bomCmd.Flags().StringVar(&bomFile, "file", "", "BOM file path, .csv or .xlsx (required)")
	bomCmd.Flags().StringVar(&bomColumn, "column", "", "part number column header (default: first column)")
	bomCmd.Flags().StringVar(&bomSheet, "sheet", "", "worksheet name for .xlsx files")
	bomCmd.Flags().IntVar(&bomLimit, "limit", 0, "max number of parts to process (0 = all)")
	_ = bomCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(bomCmd)
}

// lookupFunc is the callback signature for looking up a single part.
type lookupFunc func(ctx context.Context, partNumber string) (*model.PartRecord, error)

// processParts applies limit, then looks parts up concurrently using the given
// lookup function. Individual failures are logged and do not abort the batch.
func processParts(ctx context.Context, parts []string, limit, concurrency int, lookup lookupFunc) ([]*model.PartRecord, error) {
	if len(parts) == 0 {
		zap.L().Info("no parts found in bom")
		return nil, nil
	}

	if limit > 0 && len(parts) > limit {
		parts = parts[:limit]
	}

	zap.L().Info("processing bom",
		zap.Int("parts", len(parts)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64
	var mu sync.Mutex
	records := make([]*model.PartRecord, 0, len(parts))

	for _, part := range parts {
		g.Go(func() error {
			log := zap.L().With(zap.String("part", part))

			rec, err := lookup(gctx, part)
			if err != nil {
				failed.Add(1)
				log.Error("lookup failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			log.Info("lookup complete",
				zap.Float64("risk_score", rec.RiskScore),
				zap.Int("suppliers", len(rec.Suppliers)),
			)

			mu.Lock()
			records = append(records, rec)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "bom processing")
	}

	zap.L().Info("bom complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return records, nil
}
