package main

import (
	"context"
	"time"

	"github.com/partsignal/sourcing-cli/internal/adapter"
	"github.com/partsignal/sourcing-cli/internal/aggregate"
	"github.com/partsignal/sourcing-cli/internal/enrich"
	"github.com/partsignal/sourcing-cli/internal/history"
	"github.com/partsignal/sourcing-cli/internal/risk"
	"github.com/partsignal/sourcing-cli/pkg/digikey"
	"github.com/partsignal/sourcing-cli/pkg/mouser"
	"github.com/partsignal/sourcing-cli/pkg/newsfeed"
)

// lookupEnv bundles everything a lookup-driven command needs.
type lookupEnv struct {
	Store      history.Store
	Aggregator *aggregate.Aggregator
}

// Close releases the environment's resources.
func (e *lookupEnv) Close() {
	if e.Store != nil {
		e.Store.Close()
	}
}

// initAggregator wires clients, adapters, the risk engine, and the history
// store into an Aggregator. Registration order is the identity-field merge
// priority: DigiKey first, then Mouser.
func initAggregator(ctx context.Context) (*lookupEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	dkClient := digikey.NewClient(cfg.DigiKey.ClientID, cfg.DigiKey.ClientSecret,
		digikey.WithBaseURL(cfg.DigiKey.BaseURL),
		digikey.WithTokenURL(cfg.DigiKey.TokenURL),
		digikey.WithRateLimit(cfg.DigiKey.RateRPS),
	)
	mouserClient := mouser.NewClient(cfg.Mouser.APIKey,
		mouser.WithBaseURL(cfg.Mouser.BaseURL),
		mouser.WithRateLimit(cfg.Mouser.RateRPS),
	)

	registry := adapter.NewRegistry()
	registry.Register(adapter.NewDigiKey(dkClient))
	registry.Register(adapter.NewMouser(mouserClient))

	engine := risk.NewEngine(risk.Config{
		RiskyRegions:        cfg.Risk.RiskyRegions,
		LandedSurcharge:     cfg.Risk.LandedSurcharge,
		BottleneckStock:     cfg.Risk.BottleneckStock,
		BottleneckLeadWeeks: cfg.Risk.BottleneckLeadWeeks,
		DeclineThreshold:    cfg.Risk.DeclineThreshold,
		VolatilityThreshold: cfg.Risk.VolatilityThreshold,
	})

	opts := []aggregate.Option{
		aggregate.WithTimeout(time.Duration(cfg.Lookup.TimeoutSecs) * time.Second),
	}
	if cfg.News.Key != "" {
		newsClient := newsfeed.NewClient(cfg.News.Key, newsfeed.WithBaseURL(cfg.News.BaseURL))
		opts = append(opts, aggregate.WithEnricher(enrich.New(newsClient, cfg.News.MaxHeadlines)))
	}

	agg := aggregate.New(registry, st, engine, opts...)

	return &lookupEnv{Store: st, Aggregator: agg}, nil
}
