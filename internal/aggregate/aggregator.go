// Package aggregate orchestrates distributor adapters, merges their answers
// into one canonical part record, and maintains the observation history.
package aggregate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/partsignal/sourcing-cli/internal/adapter"
	"github.com/partsignal/sourcing-cli/internal/enrich"
	"github.com/partsignal/sourcing-cli/internal/history"
	"github.com/partsignal/sourcing-cli/internal/model"
	"github.com/partsignal/sourcing-cli/internal/risk"
)

const defaultTimeout = 5 * time.Second

// Aggregator owns every dependency a lookup needs: the adapter registry in
// priority order, the history store, the risk engine, and the optional
// enricher. It replaces any process-wide state; construct one and pass it in.
type Aggregator struct {
	registry *adapter.Registry
	store    history.Store
	engine   *risk.Engine
	enricher *enrich.Enricher
	timeout  time.Duration

	mu        sync.Mutex
	partLocks map[string]*sync.Mutex
}

// Option configures the aggregator.
type Option func(*Aggregator)

// WithEnricher attaches a news enricher.
func WithEnricher(e *enrich.Enricher) Option {
	return func(a *Aggregator) { a.enricher = e }
}

// WithTimeout sets the per-adapter fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) { a.timeout = d }
}

// New creates an Aggregator.
func New(registry *adapter.Registry, store history.Store, engine *risk.Engine, opts ...Option) *Aggregator {
	a := &Aggregator{
		registry:  registry,
		store:     store,
		engine:    engine,
		timeout:   defaultTimeout,
		partLocks: make(map[string]*sync.Mutex),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Lookup fetches a part from every configured distributor, merges the
// results into a canonical record, derives risk fields against history, and
// appends one history sample per successful quote. A failing distributor or
// enricher degrades the record; only a history-store failure is returned as
// an error.
func (a *Aggregator) Lookup(ctx context.Context, partNumber string) (*model.PartRecord, error) {
	adapters := a.registry.Adapters()

	// Fan out concurrently; results land in priority slots so the merge is
	// deterministic regardless of arrival order.
	results := make([]model.AdapterResult, len(adapters))
	g, gctx := errgroup.WithContext(ctx)
	for i, ad := range adapters {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, a.timeout)
			defer cancel()
			results[i] = ad.Fetch(fctx, partNumber)
			return nil
		})
	}
	// Adapters report failures in their result, never as errors.
	_ = g.Wait()

	rec := a.merge(partNumber, results)

	samples, err := a.store.Query(ctx, partNumber)
	if err != nil {
		return nil, eris.Wrapf(err, "aggregate: query history for %s", partNumber)
	}

	a.engine.Derive(rec, samples)

	if a.enricher != nil {
		rec.CurrentEvents = a.enricher.CurrentEvents(ctx, rec.Category, rec.Manufacturer)
		rec.IndustryTrends = a.enricher.IndustryTrends(ctx, rec.Category)
	}

	rec.CheckedAt = time.Now().UTC()

	if err := a.appendSamples(ctx, rec); err != nil {
		return nil, err
	}

	zap.L().Info("part lookup complete",
		zap.String("part", partNumber),
		zap.Int("suppliers", len(rec.Suppliers)),
		zap.Float64("risk_score", rec.RiskScore),
	)

	return rec, nil
}

// merge folds adapter results into a draft record. Identity fields keep the
// first non-empty value in priority order; the quote list accumulates one
// quote per distributor; every distributor leaves an audit message.
func (a *Aggregator) merge(partNumber string, results []model.AdapterResult) *model.PartRecord {
	rec := model.NewPartRecord(partNumber)
	seen := make(map[string]bool)

	for _, res := range results {
		rec.SourcesChecked = append(rec.SourcesChecked, res.Message)

		if res.Outcome != model.OutcomeFound || res.Quote == nil {
			continue
		}
		if seen[res.Distributor] {
			continue
		}
		seen[res.Distributor] = true

		if rec.Manufacturer == "Unknown" && res.Identity.Manufacturer != "" {
			rec.Manufacturer = res.Identity.Manufacturer
		}
		if rec.Description == "Not available" && res.Identity.Description != "" {
			rec.Description = res.Identity.Description
		}
		if rec.Category == "Unknown" && res.Identity.Category != "" {
			rec.Category = res.Identity.Category
		}
		if rec.LifecycleStatus == "Unknown" && res.Identity.LifecycleStatus != "" {
			rec.LifecycleStatus = res.Identity.LifecycleStatus
		}

		quote := *res.Quote
		rec.Suppliers = append(rec.Suppliers, quote)

		if quote.LeadWeeks > 0 {
			rec.LeadTimes[quote.Name] = fmt.Sprintf("%d weeks", quote.LeadWeeks)
			if rec.LeadTime == "Not specified" {
				rec.LeadTime = rec.LeadTimes[quote.Name]
			}
		} else {
			rec.LeadTimes[quote.Name] = "Not specified"
		}
	}

	return rec
}

// appendSamples records one history sample per successful quote. Appends for
// the same part are serialized so concurrent lookups cannot interleave a
// partial set of samples into the trend series.
func (a *Aggregator) appendSamples(ctx context.Context, rec *model.PartRecord) error {
	if len(rec.Suppliers) == 0 {
		return nil
	}

	lock := a.partLock(rec.PartNumber)
	lock.Lock()
	defer lock.Unlock()

	for _, q := range rec.Suppliers {
		price, _ := q.MinPrice()
		sample := model.HistorySample{
			PartNumber: rec.PartNumber,
			Supplier:   q.Name,
			Price:      price,
			Stock:      q.Stock,
			RiskScore:  rec.RiskScore,
			RecordedAt: rec.CheckedAt,
		}
		if err := a.store.Append(ctx, sample); err != nil {
			return eris.Wrapf(err, "aggregate: append history for %s", rec.PartNumber)
		}
	}
	return nil
}

func (a *Aggregator) partLock(partNumber string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.partLocks[partNumber]
	if !ok {
		lock = &sync.Mutex{}
		a.partLocks[partNumber] = lock
	}
	return lock
}
