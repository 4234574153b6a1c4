// Package adapter normalizes distributor API payloads into supplier quotes.
// Each adapter probes its distributor's inconsistent field names and shapes
// and never fails a lookup: network and payload problems become an Error
// result with a human-readable message.
package adapter

import (
	"context"
	"sort"
	"sync"

	"github.com/partsignal/sourcing-cli/internal/model"
	"github.com/partsignal/sourcing-cli/internal/parse"
)

// Adapter fetches and normalizes one distributor's view of a part.
type Adapter interface {
	// Name returns the distributor name used in quotes and audit messages.
	Name() string
	// Fetch looks up a part. It always produces a result; upstream failures
	// are carried in the result's outcome and message.
	Fetch(ctx context.Context, partNumber string) model.AdapterResult
}

// Registry holds adapters in priority order. Identity-field merging is
// first-wins in registration order, so order matters.
type Registry struct {
	mu       sync.RWMutex
	adapters []Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends an adapter at the lowest remaining priority.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters = append(r.adapters, a)
}

// Adapters returns the registered adapters in priority order.
func (r *Registry) Adapters() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// priceBreaks normalizes a raw break list into ordered tiers. Quantity and
// price key names differ per distributor; unparseable entries are dropped.
func priceBreaks(raw []map[string]any, qtyKeys, priceKeys []string) []model.PriceBreak {
	var breaks []model.PriceBreak
	for _, entry := range raw {
		qty := probeInt(entry, qtyKeys...)
		if qty <= 0 {
			continue
		}
		var price float64
		for _, pk := range priceKeys {
			v, ok := lookupPath(entry, pk)
			if !ok {
				continue
			}
			switch t := v.(type) {
			case float64:
				price = t
			case string:
				price = parse.Money(t)
			}
			if price > 0 {
				break
			}
		}
		breaks = append(breaks, model.PriceBreak{Quantity: qty, UnitPrice: price})
	}
	sort.Slice(breaks, func(i, j int) bool { return breaks[i].Quantity < breaks[j].Quantity })
	return breaks
}

// found assembles a successful result.
func found(name string, identity model.Identity, quote model.SupplierQuote, message string) model.AdapterResult {
	return model.AdapterResult{
		Distributor: name,
		Outcome:     model.OutcomeFound,
		Quote:       &quote,
		Identity:    identity,
		Message:     message,
	}
}

// notFound assembles a no-results result.
func notFound(name, message string) model.AdapterResult {
	return model.AdapterResult{
		Distributor: name,
		Outcome:     model.OutcomeNotFound,
		Message:     message,
	}
}

// failure assembles an error result.
func failure(name, message string) model.AdapterResult {
	return model.AdapterResult{
		Distributor: name,
		Outcome:     model.OutcomeError,
		Message:     message,
	}
}
