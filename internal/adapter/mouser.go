package adapter

import (
	"context"
	"fmt"

	"github.com/partsignal/sourcing-cli/internal/model"
	"github.com/partsignal/sourcing-cli/internal/resilience"
	"github.com/partsignal/sourcing-cli/pkg/mouser"
)

// Mouser adapts Mouser exact part-number search results.
type Mouser struct {
	client mouser.Client
	retry  resilience.RetryConfig
}

// NewMouser creates the Mouser adapter.
func NewMouser(client mouser.Client) *Mouser {
	return &Mouser{
		client: client,
		retry:  resilience.DefaultRetryConfig(),
	}
}

// Name implements Adapter.
func (m *Mouser) Name() string { return "Mouser" }

// Fetch implements Adapter.
func (m *Mouser) Fetch(ctx context.Context, partNumber string) model.AdapterResult {
	resp, err := resilience.DoVal(ctx, m.retry, "mouser", func(ctx context.Context) (*mouser.SearchResponse, error) {
		return m.client.SearchPartNumber(ctx, partNumber)
	})
	if err != nil {
		return failure(m.Name(), fmt.Sprintf("Mouser API: Error - %v", err))
	}

	if len(resp.Errors) > 0 {
		return failure(m.Name(), fmt.Sprintf("Mouser API: Error - %s", resp.Errors[0].Message))
	}
	if resp.SearchResults.NumberOfResult == 0 || len(resp.SearchResults.Parts) == 0 {
		return notFound(m.Name(), fmt.Sprintf("Mouser API: No results for '%s'", partNumber))
	}

	identity, quote := m.normalize(resp.SearchResults.Parts[0])
	return found(m.Name(), identity, quote, fmt.Sprintf("Mouser API: Searched for '%s'", partNumber))
}

// normalize probes a raw part payload into an identity and a quote.
func (m *Mouser) normalize(p map[string]any) (model.Identity, model.SupplierQuote) {
	identity := model.Identity{
		Manufacturer:    probeString(p, "Manufacturer", "ManufacturerName", "manufacturer"),
		Description:     probeString(p, "Description", "ProductDescription", "description"),
		Category:        probeString(p, "Category", "CategoryName", "category"),
		LifecycleStatus: probeString(p, "LifecycleStatus", "ProductStatus", "productStatus"),
	}

	quote := model.SupplierQuote{
		Name:            m.Name(),
		Stock:           probeInt(p, "AvailabilityInStock", "Availability", "QuantityAvailable"),
		LeadWeeks:       probeLeadWeeks(p, leadKey{"LeadTime", false}, leadKey{"FactoryLeadDays", true}),
		PriceBreaks:     priceBreaks(probeList(p, "PriceBreaks", "standardPricing", "PriceList"), []string{"Quantity", "breakQuantity"}, []string{"Price", "unitPrice"}),
		CountryOfOrigin: probeString(p, "CountryOfOrigin", "countryOfOrigin"),
		HTSCode:         probeString(p, "TariffCode", "HtsCode", "htsCode"),
		TariffActive:    probeBool(p, "TariffApplied", "TariffActive", "TariffStatus"),
		ProductURL:      probeString(p, "ProductDetailUrl", "productUrl"),
	}

	quote.MOQ = probeInt(p, "Min", "Minimum", "MinimumOrderQuantity")
	if quote.MOQ == 0 && len(quote.PriceBreaks) > 0 {
		quote.MOQ = quote.PriceBreaks[0].Quantity
	}

	return identity, quote
}
