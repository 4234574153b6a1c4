package adapter

import (
	"context"
	"fmt"

	"github.com/partsignal/sourcing-cli/internal/model"
	"github.com/partsignal/sourcing-cli/internal/resilience"
	"github.com/partsignal/sourcing-cli/pkg/digikey"
)

// digikeyAliases maps part numbers to known alias part numbers tried when
// the primary identifier returns no results. First hit wins.
var digikeyAliases = map[string][]string{
	"640456-5":           {"A19471-ND"},
	"433-1028-ND":        {"0039012040"},
	"10165968-113Y000LF": {"609-11109-ND"},
	"WT-1205":            {"433-1028-ND"},
}

// DigiKey adapts DigiKey keyword search results.
type DigiKey struct {
	client  digikey.Client
	retry   resilience.RetryConfig
	aliases map[string][]string
}

// NewDigiKey creates the DigiKey adapter.
func NewDigiKey(client digikey.Client) *DigiKey {
	return &DigiKey{
		client:  client,
		retry:   resilience.DefaultRetryConfig(),
		aliases: digikeyAliases,
	}
}

// Name implements Adapter.
func (d *DigiKey) Name() string { return "DigiKey" }

// Fetch implements Adapter. The primary part number is searched first, then
// any known alias variants, first match wins.
func (d *DigiKey) Fetch(ctx context.Context, partNumber string) model.AdapterResult {
	variants := append([]string{partNumber}, d.aliases[partNumber]...)

	for _, variant := range variants {
		resp, err := resilience.DoVal(ctx, d.retry, "digikey", func(ctx context.Context) (*digikey.SearchResponse, error) {
			return d.client.SearchKeyword(ctx, variant)
		})
		if err != nil {
			return failure(d.Name(), fmt.Sprintf("DigiKey API: Error - %v", err))
		}
		if resp.ProductsCount > 0 && len(resp.Products) > 0 {
			identity, quote := d.normalize(resp.Products[0])
			return found(d.Name(), identity, quote,
				fmt.Sprintf("DigiKey API: Searched for '%s' (matched '%s')", partNumber, variant))
		}
	}

	return notFound(d.Name(), fmt.Sprintf("DigiKey API: No results for '%s'", partNumber))
}

// normalize probes a raw product payload into an identity and a quote.
func (d *DigiKey) normalize(p map[string]any) (model.Identity, model.SupplierQuote) {
	identity := model.Identity{
		Manufacturer:    probeString(p, "manufacturer", "Manufacturer", "ManufacturerName"),
		Description:     probeString(p, "description", "Description", "Description.ProductDescription", "ProductDescription"),
		Category:        probeString(p, "category", "Category", "CategoryName"),
		LifecycleStatus: probeString(p, "productStatus", "ProductStatus", "LifecycleStatus"),
	}

	quote := model.SupplierQuote{
		Name:            d.Name(),
		Stock:           probeInt(p, "quantityAvailable", "QuantityAvailable", "Availability"),
		LeadWeeks:       probeLeadWeeks(p, leadKey{"factoryLeadTime", true}, leadKey{"ManufacturerLeadWeeks", false}, leadKey{"LeadTime", false}),
		PriceBreaks:     priceBreaks(probeList(p, "standardPricing", "StandardPricing", "PriceBreaks"), []string{"breakQuantity", "BreakQuantity", "Quantity"}, []string{"unitPrice", "UnitPrice", "Price"}),
		CountryOfOrigin: probeString(p, "countryOfOrigin", "CountryOfOrigin", "Classifications.CountryOfOrigin"),
		HTSCode:         probeString(p, "htsCode", "HtsCode", "Classifications.HtsusCode"),
		TariffActive:    probeBool(p, "tariffActive", "TariffActive", "Tariff", "Classifications.TariffStatus"),
		ProductURL:      probeString(p, "productUrl", "ProductUrl", "ProductDetailUrl"),
	}

	quote.MOQ = probeInt(p, "minimumOrderQuantity", "MinimumOrderQuantity")
	if quote.MOQ == 0 && len(quote.PriceBreaks) > 0 {
		quote.MOQ = quote.PriceBreaks[0].Quantity
	}

	return identity, quote
}
