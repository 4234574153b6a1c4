package adapter

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partsignal/sourcing-cli/internal/model"
	"github.com/partsignal/sourcing-cli/pkg/digikey"
)

// fakeDigiKey returns canned responses keyed by search keyword.
type fakeDigiKey struct {
	responses map[string]*digikey.SearchResponse
	err       error
	searched  []string
}

func (f *fakeDigiKey) SearchKeyword(_ context.Context, keyword string) (*digikey.SearchResponse, error) {
	f.searched = append(f.searched, keyword)
	if f.err != nil {
		return nil, f.err
	}
	if resp, ok := f.responses[keyword]; ok {
		return resp, nil
	}
	return &digikey.SearchResponse{}, nil
}

func digikeyProduct() map[string]any {
	return map[string]any{
		"Manufacturer":      map[string]any{"Name": "TE Connectivity"},
		"Description":       map[string]any{"ProductDescription": "CONN HEADER VERT 5POS"},
		"Category":          map[string]any{"Name": "Connectors, Headers"},
		"ProductStatus":     map[string]any{"Status": "Active"},
		"QuantityAvailable": float64(500),
		"ManufacturerLeadWeeks": float64(2),
		"StandardPricing": []any{
			map[string]any{"BreakQuantity": float64(1), "UnitPrice": float64(1.20)},
			map[string]any{"BreakQuantity": float64(100), "UnitPrice": float64(0.95)},
		},
		"Classifications": map[string]any{"HtsusCode": "8536.69.4040"},
	}
}

func TestDigiKey_Fetch_Found(t *testing.T) {
	t.Parallel()

	client := &fakeDigiKey{responses: map[string]*digikey.SearchResponse{
		"640456-5": {ProductsCount: 1, Products: []map[string]any{digikeyProduct()}},
	}}

	res := NewDigiKey(client).Fetch(context.Background(), "640456-5")

	assert.Equal(t, model.OutcomeFound, res.Outcome)
	assert.Equal(t, "DigiKey", res.Distributor)
	assert.Equal(t, "DigiKey API: Searched for '640456-5' (matched '640456-5')", res.Message)

	assert.Equal(t, "TE Connectivity", res.Identity.Manufacturer)
	assert.Equal(t, "CONN HEADER VERT 5POS", res.Identity.Description)
	assert.Equal(t, "Active", res.Identity.LifecycleStatus)

	require.NotNil(t, res.Quote)
	assert.Equal(t, 500, res.Quote.Stock)
	assert.Equal(t, 2, res.Quote.LeadWeeks)
	assert.Equal(t, "8536.69.4040", res.Quote.HTSCode)
	require.Len(t, res.Quote.PriceBreaks, 2)
	assert.Equal(t, model.PriceBreak{Quantity: 1, UnitPrice: 1.20}, res.Quote.PriceBreaks[0])
	// No explicit MOQ: the first break quantity stands in.
	assert.Equal(t, 1, res.Quote.MOQ)
}

func TestDigiKey_Fetch_AliasFallback(t *testing.T) {
	t.Parallel()

	// Primary number returns nothing; the known alias hits.
	client := &fakeDigiKey{responses: map[string]*digikey.SearchResponse{
		"A19471-ND": {ProductsCount: 1, Products: []map[string]any{digikeyProduct()}},
	}}

	res := NewDigiKey(client).Fetch(context.Background(), "640456-5")

	assert.Equal(t, model.OutcomeFound, res.Outcome)
	assert.Equal(t, "DigiKey API: Searched for '640456-5' (matched 'A19471-ND')", res.Message)
	assert.Equal(t, []string{"640456-5", "A19471-ND"}, client.searched)
}

func TestDigiKey_Fetch_NotFound(t *testing.T) {
	t.Parallel()

	client := &fakeDigiKey{}
	res := NewDigiKey(client).Fetch(context.Background(), "no-such-part")

	assert.Equal(t, model.OutcomeNotFound, res.Outcome)
	assert.Nil(t, res.Quote)
	assert.Equal(t, "DigiKey API: No results for 'no-such-part'", res.Message)
}

func TestDigiKey_Fetch_Error(t *testing.T) {
	t.Parallel()

	client := &fakeDigiKey{err: eris.New("connection refused by upstream")}
	res := NewDigiKey(client).Fetch(context.Background(), "640456-5")

	assert.Equal(t, model.OutcomeError, res.Outcome)
	assert.Nil(t, res.Quote)
	assert.Contains(t, res.Message, "DigiKey API: Error -")
}

func TestDigiKey_Fetch_AuthError(t *testing.T) {
	t.Parallel()

	client := &fakeDigiKey{err: digikey.ErrAuth}
	res := NewDigiKey(client).Fetch(context.Background(), "640456-5")

	// Auth failure is fatal for this adapter's call only; it surfaces as an
	// error result, never a panic or propagated error.
	assert.Equal(t, model.OutcomeError, res.Outcome)
	assert.Contains(t, res.Message, "token acquisition failed")
}
