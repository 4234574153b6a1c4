package enrich

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"github.com/partsignal/sourcing-cli/pkg/newsfeed"
)

type fakeNews struct {
	resp    *newsfeed.SearchResponse
	err     error
	queries []string
}

func (f *fakeNews) Search(_ context.Context, query string) (*newsfeed.SearchResponse, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func TestCurrentEvents_Headlines(t *testing.T) {
	t.Parallel()

	client := &fakeNews{resp: &newsfeed.SearchResponse{
		Code: 200,
		Data: []newsfeed.Headline{
			{Title: "Chip shortage eases in Q3"},
			{Title: ""},
			{Title: "New export controls announced"},
		},
	}}

	got := New(client, 3).CurrentEvents(context.Background(), "Capacitors", "Murata")

	assert.Contains(t, got, "Chip shortage eases in Q3")
	assert.Contains(t, got, "New export controls announced")
}

func TestCurrentEvents_StaticConnectorCommentary(t *testing.T) {
	t.Parallel()

	// No live client: the static tariff commentary still applies.
	got := New(nil, 3).CurrentEvents(context.Background(), "Connectors, Headers", "Molex")

	assert.Contains(t, got, "tariffs")
	assert.Contains(t, got, "Molex may face supply chain pressures")
}

func TestCurrentEvents_FallbackOnError(t *testing.T) {
	t.Parallel()

	client := &fakeNews{err: eris.New("upstream unavailable")}
	got := New(client, 3).CurrentEvents(context.Background(), "Capacitors", "Murata")

	assert.Equal(t, FallbackEvents, got)
}

func TestCurrentEvents_StaticSurvivesLookupFailure(t *testing.T) {
	t.Parallel()

	// Live lookup fails but the category still carries static commentary.
	client := &fakeNews{err: eris.New("upstream unavailable")}
	got := New(client, 3).CurrentEvents(context.Background(), "Connectors, Headers", "")

	assert.NotEqual(t, FallbackEvents, got)
	assert.Contains(t, got, "tariffs")
}

func TestCurrentEvents_NothingFound(t *testing.T) {
	t.Parallel()

	client := &fakeNews{resp: &newsfeed.SearchResponse{Code: 200}}
	got := New(client, 3).CurrentEvents(context.Background(), "Capacitors", "Murata")

	assert.Equal(t, NoEvents, got)
}

func TestCurrentEvents_MaxHeadlines(t *testing.T) {
	t.Parallel()

	client := &fakeNews{resp: &newsfeed.SearchResponse{
		Code: 200,
		Data: []newsfeed.Headline{
			{Title: "one"}, {Title: "two"}, {Title: "three"}, {Title: "four"},
		},
	}}

	got := New(client, 2).CurrentEvents(context.Background(), "Capacitors", "Murata")

	assert.Contains(t, got, "two")
	assert.NotContains(t, got, "three")
}

func TestIndustryTrends(t *testing.T) {
	t.Parallel()

	client := &fakeNews{resp: &newsfeed.SearchResponse{
		Code: 200,
		Data: []newsfeed.Headline{{Title: "Passive component demand rising"}},
	}}

	got := New(client, 3).IndustryTrends(context.Background(), "Capacitors")

	assert.Equal(t, []string{"Passive component demand rising"}, got)
	assert.Contains(t, client.queries[0], "Capacitors")
}

func TestIndustryTrends_FallbackOnError(t *testing.T) {
	t.Parallel()

	client := &fakeNews{err: eris.New("upstream unavailable")}
	got := New(client, 3).IndustryTrends(context.Background(), "Capacitors")

	assert.Equal(t, []string{FallbackTrends}, got)
}

func TestIndustryTrends_NilClient(t *testing.T) {
	t.Parallel()

	assert.Nil(t, New(nil, 3).IndustryTrends(context.Background(), "Capacitors"))
}
