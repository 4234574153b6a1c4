// Package enrich supplies advisory context for parts: current-events and
// industry-trend headlines. Enrichment is never correctness-critical, so
// every failure path degrades to fixed fallback text instead of an error.
package enrich

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/partsignal/sourcing-cli/pkg/newsfeed"
)

const (
	// FallbackEvents is returned when the news lookup fails.
	FallbackEvents = "Failed to fetch current events."
	// FallbackTrends is returned when the trends lookup fails.
	FallbackTrends = "Failed to fetch industry trends."
	// NoEvents is returned when nothing relevant was found.
	NoEvents = "No relevant current events found."
)

// Enricher fetches headline context from the news client.
type Enricher struct {
	client       newsfeed.Client
	maxHeadlines int
}

// New creates an Enricher. A nil client disables live lookups; static
// commentary still applies.
func New(client newsfeed.Client, maxHeadlines int) *Enricher {
	if maxHeadlines <= 0 {
		maxHeadlines = 3
	}
	return &Enricher{client: client, maxHeadlines: maxHeadlines}
}

// CurrentEvents returns a short prose summary of supply-chain events
// relevant to the part's category and manufacturer.
func (e *Enricher) CurrentEvents(ctx context.Context, category, manufacturer string) string {
	events := staticCommentary(category, manufacturer)

	if e.client != nil {
		query := strings.TrimSpace(category + " " + manufacturer + " supply chain disruption")
		headlines, err := e.search(ctx, query)
		if err != nil {
			zap.L().Warn("enrich: current events lookup failed", zap.Error(err))
			if len(events) == 0 {
				return FallbackEvents
			}
		}
		events = append(events, headlines...)
	}

	if len(events) == 0 {
		return NoEvents
	}
	return strings.Join(events, " ")
}

// IndustryTrends returns headline strings for the part's category.
func (e *Enricher) IndustryTrends(ctx context.Context, category string) []string {
	if e.client == nil {
		return nil
	}
	headlines, err := e.search(ctx, strings.TrimSpace(category+" electronic components market trends"))
	if err != nil {
		zap.L().Warn("enrich: industry trends lookup failed", zap.Error(err))
		return []string{FallbackTrends}
	}
	return headlines
}

func (e *Enricher) search(ctx context.Context, query string) ([]string, error) {
	resp, err := e.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, e.maxHeadlines)
	for _, h := range resp.Data {
		if h.Title == "" {
			continue
		}
		titles = append(titles, h.Title)
		if len(titles) >= e.maxHeadlines {
			break
		}
	}
	return titles, nil
}

// staticCommentary covers known tariff and shortage exposure for connector
// categories and manufacturers even when the news service is unavailable.
func staticCommentary(category, manufacturer string) []string {
	var events []string
	cat := strings.ToLower(category)
	mfr := strings.ToLower(manufacturer)

	if strings.Contains(cat, "headers") || strings.Contains(cat, "connectors") {
		events = append(events, "Proposed U.S. tariffs in 2025 (25% on Canada/Mexico, 10-60% on China) could raise costs for electronic components, especially connectors and headers.")
	}
	if strings.Contains(mfr, "molex") || strings.Contains(mfr, "amphenol") {
		events = append(events, fmt.Sprintf("%s may face supply chain pressures due to tariffs impacting connector production.", capitalize(manufacturer)))
	}
	return events
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
