// Package risk derives sourcing-risk indicators from an aggregated part
// record and its observation history. The engine is a pure function of its
// inputs: it performs no I/O, so adapters and risk logic test independently.
package risk

import (
	"math"
	"sort"
	"strings"

	"github.com/partsignal/sourcing-cli/internal/model"
)

// Config holds the thresholds the derivations use.
type Config struct {
	// RiskyRegions lists country codes whose suppliers count as high risk.
	RiskyRegions []string
	// LandedSurcharge is the flat per-supplier shipping/handling constant
	// added to the landed cost sum.
	LandedSurcharge float64
	// BottleneckStock flags a supplier whose stock is below this count.
	BottleneckStock int
	// BottleneckLeadWeeks flags a supplier whose lead time exceeds this.
	BottleneckLeadWeeks int
	// DeclineThreshold is the stock-decline rate (units per sample) above
	// which a part is considered to be approaching end of life.
	DeclineThreshold float64
	// VolatilityThreshold is the relative price spread above which cost
	// volatility is High.
	VolatilityThreshold float64
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		RiskyRegions:        []string{"CN", "RU"},
		LandedSurcharge:     0.10,
		BottleneckStock:     10,
		BottleneckLeadWeeks: 20,
		DeclineThreshold:    10.0,
		VolatilityThreshold: 0.5,
	}
}

// Engine computes derived risk fields.
type Engine struct {
	cfg   Config
	risky map[string]bool
}

// NewEngine creates an engine with the given thresholds.
func NewEngine(cfg Config) *Engine {
	risky := make(map[string]bool, len(cfg.RiskyRegions))
	for _, r := range cfg.RiskyRegions {
		risky[strings.ToUpper(r)] = true
	}
	return &Engine{cfg: cfg, risky: risky}
}

// QualityScore computes a supplier's quality score in [0, 5]: one point for
// answering at all, two for having stock, half a point per price-break tier,
// a lead-time term and an MOQ term, summed and scaled down.
func QualityScore(q model.SupplierQuote) float64 {
	score := 1.0
	if q.InStock() {
		score += 2
	}
	score += 0.5 * float64(len(q.PriceBreaks))
	if lead := 10 - float64(q.LeadWeeks)/4; lead > 0 {
		score += lead
	}
	if moq := 5 - float64(q.MOQ)/100; moq > 0 {
		score += moq
	}
	score /= 4
	return math.Min(score, 5)
}

// Derive fills every derived field on rec from its supplier quotes and the
// part's history samples (ordered ascending by time). Quote quality scores
// are computed here as well.
func (e *Engine) Derive(rec *model.PartRecord, samples []model.HistorySample) {
	for i := range rec.Suppliers {
		rec.Suppliers[i].Score = QualityScore(rec.Suppliers[i])
	}
	quotes := rec.Suppliers
	n := len(quotes)

	rec.Availability = availability(quotes)
	rec.SingleSourced = singleSourced(n)

	rec.HighRiskSuppliers = []string{}
	for _, q := range quotes {
		if e.risky[strings.ToUpper(q.CountryOfOrigin)] {
			rec.HighRiskSuppliers = append(rec.HighRiskSuppliers, q.Name)
		}
	}
	if len(rec.HighRiskSuppliers) > 0 {
		rec.DisruptionExposure = model.ExposureHigh
		rec.SustainabilityConcerns = "Potential"
	} else {
		rec.DisruptionExposure = model.ExposureLow
		rec.SustainabilityConcerns = "None identified"
	}

	rec.Bottlenecks = e.bottlenecks(quotes)
	rec.ObsolescenceRisk = obsolescence(rec.LifecycleStatus)
	rec.CostAlternatives = costAlternatives(quotes)
	rec.TotalLandedCost = e.landedCost(quotes)

	if n > 1 {
		rec.SubstitutionFlexibility = model.FlagYes
	} else {
		rec.SubstitutionFlexibility = model.FlagNo
	}

	rec.TariffCost = model.FlagNo
	for _, q := range quotes {
		if q.TariffActive {
			rec.TariffCost = model.FlagYes
			break
		}
	}

	rec.InventoryAlignment = alignment(samples)
	rate := declineRate(samples)
	rec.EOLApproaching = e.eolApproaching(samples, rate, rec.ObsolescenceRisk)
	rec.DemandStatus, rec.DemandSurge = demand(totalStock(quotes), n, samples)
	rec.RiskScore = e.score(quotes, samples, rec.SingleSourced, rate)
	rec.CostVolatility = e.volatility(quotes, samples)
}

func availability(quotes []model.SupplierQuote) model.Flag {
	if len(quotes) == 0 {
		return model.FlagNo
	}
	for _, q := range quotes {
		if !q.InStock() {
			return model.FlagNo
		}
	}
	return model.FlagYes
}

func singleSourced(n int) model.Flag {
	switch {
	case n == 1:
		return model.FlagYes
	case n > 1:
		return model.FlagNo
	default:
		return model.FlagUnknown
	}
}

func obsolescence(lifecycle string) model.Flag {
	switch lifecycle {
	case "EndOfLife", "Discontinued":
		return model.FlagYes
	default:
		return model.FlagNo
	}
}

// bottlenecks flags each supplier that is low on stock or slow to deliver,
// then grades the flagged fraction.
func (e *Engine) bottlenecks(quotes []model.SupplierQuote) model.BottleneckLevel {
	if len(quotes) == 0 {
		return model.BottleneckNone
	}
	flagged := 0
	for _, q := range quotes {
		if q.Stock < e.cfg.BottleneckStock || q.LeadWeeks > e.cfg.BottleneckLeadWeeks {
			flagged++
		}
	}
	score := float64(flagged) / float64(len(quotes))
	switch {
	case score > 0.5:
		return model.BottleneckHigh
	case score > 0:
		return model.BottleneckLow
	default:
		return model.BottleneckNone
	}
}

func costAlternatives(quotes []model.SupplierQuote) []model.CostAlternative {
	alts := []model.CostAlternative{}
	for _, q := range quotes {
		if price, ok := q.MinPrice(); ok {
			alts = append(alts, model.CostAlternative{Supplier: q.Name, MinPrice: price})
		}
	}
	sort.Slice(alts, func(i, j int) bool { return alts[i].MinPrice < alts[j].MinPrice })
	return alts
}

// landedCost sums supplier minimum prices plus the flat per-supplier
// surcharge. Nil means no supplier reported a price.
func (e *Engine) landedCost(quotes []model.SupplierQuote) *float64 {
	sum := 0.0
	priced := false
	for _, q := range quotes {
		if price, ok := q.MinPrice(); ok {
			sum += price
			priced = true
		}
	}
	if !priced {
		return nil
	}
	total := sum + e.cfg.LandedSurcharge*float64(len(quotes))
	return &total
}

// alignment compares the latest observed stock to the historical mean.
// Fewer than two samples cannot establish a baseline.
func alignment(samples []model.HistorySample) model.Alignment {
	if len(samples) < 2 {
		return model.AlignmentUnknown
	}
	sum := 0
	for _, s := range samples {
		sum += s.Stock
	}
	mean := float64(sum) / float64(len(samples))
	latest := float64(samples[len(samples)-1].Stock)
	switch {
	case latest < 0.5*mean:
		return model.AlignmentLow
	case latest > 1.5*mean:
		return model.AlignmentHigh
	default:
		return model.AlignmentAligned
	}
}

// declineRate is the linear stock-decline rate across history in units per
// sample, floored at zero when stock is increasing. Zero with fewer than two
// samples.
func declineRate(samples []model.HistorySample) float64 {
	if len(samples) < 2 {
		return 0
	}
	first := samples[0].Stock
	last := samples[len(samples)-1].Stock
	rate := float64(first-last) / float64(len(samples))
	if rate < 0 {
		return 0
	}
	return rate
}

func (e *Engine) eolApproaching(samples []model.HistorySample, rate float64, obsolescence model.Flag) model.Flag {
	if len(samples) < 2 {
		return model.FlagUnknown
	}
	if rate > e.cfg.DeclineThreshold && obsolescence == model.FlagNo {
		return model.FlagYes
	}
	return model.FlagNo
}

// demand compares current total stock to the stock of the immediately
// preceding observation. With no current quotes the latest sample stands in
// for the current observation, so the comparison needs two samples.
func demand(currentStock, supplierCount int, samples []model.HistorySample) (model.DemandStatus, model.Flag) {
	var cur, prev int
	switch {
	case supplierCount > 0 && len(samples) >= 1:
		cur = currentStock
		prev = samples[len(samples)-1].Stock
	case supplierCount == 0 && len(samples) >= 2:
		cur = samples[len(samples)-1].Stock
		prev = samples[len(samples)-2].Stock
	default:
		return model.DemandUnknown, model.FlagUnknown
	}

	switch {
	case float64(cur) < 0.5*float64(prev):
		return model.DemandShortage, model.FlagYes
	case cur > prev:
		return model.DemandRestocking, model.FlagNo
	default:
		return model.DemandStable, model.FlagNo
	}
}

// score combines the quality-score deficit, a single-sourcing penalty, and a
// stock-decline term into the composite risk score, clamped to [0, 10].
func (e *Engine) score(quotes []model.SupplierQuote, samples []model.HistorySample, single model.Flag, rate float64) float64 {
	avgQuality := 5.0
	if len(quotes) > 0 {
		sum := 0.0
		for _, q := range quotes {
			sum += q.Score
		}
		avgQuality = sum / float64(len(quotes))
	}

	score := 5 - avgQuality
	if single == model.FlagYes {
		score += 2
	}
	score += math.Min(2, rate*0.1)

	return math.Min(10, math.Max(0, score))
}

// volatility grades the relative spread of all known prices, historical and
// current. Fewer than two price points cannot establish a spread.
func (e *Engine) volatility(quotes []model.SupplierQuote, samples []model.HistorySample) model.Volatility {
	var prices []float64
	for _, s := range samples {
		if s.Price > 0 {
			prices = append(prices, s.Price)
		}
	}
	for _, q := range quotes {
		if price, ok := q.MinPrice(); ok && price > 0 {
			prices = append(prices, price)
		}
	}
	if len(prices) < 2 {
		return model.VolatilityUnknown
	}

	minP, maxP, sum := prices[0], prices[0], 0.0
	for _, p := range prices {
		minP = math.Min(minP, p)
		maxP = math.Max(maxP, p)
		sum += p
	}
	mean := sum / float64(len(prices))
	if mean == 0 {
		return model.VolatilityUnknown
	}
	if (maxP-minP)/mean > e.cfg.VolatilityThreshold {
		return model.VolatilityHigh
	}
	return model.VolatilityLow
}

func totalStock(quotes []model.SupplierQuote) int {
	sum := 0
	for _, q := range quotes {
		sum += q.Stock
	}
	return sum
}
