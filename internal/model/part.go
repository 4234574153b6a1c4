// Package model defines the canonical part-risk record and the types that
// feed it: normalized supplier quotes, adapter results, and persisted
// history samples.
package model

import "time"

// Flag is a ternary yes/no answer where absence of data is its own state.
type Flag string

const (
	FlagYes     Flag = "Yes"
	FlagNo      Flag = "No"
	FlagUnknown Flag = "Unknown"
)

// BottleneckLevel grades how much of the supply base is constrained.
type BottleneckLevel string

const (
	BottleneckNone BottleneckLevel = "None identified"
	BottleneckLow  BottleneckLevel = "Low"
	BottleneckHigh BottleneckLevel = "High"
)

// Exposure grades geopolitical disruption exposure.
type Exposure string

const (
	ExposureLow  Exposure = "Low"
	ExposureHigh Exposure = "High"
)

// Alignment compares current stock against the historical baseline.
type Alignment string

const (
	AlignmentUnknown Alignment = "Unknown"
	AlignmentLow     Alignment = "Low"
	AlignmentAligned Alignment = "Aligned"
	AlignmentHigh    Alignment = "High"
)

// DemandStatus classifies the latest stock movement.
type DemandStatus string

const (
	DemandUnknown    DemandStatus = "Unknown"
	DemandShortage   DemandStatus = "Shortage"
	DemandRestocking DemandStatus = "Restocking"
	DemandStable     DemandStatus = "Stable"
)

// Volatility grades the spread of observed prices.
type Volatility string

const (
	VolatilityUnknown Volatility = "Unknown"
	VolatilityLow     Volatility = "Low"
	VolatilityHigh    Volatility = "High"
)

// Outcome is the result class of one adapter fetch.
type Outcome string

const (
	OutcomeFound    Outcome = "found"
	OutcomeNotFound Outcome = "not_found"
	OutcomeError    Outcome = "error"
)

// PriceBreak is one quantity tier of a supplier's pricing.
type PriceBreak struct {
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// SupplierQuote is one distributor's normalized answer for a part.
type SupplierQuote struct {
	Name            string       `json:"name"`
	Stock           int          `json:"stock"`
	LeadWeeks       int          `json:"lead_weeks"`
	PriceBreaks     []PriceBreak `json:"price_breaks"`
	MOQ             int          `json:"moq"`
	CountryOfOrigin string       `json:"country_of_origin,omitempty"`
	HTSCode         string       `json:"hts_code,omitempty"`
	TariffActive    bool         `json:"tariff_active"`
	Score           float64      `json:"score"`
	ProductURL      string       `json:"product_url,omitempty"`
}

// MinPrice returns the unit price of the lowest-quantity break. Breaks are
// kept sorted ascending by quantity, so the first break is the minimum tier.
func (q SupplierQuote) MinPrice() (float64, bool) {
	if len(q.PriceBreaks) == 0 {
		return 0, false
	}
	return q.PriceBreaks[0].UnitPrice, true
}

// InStock reports whether the supplier has any units on hand.
func (q SupplierQuote) InStock() bool {
	return q.Stock > 0
}

// CostAlternative pairs a supplier with its minimum tier price.
type CostAlternative struct {
	Supplier string  `json:"supplier"`
	MinPrice float64 `json:"min_price"`
}

// Identity carries the part-identity fields an adapter extracted. The merge
// keeps the first non-empty value per field in adapter priority order.
type Identity struct {
	Manufacturer    string `json:"manufacturer,omitempty"`
	Description     string `json:"description,omitempty"`
	Category        string `json:"category,omitempty"`
	LifecycleStatus string `json:"lifecycle_status,omitempty"`
}

// AdapterResult is the outcome of one distributor fetch. Every outcome
// carries a human-readable message for the record's audit trail.
type AdapterResult struct {
	Distributor string         `json:"distributor"`
	Outcome     Outcome        `json:"outcome"`
	Quote       *SupplierQuote `json:"quote,omitempty"`
	Identity    Identity       `json:"identity,omitempty"`
	Message     string         `json:"message"`
}

// PartRecord is the canonical aggregated view of one part: merged identity,
// one quote per distributor, and every derived risk field.
type PartRecord struct {
	PartNumber      string `json:"part_number"`
	Manufacturer    string `json:"manufacturer"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	LifecycleStatus string `json:"lifecycle_status"`

	Suppliers      []SupplierQuote   `json:"suppliers"`
	SourcesChecked []string          `json:"sources_checked"`
	LeadTime       string            `json:"lead_time"`
	LeadTimes      map[string]string `json:"lead_times"`

	Availability            Flag              `json:"availability"`
	SingleSourced           Flag              `json:"single_sourced"`
	HighRiskSuppliers       []string          `json:"high_risk_suppliers"`
	DisruptionExposure      Exposure          `json:"disruption_exposure"`
	SustainabilityConcerns  string            `json:"sustainability_concerns"`
	Bottlenecks             BottleneckLevel   `json:"bottlenecks"`
	ObsolescenceRisk        Flag              `json:"obsolescence_risk"`
	CostAlternatives        []CostAlternative `json:"cost_alternatives"`
	TotalLandedCost         *float64          `json:"total_landed_cost"`
	SubstitutionFlexibility Flag              `json:"substitution_flexibility"`
	TariffCost              Flag              `json:"tariff_cost"`
	InventoryAlignment      Alignment         `json:"inventory_alignment"`
	EOLApproaching          Flag              `json:"eol_approaching"`
	DemandStatus            DemandStatus      `json:"demand_status"`
	DemandSurge             Flag              `json:"demand_surge"`
	RiskScore               float64           `json:"risk_score"`
	CostVolatility          Volatility        `json:"cost_volatility"`
	QualityStandards        string            `json:"quality_standards"`

	CurrentEvents  string   `json:"current_events"`
	IndustryTrends []string `json:"industry_trends"`

	CheckedAt time.Time `json:"checked_at"`
}

// NewPartRecord returns a draft record with every field at its documented
// default, so a lookup that finds nothing still renders a complete record.
func NewPartRecord(partNumber string) *PartRecord {
	return &PartRecord{
		PartNumber:      partNumber,
		Manufacturer:    "Unknown",
		Description:     "Not available",
		Category:        "Unknown",
		LifecycleStatus: "Unknown",

		Suppliers:      []SupplierQuote{},
		SourcesChecked: []string{},
		LeadTime:       "Not specified",
		LeadTimes:      map[string]string{},

		Availability:            FlagUnknown,
		SingleSourced:           FlagUnknown,
		HighRiskSuppliers:       []string{},
		DisruptionExposure:      ExposureLow,
		SustainabilityConcerns:  "None identified",
		Bottlenecks:             BottleneckNone,
		ObsolescenceRisk:        FlagUnknown,
		CostAlternatives:        []CostAlternative{},
		SubstitutionFlexibility: FlagUnknown,
		TariffCost:              FlagUnknown,
		InventoryAlignment:      AlignmentUnknown,
		EOLApproaching:          FlagUnknown,
		DemandStatus:            DemandUnknown,
		DemandSurge:             FlagUnknown,
		CostVolatility:          VolatilityUnknown,
		QualityStandards:        "Assumed compliant",

		CurrentEvents:  "No relevant current events found.",
		IndustryTrends: []string{},
	}
}

// HistorySample is one persisted observation of a supplier's price and stock
// for a part, with the risk score computed at observation time.
type HistorySample struct {
	ID         string    `json:"id"`
	PartNumber string    `json:"part_number"`
	Supplier   string    `json:"supplier"`
	Price      float64   `json:"price"`
	Stock      int       `json:"stock"`
	RiskScore  float64   `json:"risk_score"`
	RecordedAt time.Time `json:"recorded_at"`
}
