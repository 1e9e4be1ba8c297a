package models

import (
	"time"
)

// MarketSize buckets the advertisement sample size for display purposes.
// It never influences the premium computation itself.
type MarketSize string

const (
	MarketMinimal     MarketSize = "minimal"     // fewer than 10 advertisements
	MarketModerate    MarketSize = "moderate"    // 10-99 advertisements
	MarketSubstantial MarketSize = "substantial" // 100 or more
)

// MarketPattern labels the direction of advertisement flow in a market.
type MarketPattern string

const (
	PatternBalanced     MarketPattern = "balanced"
	PatternBuyPressure  MarketPattern = "buy_pressure"
	PatternSellPressure MarketPattern = "sell_pressure"
)

// ImpactLevel classifies the magnitude of a volatility change around an
// event.
type ImpactLevel string

const (
	ImpactHigh     ImpactLevel = "high"
	ImpactModerate ImpactLevel = "moderate"
	ImpactLow      ImpactLevel = "low"
)

// CorrelationStatus records whether an event could be measured against the
// available price series.
type CorrelationStatus string

const (
	CorrelationMeasured  CorrelationStatus = "measured"
	CorrelationUncovered CorrelationStatus = "uncovered"
)

// Indicator is the combined qualitative crisis label for a country.
type Indicator string

const (
	IndicatorHighCrisis    Indicator = "high_crisis"
	IndicatorElevated      Indicator = "elevated"
	IndicatorWatch         Indicator = "watch"
	IndicatorStable        Indicator = "stable"
	IndicatorIndeterminate Indicator = "indeterminate"
)

// PremiumRecord is the derived premium state for one country. Recomputed
// each run, never persisted as ground truth.
type PremiumRecord struct {
	CountryCode   string     `json:"country_code"`
	Currency      string     `json:"currency"`
	PremiumPct    float64    `json:"premium_pct"`
	TypicalPrice  float64    `json:"typical_price"`
	OfficialRate  float64    `json:"official_rate"`
	SampleSize    int        `json:"sample_size"`
	MarketSize    MarketSize `json:"market_size"`
	LowConfidence bool       `json:"low_confidence"`
}

// MarketStructureRecord carries the raw buy/sell counts alongside the
// derived ratio and pattern so consumers can recompute alternate thresholds
// without re-touching raw data.
type MarketStructureRecord struct {
	CountryCode string        `json:"country_code"`
	BuyCount    int           `json:"buy_count"`
	SellCount   int           `json:"sell_count"`
	SellRatio   float64       `json:"sell_ratio"`
	Pattern     MarketPattern `json:"pattern"`
}

// CorrelationRecord relates one crisis event to the volatility of a price
// series around its date. Uncovered events keep a record with zeroed
// statistics so callers can audit which events had no evidence.
type CorrelationRecord struct {
	CountryCode           string            `json:"country_code"`
	EventDate             time.Time         `json:"event_date"`
	EventTitle            string            `json:"event_title"`
	EventCategory         string            `json:"event_category"`
	Asset                 string            `json:"asset"`
	Status                CorrelationStatus `json:"status"`
	BaselineVolatility    float64           `json:"baseline_volatility"`
	ObservationVolatility float64           `json:"observation_volatility"`
	ImpactPct             float64           `json:"impact_pct"`
	Impact                ImpactLevel       `json:"impact,omitempty"`
}

// OmissionReason names why a country or event was excluded from a run.
type OmissionReason string

const (
	OmitMissingReferenceRate     OmissionReason = "missing_reference_rate"
	OmitInsufficientSampleData   OmissionReason = "insufficient_sample_data"
	OmitInsufficientBaselineData OmissionReason = "insufficient_baseline_data"
	OmitRegistryLookupFailure    OmissionReason = "registry_lookup_failure"
)

// Omission is one audit entry. Exclusions are always recorded here rather
// than silently zeroed, so a consumer can tell "zero premium" from
// "no data".
type Omission struct {
	CountryCode string         `json:"country_code"`
	EventDate   *time.Time     `json:"event_date,omitempty"`
	Reason      OmissionReason `json:"reason"`
	Detail      string         `json:"detail"`
}

// CountryReport merges the three analytical outputs for one country.
// A nil section means the corresponding input was absent for this country,
// which is distinct from a zero-valued record.
type CountryReport struct {
	CountryCode  string                 `json:"country_code"`
	Premium      *PremiumRecord         `json:"premium,omitempty"`
	Structure    *MarketStructureRecord `json:"structure,omitempty"`
	Correlations []CorrelationRecord    `json:"correlations,omitempty"`
	Indicator    Indicator              `json:"indicator"`
}

// RunReport is the full output of one pipeline run.
type RunReport struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Countries   []CountryReport `json:"countries"`
	Omissions   []Omission      `json:"omissions"`
}
