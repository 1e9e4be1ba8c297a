package analysis

import (
	"sort"

	appconfig "crisisflow/config"
	"crisisflow/models"
)

// Aggregator merges the three analytical outputs into one report per
// country and derives the combined crisis indicator.
type Aggregator struct {
	cfg   appconfig.AnalysisConfig
	rules []indicatorRule
}

// indicatorRule is one row of the crisis-indicator decision table. Rules
// are evaluated in order; the first match wins. The final rule matches
// unconditionally so the table is total.
type indicatorRule struct {
	name    string
	matches func(premiumPct float64, pattern models.MarketPattern) bool
	label   models.Indicator
}

func NewAggregator(cfg appconfig.AnalysisConfig) *Aggregator {
	high := cfg.HighPremiumPct
	stable := cfg.StablePremiumPct

	return &Aggregator{
		cfg: cfg,
		rules: []indicatorRule{
			{
				name: "sell_pressure_extreme_premium",
				matches: func(p float64, m models.MarketPattern) bool {
					return m == models.PatternSellPressure && p > high
				},
				label: models.IndicatorHighCrisis,
			},
			{
				name: "sell_pressure",
				matches: func(p float64, m models.MarketPattern) bool {
					return m == models.PatternSellPressure
				},
				label: models.IndicatorElevated,
			},
			{
				name: "extreme_premium",
				matches: func(p float64, m models.MarketPattern) bool {
					return p > high
				},
				label: models.IndicatorElevated,
			},
			{
				name: "low_premium",
				matches: func(p float64, m models.MarketPattern) bool {
					return p < stable
				},
				label: models.IndicatorStable,
			},
			{
				name: "moderate_premium",
				matches: func(p float64, m models.MarketPattern) bool {
					return p >= stable && p <= high
				},
				label: models.IndicatorWatch,
			},
			// Mandatory fallback; also catches non-finite premiums.
			{
				name:    "fallback",
				matches: func(float64, models.MarketPattern) bool { return true },
				label:   models.IndicatorIndeterminate,
			},
		},
	}
}

// Indicator derives the combined crisis label. A country missing either the
// premium or the structure section is indeterminate, never defaulted to
// stable.
func (a *Aggregator) Indicator(premium *models.PremiumRecord, structure *models.MarketStructureRecord) models.Indicator {
	if premium == nil || structure == nil {
		return models.IndicatorIndeterminate
	}
	for _, rule := range a.rules {
		if rule.matches(premium.PremiumPct, structure.Pattern) {
			return rule.label
		}
	}
	// Unreachable: the final rule matches unconditionally.
	return models.IndicatorIndeterminate
}

// Merge joins the component outputs keyed by country into one report per
// country, sorted by country code. Countries present in only a subset of
// the inputs produce partial reports with the missing sections nil.
// Running Merge twice on identical inputs yields identical reports.
func (a *Aggregator) Merge(
	premiums map[string]models.PremiumRecord,
	structures map[string]models.MarketStructureRecord,
	correlations map[string][]models.CorrelationRecord,
) []models.CountryReport {
	codes := make(map[string]struct{})
	for code := range premiums {
		codes[code] = struct{}{}
	}
	for code := range structures {
		codes[code] = struct{}{}
	}
	for code := range correlations {
		codes[code] = struct{}{}
	}

	sorted := make([]string, 0, len(codes))
	for code := range codes {
		sorted = append(sorted, code)
	}
	sort.Strings(sorted)

	reports := make([]models.CountryReport, 0, len(sorted))
	for _, code := range sorted {
		report := models.CountryReport{CountryCode: code}
		if premium, ok := premiums[code]; ok {
			p := premium
			report.Premium = &p
		}
		if structure, ok := structures[code]; ok {
			s := structure
			report.Structure = &s
		}
		report.Correlations = correlations[code]
		report.Indicator = a.Indicator(report.Premium, report.Structure)
		reports = append(reports, report)
	}
	return reports
}
