package analysis

import (
	"fmt"

	appconfig "crisisflow/config"
	"crisisflow/models"
)

// StructureClassifier turns advertisement counts into a market-structure
// record. The raw counts travel with the record so consumers can recompute
// alternate thresholds without re-touching raw data.
type StructureClassifier struct {
	cfg appconfig.AnalysisConfig
}

func NewStructureClassifier(cfg appconfig.AnalysisConfig) *StructureClassifier {
	return &StructureClassifier{cfg: cfg}
}

// Classify computes the sell ratio and labels the market pattern. Zero
// advertisements fail with ErrInsufficientSampleData instead of emitting a
// record with an undefined ratio.
func (c *StructureClassifier) Classify(countryCode string, ads []models.Advertisement) (models.MarketStructureRecord, error) {
	if len(ads) == 0 {
		return models.MarketStructureRecord{}, fmt.Errorf("%w: no advertisements for %s", ErrInsufficientSampleData, countryCode)
	}

	var buys, sells int
	for _, ad := range ads {
		if ad.Side == models.SideSell {
			sells++
		} else {
			buys++
		}
	}

	ratio := float64(sells) / float64(len(ads))

	return models.MarketStructureRecord{
		CountryCode: countryCode,
		BuyCount:    buys,
		SellCount:   sells,
		SellRatio:   ratio,
		Pattern:     c.classifyPattern(ratio),
	}, nil
}

// classifyPattern maps a sell ratio in [0,1] to exactly one pattern label.
// Boundary values resolve with the >= / <= rules: a ratio of exactly the
// sell threshold is sell-pressure, exactly the buy threshold is
// buy-pressure.
func (c *StructureClassifier) classifyPattern(ratio float64) models.MarketPattern {
	switch {
	case ratio >= c.cfg.SellPressureThreshold:
		return models.PatternSellPressure
	case ratio <= c.cfg.BuyPressureThreshold:
		return models.PatternBuyPressure
	default:
		return models.PatternBalanced
	}
}
