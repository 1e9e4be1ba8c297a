package analysis

import (
	"fmt"

	appconfig "crisisflow/config"
	"crisisflow/models"
	"crisisflow/registry"
)

// PremiumCalculator converts a country's advertisements plus its official
// exchange rate into a premium record. It is a pure function of its inputs;
// recomputing on identical input yields bit-identical output.
type PremiumCalculator struct {
	cfg appconfig.AnalysisConfig
}

func NewPremiumCalculator(cfg appconfig.AnalysisConfig) *PremiumCalculator {
	return &PremiumCalculator{cfg: cfg}
}

// Calculate derives the premium percentage of the typical P2P price over
// the official rate. A zero or missing official rate fails with
// ErrMissingReferenceRate; an empty advertisement set fails with
// ErrInsufficientSampleData. A small but non-empty set still produces a
// record, flagged low confidence.
func (c *PremiumCalculator) Calculate(country registry.CountryProfile, ads []models.Advertisement, rate models.ExchangeRate) (models.PremiumRecord, error) {
	if len(ads) == 0 {
		return models.PremiumRecord{}, fmt.Errorf("%w: no advertisements for %s", ErrInsufficientSampleData, country.Code)
	}
	if rate.Rate <= 0 {
		return models.PremiumRecord{}, fmt.Errorf("%w: no official rate for %s (%s)", ErrMissingReferenceRate, country.Code, country.Currency)
	}

	typical := typicalPrice(ads)
	premiumPct := (typical - rate.Rate) / rate.Rate * 100

	return models.PremiumRecord{
		CountryCode:   country.Code,
		Currency:      country.Currency,
		PremiumPct:    premiumPct,
		TypicalPrice:  typical,
		OfficialRate:  rate.Rate,
		SampleSize:    len(ads),
		MarketSize:    classifyMarketSize(len(ads)),
		LowConfidence: len(ads) < c.cfg.MinSampleSize,
	}, nil
}

// typicalPrice is the volume-weighted mean unit price, falling back to the
// arithmetic mean when no advertisement carries a usable quantity.
func typicalPrice(ads []models.Advertisement) float64 {
	var weightedSum, totalQty float64
	for _, ad := range ads {
		if ad.Quantity > 0 {
			weightedSum += ad.Price * ad.Quantity
			totalQty += ad.Quantity
		}
	}
	if totalQty > 0 {
		return weightedSum / totalQty
	}

	var sum float64
	for _, ad := range ads {
		sum += ad.Price
	}
	return sum / float64(len(ads))
}

// classifyMarketSize buckets the sample size for downstream display only.
func classifyMarketSize(sampleSize int) models.MarketSize {
	switch {
	case sampleSize >= 100:
		return models.MarketSubstantial
	case sampleSize >= 10:
		return models.MarketModerate
	default:
		return models.MarketMinimal
	}
}
