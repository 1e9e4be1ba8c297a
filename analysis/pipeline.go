package analysis

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	appconfig "crisisflow/config"
	"crisisflow/logger"
	"crisisflow/models"
	"crisisflow/registry"
)

// Pipeline runs the full analysis pass: premium and market structure per
// country, event correlation against the price series, and the merged
// insight reports. Each country is a pure computation over immutable
// inputs, so countries can be fanned out over a bounded worker pool without
// affecting the result.
type Pipeline struct {
	cfg        appconfig.AnalysisConfig
	reg        *registry.Registry
	premium    *PremiumCalculator
	structure  *StructureClassifier
	correlator *Correlator
	aggregator *Aggregator
	log        *logger.Log
}

func NewPipeline(cfg appconfig.AnalysisConfig, reg *registry.Registry) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		reg:        reg,
		premium:    NewPremiumCalculator(cfg),
		structure:  NewStructureClassifier(cfg),
		correlator: NewCorrelator(cfg),
		aggregator: NewAggregator(cfg),
		log:        logger.GetLogger(),
	}
}

// countryResult carries the per-country outputs back from the workers.
type countryResult struct {
	premium   *models.PremiumRecord
	structure *models.MarketStructureRecord
	omissions []models.Omission
}

// Run executes one batch pass. Per-country and per-event failures are
// isolated and recorded as omissions; one country's missing rate never
// aborts the others. Output ordering is deterministic regardless of worker
// count.
func (p *Pipeline) Run(ads models.AdBatch, rates models.RateSnapshot, series models.PriceSeries) *models.RunReport {
	start := time.Now()
	log := p.log.WithComponent("pipeline").WithFields(logger.Fields{"operation": "run"})

	codes := make([]string, 0, len(ads))
	for code := range ads {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	log.WithFields(logger.Fields{
		"countries": len(codes),
		"asset":     series.Asset,
		"events":    len(p.reg.AllEvents()),
	}).Info("starting analysis run")

	results := make([]countryResult, len(codes))

	workers := p.cfg.MaxWorkers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.analyzeCountry(codes[i], ads[codes[i]], rates)
			}
		}()
	}
	for i := range codes {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	premiums := make(map[string]models.PremiumRecord)
	structures := make(map[string]models.MarketStructureRecord)
	var omissions []models.Omission

	for _, result := range results {
		if result.premium != nil {
			premiums[result.premium.CountryCode] = *result.premium
		}
		if result.structure != nil {
			structures[result.structure.CountryCode] = *result.structure
		}
		omissions = append(omissions, result.omissions...)
	}

	correlationRecords, correlationOmissions := p.correlator.Correlate(series, p.reg.AllEvents())
	omissions = append(omissions, correlationOmissions...)

	correlations := make(map[string][]models.CorrelationRecord)
	for _, record := range correlationRecords {
		correlations[record.CountryCode] = append(correlations[record.CountryCode], record)
	}

	reports := p.aggregator.Merge(premiums, structures, correlations)
	sortOmissions(omissions)

	for range reports {
		logger.IncrementCountryProcessed()
	}
	for range omissions {
		logger.IncrementOmission()
	}
	logger.RecordComponentOutput("premium", len(premiums))
	logger.RecordComponentOutput("structure", len(structures))
	logger.RecordComponentOutput("correlation", len(correlationRecords))

	report := &models.RunReport{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		Countries:   reports,
		Omissions:   omissions,
	}

	logger.LogPerformanceEntry(log, "pipeline", "run", time.Since(start), logger.Fields{
		"countries": len(reports),
		"omissions": len(omissions),
	})
	logger.LogDataFlowEntry(log, "analysis", "report", len(reports), "country_reports")

	return report
}

// analyzeCountry computes the premium and structure records for one
// country, recording every exclusion instead of zeroing it.
func (p *Pipeline) analyzeCountry(code string, countryAds []models.Advertisement, rates models.RateSnapshot) countryResult {
	log := p.log.WithComponent("pipeline").WithFields(logger.Fields{"country": code})

	profile, err := p.reg.Country(code)
	if err != nil {
		log.WithError(err).Warn("country not present in registry, skipping")
		return countryResult{omissions: []models.Omission{{
			CountryCode: code,
			Reason:      models.OmitRegistryLookupFailure,
			Detail:      err.Error(),
		}}}
	}

	if len(countryAds) == 0 {
		log.Warn("no advertisements for country, skipping")
		return countryResult{omissions: []models.Omission{{
			CountryCode: code,
			Reason:      models.OmitInsufficientSampleData,
			Detail:      "zero advertisements in batch",
		}}}
	}

	var result countryResult

	structure, err := p.structure.Classify(code, countryAds)
	if err != nil {
		result.omissions = append(result.omissions, models.Omission{
			CountryCode: code,
			Reason:      models.OmitInsufficientSampleData,
			Detail:      err.Error(),
		})
	} else {
		result.structure = &structure
	}

	rate, ok := rates[code]
	if !ok {
		log.WithFields(logger.Fields{"currency": profile.Currency}).Warn("no official exchange rate for country")
		result.omissions = append(result.omissions, models.Omission{
			CountryCode: code,
			Reason:      models.OmitMissingReferenceRate,
			Detail:      "country absent from exchange-rate snapshot",
		})
		return result
	}

	premium, err := p.premium.Calculate(profile, countryAds, rate)
	if err != nil {
		reason := models.OmitInsufficientSampleData
		if errors.Is(err, ErrMissingReferenceRate) {
			reason = models.OmitMissingReferenceRate
		}
		log.WithError(err).Warn("premium calculation excluded country")
		result.omissions = append(result.omissions, models.Omission{
			CountryCode: code,
			Reason:      reason,
			Detail:      err.Error(),
		})
		return result
	}

	result.premium = &premium
	log.WithFields(logger.Fields{
		"premium_pct": premium.PremiumPct,
		"sample_size": premium.SampleSize,
		"pattern":     string(structure.Pattern),
	}).Info("country analyzed")
	return result
}

func sortOmissions(omissions []models.Omission) {
	sort.SliceStable(omissions, func(i, j int) bool {
		a, b := omissions[i], omissions[j]
		if a.CountryCode != b.CountryCode {
			return a.CountryCode < b.CountryCode
		}
		switch {
		case a.EventDate == nil && b.EventDate != nil:
			return true
		case a.EventDate != nil && b.EventDate == nil:
			return false
		case a.EventDate != nil && b.EventDate != nil && !a.EventDate.Equal(*b.EventDate):
			return a.EventDate.Before(*b.EventDate)
		}
		return a.Reason < b.Reason
	})
}
