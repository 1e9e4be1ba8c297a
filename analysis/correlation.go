package analysis

import (
	"fmt"
	"math"
	"time"

	appconfig "crisisflow/config"
	"crisisflow/models"
	"crisisflow/registry"
)

// Correlator joins crisis events against a chronologically ordered price
// series and measures the volatility change around each event date.
type Correlator struct {
	cfg appconfig.AnalysisConfig
}

func NewCorrelator(cfg appconfig.AnalysisConfig) *Correlator {
	return &Correlator{cfg: cfg}
}

// Correlate produces one record per event. Events with no series coverage
// at all are emitted with status uncovered; events whose windows overlap
// the series but cannot support a baseline statistic are additionally
// recorded as insufficient-baseline omissions. Nothing is silently dropped.
func (c *Correlator) Correlate(series models.PriceSeries, events []registry.CrisisEvent) ([]models.CorrelationRecord, []models.Omission) {
	var records []models.CorrelationRecord
	var omissions []models.Omission

	for _, event := range events {
		record, err := c.correlateEvent(series, event)
		if err != nil {
			eventDate := event.Date
			omissions = append(omissions, models.Omission{
				CountryCode: event.CountryCode,
				EventDate:   &eventDate,
				Reason:      models.OmitInsufficientBaselineData,
				Detail:      err.Error(),
			})
		}
		records = append(records, record)
	}

	return records, omissions
}

// correlateEvent measures a single event. The baseline window is
// [date-lookback, date) and the observation window is [date, date+lookahead]
// inclusive; the event day itself belongs to the observation side.
func (c *Correlator) correlateEvent(series models.PriceSeries, event registry.CrisisEvent) (models.CorrelationRecord, error) {
	record := models.CorrelationRecord{
		CountryCode:   event.CountryCode,
		EventDate:     event.Date,
		EventTitle:    event.Title,
		EventCategory: string(event.Category),
		Asset:         series.Asset,
		Status:        models.CorrelationUncovered,
	}

	baselineFrom := event.Date.AddDate(0, 0, -c.cfg.LookbackDays)
	observationEnd := event.Date.AddDate(0, 0, c.cfg.LookaheadDays)

	if !series.Covers(baselineFrom, observationEnd) {
		// No evidence at all inside the window; the uncovered record is the
		// audit trail for this event.
		return record, nil
	}

	baseline := series.Window(baselineFrom, event.Date)
	observation := series.Window(event.Date, observationEnd.AddDate(0, 0, 1))

	if len(baseline) < 2 {
		return record, fmt.Errorf("%w: %d baseline observations for %s on %s",
			ErrInsufficientBaselineData, len(baseline), event.CountryCode, event.Date.Format("2006-01-02"))
	}
	if len(observation) < 2 {
		return record, fmt.Errorf("%w: %d observation-window observations for %s on %s",
			ErrInsufficientBaselineData, len(observation), event.CountryCode, event.Date.Format("2006-01-02"))
	}

	baselineVol := stddev(baseline)
	if baselineVol == 0 {
		return record, fmt.Errorf("%w: zero-variance baseline for %s on %s",
			ErrInsufficientBaselineData, event.CountryCode, event.Date.Format("2006-01-02"))
	}
	observationVol := stddev(observation)

	impactPct := (observationVol - baselineVol) / baselineVol * 100

	record.Status = models.CorrelationMeasured
	record.BaselineVolatility = baselineVol
	record.ObservationVolatility = observationVol
	record.ImpactPct = impactPct
	record.Impact = c.classifyImpact(impactPct)
	return record, nil
}

// classifyImpact buckets the absolute volatility change. A collapse in
// volatility is as notable as a spike, so the sign is dropped.
func (c *Correlator) classifyImpact(impactPct float64) models.ImpactLevel {
	magnitude := math.Abs(impactPct)
	switch {
	case magnitude > c.cfg.HighImpactPct:
		return models.ImpactHigh
	case magnitude > c.cfg.ModerateImpactPct:
		return models.ImpactModerate
	default:
		return models.ImpactLow
	}
}

// stddev is the population standard deviation.
func stddev(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

// WindowBounds reports the baseline and observation ranges the correlator
// would use for an event date, for callers that need to audit coverage.
func (c *Correlator) WindowBounds(eventDate time.Time) (baselineFrom, observationEnd time.Time) {
	return eventDate.AddDate(0, 0, -c.cfg.LookbackDays), eventDate.AddDate(0, 0, c.cfg.LookaheadDays)
}
