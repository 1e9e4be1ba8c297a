package analysis

import (
	"testing"
	"time"

	appconfig "crisisflow/config"
	"crisisflow/models"
	"crisisflow/registry"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dailySeries(t *testing.T, start time.Time, prices []float64) models.PriceSeries {
	t.Helper()
	series := models.PriceSeries{Asset: "BTC"}
	for i, price := range prices {
		series.Points = append(series.Points, models.PricePoint{
			Date:  start.AddDate(0, 0, i),
			Price: price,
		})
	}
	return series
}

func sudanEvent(date time.Time) registry.CrisisEvent {
	return registry.CrisisEvent{
		CountryCode: "SD",
		Date:        date,
		Category:    registry.CategoryPolitical,
		Severity:    "severe",
		Title:       "Armed conflict begins",
	}
}

// calmThenVolatile builds 7 quiet baseline days followed by 15 turbulent
// observation days around an event on the 8th day.
func calmThenVolatile(t *testing.T, start time.Time) models.PriceSeries {
	t.Helper()
	prices := make([]float64, 0, 22)
	for i := 0; i < 7; i++ {
		if i%2 == 0 {
			prices = append(prices, 100)
		} else {
			prices = append(prices, 102)
		}
	}
	for i := 0; i < 15; i++ {
		if i%2 == 0 {
			prices = append(prices, 100)
		} else {
			prices = append(prices, 140)
		}
	}
	return dailySeries(t, start, prices)
}

func TestCorrelateMeasuresVolatilityShift(t *testing.T) {
	correlator := NewCorrelator(appconfig.DefaultAnalysis())

	start := day(2023, 4, 8)
	eventDate := day(2023, 4, 15)
	series := calmThenVolatile(t, start)

	records, omissions := correlator.Correlate(series, []registry.CrisisEvent{sudanEvent(eventDate)})
	if len(omissions) != 0 {
		t.Fatalf("unexpected omissions: %v", omissions)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	record := records[0]
	if record.Status != models.CorrelationMeasured {
		t.Fatalf("status = %s, want measured", record.Status)
	}
	if record.ObservationVolatility <= record.BaselineVolatility {
		t.Fatalf("observation volatility should exceed baseline: %+v", record)
	}
	if record.ImpactPct <= 0 {
		t.Fatalf("impact should be positive, got %v", record.ImpactPct)
	}
	if record.Impact != models.ImpactHigh {
		t.Fatalf("impact level = %s, want high", record.Impact)
	}
	if record.Asset != "BTC" || record.EventTitle != "Armed conflict begins" {
		t.Fatalf("event metadata not carried: %+v", record)
	}
}

func TestCorrelateVolatilityCollapseIsStillNotable(t *testing.T) {
	correlator := NewCorrelator(appconfig.DefaultAnalysis())

	// Turbulent baseline, quiet observation window.
	start := day(2023, 4, 8)
	prices := make([]float64, 0, 22)
	for i := 0; i < 7; i++ {
		if i%2 == 0 {
			prices = append(prices, 100)
		} else {
			prices = append(prices, 140)
		}
	}
	for i := 0; i < 15; i++ {
		if i%2 == 0 {
			prices = append(prices, 100)
		} else {
			prices = append(prices, 102)
		}
	}
	series := dailySeries(t, start, prices)

	records, _ := correlator.Correlate(series, []registry.CrisisEvent{sudanEvent(day(2023, 4, 15))})
	record := records[0]

	if record.ImpactPct >= 0 {
		t.Fatalf("impact should be negative for a collapse, got %v", record.ImpactPct)
	}
	if record.Impact != models.ImpactHigh {
		t.Fatalf("large negative impact must classify on magnitude, got %s", record.Impact)
	}
}

func TestCorrelateUncoveredEvent(t *testing.T) {
	correlator := NewCorrelator(appconfig.DefaultAnalysis())

	series := dailySeries(t, day(2023, 4, 8), []float64{100, 101, 102})
	event := sudanEvent(day(2019, 4, 11))

	records, omissions := correlator.Correlate(series, []registry.CrisisEvent{event})
	if len(records) != 1 {
		t.Fatalf("uncovered event must still produce a record")
	}
	if records[0].Status != models.CorrelationUncovered {
		t.Fatalf("status = %s, want uncovered", records[0].Status)
	}
	if len(omissions) != 0 {
		t.Fatalf("fully uncovered events are not omissions: %v", omissions)
	}
}

func TestCorrelateInsufficientBaseline(t *testing.T) {
	correlator := NewCorrelator(appconfig.DefaultAnalysis())

	// Coverage exists only on the observation side of the event.
	eventDate := day(2023, 4, 15)
	series := dailySeries(t, eventDate, []float64{100, 105, 110, 108, 112})

	records, omissions := correlator.Correlate(series, []registry.CrisisEvent{sudanEvent(eventDate)})
	if records[0].Status != models.CorrelationUncovered {
		t.Fatalf("status = %s, want uncovered", records[0].Status)
	}
	if len(omissions) != 1 {
		t.Fatalf("expected 1 omission, got %d", len(omissions))
	}

	omission := omissions[0]
	if omission.Reason != models.OmitInsufficientBaselineData {
		t.Fatalf("reason = %s, want insufficient_baseline_data", omission.Reason)
	}
	if omission.EventDate == nil || !omission.EventDate.Equal(eventDate) {
		t.Fatalf("omission must carry the event date: %+v", omission)
	}
}

func TestCorrelateZeroVarianceBaseline(t *testing.T) {
	correlator := NewCorrelator(appconfig.DefaultAnalysis())

	start := day(2023, 4, 8)
	prices := make([]float64, 22)
	for i := range prices {
		prices[i] = 100
	}
	// Flat baseline makes the impact ratio undefined.
	prices[10] = 150
	series := dailySeries(t, start, prices)

	records, omissions := correlator.Correlate(series, []registry.CrisisEvent{sudanEvent(day(2023, 4, 15))})
	if records[0].Status != models.CorrelationUncovered {
		t.Fatalf("zero-variance baseline must not be measured")
	}
	if len(omissions) != 1 || omissions[0].Reason != models.OmitInsufficientBaselineData {
		t.Fatalf("expected insufficient-baseline omission, got %v", omissions)
	}
}

func TestCorrelateEveryEventAccountedFor(t *testing.T) {
	correlator := NewCorrelator(appconfig.DefaultAnalysis())

	series := calmThenVolatile(t, day(2023, 4, 8))
	events := []registry.CrisisEvent{
		sudanEvent(day(2023, 4, 15)),
		sudanEvent(day(2019, 4, 11)),
		sudanEvent(day(2023, 4, 8)),
	}

	records, _ := correlator.Correlate(series, events)
	if len(records) != len(events) {
		t.Fatalf("every event needs a record: got %d of %d", len(records), len(events))
	}
}

func TestClassifyImpactBoundaries(t *testing.T) {
	correlator := NewCorrelator(appconfig.DefaultAnalysis())

	cases := []struct {
		impact float64
		want   models.ImpactLevel
	}{
		{25, models.ImpactHigh},
		{-25, models.ImpactHigh},
		{20, models.ImpactModerate},
		{15, models.ImpactModerate},
		{-15, models.ImpactModerate},
		{10, models.ImpactLow},
		{5, models.ImpactLow},
		{0, models.ImpactLow},
	}
	for _, tc := range cases {
		if got := correlator.classifyImpact(tc.impact); got != tc.want {
			t.Fatalf("classifyImpact(%v) = %s, want %s", tc.impact, got, tc.want)
		}
	}
}

func TestStddevPopulation(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := stddev(values); got != 2 {
		t.Fatalf("stddev = %v, want 2", got)
	}
}
