package writer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	appconfig "crisisflow/config"
	"crisisflow/models"
)

func testConfig(t *testing.T) *appconfig.Config {
	t.Helper()
	cfg := &appconfig.Config{}
	cfg.Crisisflow.Name = "crisisflow-test"
	cfg.Crisisflow.Version = "0.0.1"
	cfg.Report.OutputDir = t.TempDir()
	cfg.Report.Formats.Parquet.Enabled = true
	cfg.Report.Formats.Parquet.Compression = "snappy"
	cfg.Report.Formats.JSON.Enabled = true
	cfg.Report.Formats.JSON.Pretty = true
	return cfg
}

func sampleReport() *models.RunReport {
	premium := models.PremiumRecord{
		CountryCode:  "SD",
		Currency:     "SDG",
		PremiumPct:   547.6,
		TypicalPrice: 3885.6,
		OfficialRate: 600,
		SampleSize:   107,
		MarketSize:   models.MarketSubstantial,
	}
	structure := models.MarketStructureRecord{
		CountryCode: "SD",
		BuyCount:    4,
		SellCount:   103,
		SellRatio:   0.962,
		Pattern:     models.PatternSellPressure,
	}
	return &models.RunReport{
		RunID:       "test-run",
		GeneratedAt: time.Date(2025, 7, 30, 12, 0, 0, 0, time.UTC),
		Countries: []models.CountryReport{
			{
				CountryCode: "SD",
				Premium:     &premium,
				Structure:   &structure,
				Correlations: []models.CorrelationRecord{
					{CountryCode: "SD", Status: models.CorrelationMeasured, Impact: models.ImpactHigh},
					{CountryCode: "SD", Status: models.CorrelationUncovered},
				},
				Indicator: models.IndicatorHighCrisis,
			},
			{
				CountryCode: "VE",
				Indicator:   models.IndicatorIndeterminate,
			},
		},
		Omissions: []models.Omission{
			{CountryCode: "VE", Reason: models.OmitMissingReferenceRate, Detail: "no rate"},
		},
	}
}

func TestWritePersistsBothFormats(t *testing.T) {
	w, err := NewReportWriter(testConfig(t))
	if err != nil {
		t.Fatalf("NewReportWriter failed: %v", err)
	}

	artifacts, err := w.Write(context.Background(), sampleReport())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d: %v", len(artifacts), artifacts)
	}

	for _, path := range artifacts {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("artifact missing: %v", err)
		}
		if info.Size() == 0 {
			t.Fatalf("artifact %s is empty", path)
		}
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.Formats.Parquet.Enabled = false

	w, err := NewReportWriter(cfg)
	if err != nil {
		t.Fatalf("NewReportWriter failed: %v", err)
	}

	artifacts, err := w.Write(context.Background(), sampleReport())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if len(artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(artifacts))
	}

	data, err := os.ReadFile(artifacts[0])
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}

	var decoded models.RunReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}
	if decoded.RunID != "test-run" || len(decoded.Countries) != 2 {
		t.Fatalf("unexpected decoded report: %+v", decoded)
	}
	if decoded.Countries[1].Premium != nil {
		t.Fatalf("absent premium section must decode as nil")
	}
}

func TestCreateParquetFileMagic(t *testing.T) {
	w, err := NewReportWriter(testConfig(t))
	if err != nil {
		t.Fatalf("NewReportWriter failed: %v", err)
	}

	data, err := w.createParquetFile(flattenReports(sampleReport()))
	if err != nil {
		t.Fatalf("createParquetFile failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PAR1")) {
		t.Fatalf("parquet output missing magic header")
	}
}

func TestFlattenReports(t *testing.T) {
	rows := flattenReports(sampleReport())
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	sd := rows[0]
	if !sd.HasPremium || !sd.HasStructure {
		t.Fatalf("SD row should carry both sections: %+v", sd)
	}
	if sd.EventsMeasured != 1 || sd.EventsUncovered != 1 || sd.HighImpactEvents != 1 {
		t.Fatalf("unexpected SD event counts: %+v", sd)
	}

	ve := rows[1]
	if ve.HasPremium || ve.HasStructure {
		t.Fatalf("VE row should have no sections: %+v", ve)
	}
	if ve.Indicator != string(models.IndicatorIndeterminate) {
		t.Fatalf("VE indicator = %q", ve.Indicator)
	}
}
