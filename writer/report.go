package writer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	parquetwriter "github.com/xitongsys/parquet-go/writer"

	appconfig "crisisflow/config"
	"crisisflow/logger"
	"crisisflow/models"
)

// CountryRow is the flat parquet projection of one country report. Absent
// sections are zero-valued with the matching has_* flag cleared, so a reader
// never mistakes a missing premium for a zero premium.
type CountryRow struct {
	RunID            string  `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	CountryCode      string  `parquet:"name=country_code, type=BYTE_ARRAY, convertedtype=UTF8"`
	Indicator        string  `parquet:"name=indicator, type=BYTE_ARRAY, convertedtype=UTF8"`
	HasPremium       bool    `parquet:"name=has_premium, type=BOOLEAN"`
	Currency         string  `parquet:"name=currency, type=BYTE_ARRAY, convertedtype=UTF8"`
	PremiumPct       float64 `parquet:"name=premium_pct, type=DOUBLE"`
	TypicalPrice     float64 `parquet:"name=typical_price, type=DOUBLE"`
	OfficialRate     float64 `parquet:"name=official_rate, type=DOUBLE"`
	SampleSize       int32   `parquet:"name=sample_size, type=INT32"`
	MarketSize       string  `parquet:"name=market_size, type=BYTE_ARRAY, convertedtype=UTF8"`
	LowConfidence    bool    `parquet:"name=low_confidence, type=BOOLEAN"`
	HasStructure     bool    `parquet:"name=has_structure, type=BOOLEAN"`
	BuyCount         int32   `parquet:"name=buy_count, type=INT32"`
	SellCount        int32   `parquet:"name=sell_count, type=INT32"`
	SellRatio        float64 `parquet:"name=sell_ratio, type=DOUBLE"`
	Pattern          string  `parquet:"name=pattern, type=BYTE_ARRAY, convertedtype=UTF8"`
	EventsMeasured   int32   `parquet:"name=events_measured, type=INT32"`
	EventsUncovered  int32   `parquet:"name=events_uncovered, type=INT32"`
	HighImpactEvents int32   `parquet:"name=high_impact_events, type=INT32"`
}

// memoryFileWriter implements the ParquetFile interface for in-memory writing.
type memoryFileWriter struct {
	buffer *bytes.Buffer
}

func newMemoryFileWriter() *memoryFileWriter {
	return &memoryFileWriter{buffer: &bytes.Buffer{}}
}

func (mfw *memoryFileWriter) Create(name string) (source.ParquetFile, error) { return mfw, nil }
func (mfw *memoryFileWriter) Open(name string) (source.ParquetFile, error)   { return mfw, nil }

func (mfw *memoryFileWriter) Seek(offset int64, whence int) (int64, error) {
	// Write-only usage, seeking is never exercised.
	return int64(mfw.buffer.Len()), nil
}

func (mfw *memoryFileWriter) Read(b []byte) (int, error)  { return mfw.buffer.Read(b) }
func (mfw *memoryFileWriter) Write(b []byte) (int, error) { return mfw.buffer.Write(b) }
func (mfw *memoryFileWriter) Close() error                { return nil }
func (mfw *memoryFileWriter) Bytes() []byte               { return mfw.buffer.Bytes() }

// ReportWriter persists a finished run report to the local output directory
// and, when configured, mirrors the artifacts to S3.
type ReportWriter struct {
	config   *appconfig.Config
	uploader *S3Uploader
	log      *logger.Log
}

func NewReportWriter(cfg *appconfig.Config) (*ReportWriter, error) {
	w := &ReportWriter{
		config: cfg,
		log:    logger.GetLogger(),
	}

	if cfg.Storage.S3.Enabled {
		uploader, err := NewS3Uploader(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 uploader: %w", err)
		}
		w.uploader = uploader
	}
	return w, nil
}

// Write persists the report in every enabled format and returns the paths of
// the local artifacts written.
func (w *ReportWriter) Write(ctx context.Context, report *models.RunReport) ([]string, error) {
	log := w.log.WithComponent("report_writer").WithFields(logger.Fields{
		"run_id":    report.RunID,
		"countries": len(report.Countries),
	})

	if err := os.MkdirAll(w.config.Report.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", w.config.Report.OutputDir, err)
	}

	var artifacts []string

	if w.config.Report.Formats.JSON.Enabled {
		path, err := w.writeJSON(ctx, report)
		if err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, path)
	}

	if w.config.Report.Formats.Parquet.Enabled {
		path, err := w.writeParquet(ctx, report)
		if err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, path)
	}

	log.WithFields(logger.Fields{"artifacts": len(artifacts)}).Info("run report persisted")
	return artifacts, nil
}

func (w *ReportWriter) writeJSON(ctx context.Context, report *models.RunReport) (string, error) {
	var data []byte
	var err error
	if w.config.Report.Formats.JSON.Pretty {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal run report: %w", err)
	}

	name := fmt.Sprintf("crisis_report_%s.json", report.RunID)
	return w.persist(ctx, report, name, data, "application/json")
}

func (w *ReportWriter) writeParquet(ctx context.Context, report *models.RunReport) (string, error) {
	data, err := w.createParquetFile(flattenReports(report))
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("premium_analysis_%s.parquet", report.RunID)
	return w.persist(ctx, report, name, data, "application/octet-stream")
}

// persist writes one artifact locally and mirrors it to S3 when enabled.
func (w *ReportWriter) persist(ctx context.Context, report *models.RunReport, name string, data []byte, contentType string) (string, error) {
	log := w.log.WithComponent("report_writer").WithFields(logger.Fields{
		"artifact":  name,
		"file_size": len(data),
	})

	path := filepath.Join(w.config.Report.OutputDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.IncrementReportWrite(int64(len(data)))
	log.Info("artifact written")

	if w.uploader != nil {
		key := w.uploader.Key(report.GeneratedAt, name)
		if err := w.uploader.Upload(ctx, key, data, contentType); err != nil {
			// Local artifact survives; the upload failure is reported, not fatal.
			log.WithError(err).Error("failed to upload artifact to S3")
		}
	}
	return path, nil
}

func (w *ReportWriter) createParquetFile(rows []CountryRow) ([]byte, error) {
	fw := newMemoryFileWriter()

	pw, err := parquetwriter.NewParquetWriter(fw, new(CountryRow), 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}

	switch w.config.Report.Formats.Parquet.Compression {
	case "snappy":
		pw.CompressionType = parquet.CompressionCodec_SNAPPY
	case "gzip":
		pw.CompressionType = parquet.CompressionCodec_GZIP
	case "lzo":
		pw.CompressionType = parquet.CompressionCodec_LZO
	default:
		pw.CompressionType = parquet.CompressionCodec_UNCOMPRESSED
	}

	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			pw.WriteStop()
			return nil, fmt.Errorf("failed to write parquet row: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("failed to finalize parquet writing: %w", err)
	}
	return fw.Bytes(), nil
}

// flattenReports projects the nested country reports onto flat parquet rows.
func flattenReports(report *models.RunReport) []CountryRow {
	rows := make([]CountryRow, 0, len(report.Countries))
	for _, country := range report.Countries {
		row := CountryRow{
			RunID:       report.RunID,
			CountryCode: country.CountryCode,
			Indicator:   string(country.Indicator),
		}

		if country.Premium != nil {
			row.HasPremium = true
			row.Currency = country.Premium.Currency
			row.PremiumPct = country.Premium.PremiumPct
			row.TypicalPrice = country.Premium.TypicalPrice
			row.OfficialRate = country.Premium.OfficialRate
			row.SampleSize = int32(country.Premium.SampleSize)
			row.MarketSize = string(country.Premium.MarketSize)
			row.LowConfidence = country.Premium.LowConfidence
		}

		if country.Structure != nil {
			row.HasStructure = true
			row.BuyCount = int32(country.Structure.BuyCount)
			row.SellCount = int32(country.Structure.SellCount)
			row.SellRatio = country.Structure.SellRatio
			row.Pattern = string(country.Structure.Pattern)
		}

		for _, correlation := range country.Correlations {
			switch correlation.Status {
			case models.CorrelationMeasured:
				row.EventsMeasured++
				if correlation.Impact == models.ImpactHigh {
					row.HighImpactEvents++
				}
			default:
				row.EventsUncovered++
			}
		}

		rows = append(rows, row)
	}
	return rows
}
