// Package loader reads the batch input files: P2P advertisement dumps,
// official exchange-rate snapshots, and asset price histories. All three are
// header-indexed CSV, so column order in the source files does not matter.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"crisisflow/logger"
	"crisisflow/models"
	"crisisflow/registry"
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// header maps column names to their index for one CSV file.
type header map[string]int

func readHeader(record []string) header {
	h := make(header, len(record))
	for i, name := range record {
		h[strings.TrimSpace(strings.ToLower(name))] = i
	}
	return h
}

func (h header) field(record []string, name string) (string, bool) {
	i, ok := h[name]
	if !ok || i >= len(record) {
		return "", false
	}
	return strings.TrimSpace(record[i]), true
}

func (h header) require(names ...string) error {
	var missing []string
	for _, name := range names {
		if _, ok := h[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// LoadAds reads a P2P advertisement dump and groups the rows by country
// code. Malformed rows are logged and skipped rather than aborting the
// batch; a row with a non-positive price is malformed.
func LoadAds(path string) (models.AdBatch, error) {
	log := logger.GetLogger().WithComponent("loader").WithFields(logger.Fields{"file": path})

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open advertisements file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read advertisements header: %w", err)
	}
	h := readHeader(head)
	if err := h.require("country_code", "trade_type", "price"); err != nil {
		return nil, fmt.Errorf("advertisements file %s: %w", path, err)
	}

	batch := make(models.AdBatch)
	var skipped, line int
	for {
		line++
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read advertisements row %d: %w", line, err)
		}

		ad, err := parseAd(h, record)
		if err != nil {
			skipped++
			log.WithError(err).WithFields(logger.Fields{"row": line}).Warn("skipping malformed advertisement row")
			continue
		}
		batch[ad.CountryCode] = append(batch[ad.CountryCode], ad)
	}

	logger.LogDataFlowEntry(log, path, "loader", countAds(batch), "advertisements")
	if skipped > 0 {
		log.WithFields(logger.Fields{"skipped": skipped}).Warn("advertisement rows skipped")
	}
	return batch, nil
}

func parseAd(h header, record []string) (models.Advertisement, error) {
	country, _ := h.field(record, "country_code")
	if country == "" {
		return models.Advertisement{}, fmt.Errorf("empty country_code")
	}

	side, _ := h.field(record, "trade_type")
	side = strings.ToUpper(side)
	if side != string(models.SideBuy) && side != string(models.SideSell) {
		return models.Advertisement{}, fmt.Errorf("unknown trade_type %q", side)
	}

	priceStr, _ := h.field(record, "price")
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price <= 0 {
		return models.Advertisement{}, fmt.Errorf("invalid price %q", priceStr)
	}

	ad := models.Advertisement{
		CountryCode: strings.ToUpper(country),
		Side:        models.TradeSide(side),
		Price:       price,
	}

	if qtyStr, ok := h.field(record, "available_amount"); ok && qtyStr != "" {
		if qty, err := strconv.ParseFloat(qtyStr, 64); err == nil && qty > 0 {
			ad.Quantity = qty
		}
	}
	if method, ok := h.field(record, "payment_method"); ok {
		ad.PaymentMethod = method
	}
	if tsStr, ok := h.field(record, "timestamp"); ok && tsStr != "" {
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, tsStr); err == nil {
				ad.Timestamp = ts
				break
			}
		}
	}
	return ad, nil
}

// LoadRates reads an official exchange-rate snapshot keyed by fiat currency
// and resolves it to country codes through the registry. Currencies no
// registry country uses are ignored; a registry country with no rate row is
// simply absent from the snapshot, which downstream records as an omission.
func LoadRates(path string, reg *registry.Registry) (models.RateSnapshot, error) {
	log := logger.GetLogger().WithComponent("loader").WithFields(logger.Fields{"file": path})

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open exchange-rate file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read exchange-rate header: %w", err)
	}
	h := readHeader(head)
	if err := h.require("fiat_currency", "usd_rate"); err != nil {
		return nil, fmt.Errorf("exchange-rate file %s: %w", path, err)
	}

	byCurrency := make(map[string]models.ExchangeRate)
	var line int
	for {
		line++
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read exchange-rate row %d: %w", line, err)
		}

		currency, _ := h.field(record, "fiat_currency")
		rateStr, _ := h.field(record, "usd_rate")
		rate, err := strconv.ParseFloat(rateStr, 64)
		if err != nil || rate <= 0 {
			log.WithFields(logger.Fields{"row": line, "currency": currency, "usd_rate": rateStr}).
				Warn("skipping exchange-rate row with unusable rate")
			continue
		}

		entry := models.ExchangeRate{Currency: strings.ToUpper(currency), Rate: rate}
		if dateStr, ok := h.field(record, "date"); ok && dateStr != "" {
			if asOf, err := time.Parse("2006-01-02", dateStr); err == nil {
				entry.AsOf = asOf
			}
		}
		byCurrency[entry.Currency] = entry
	}

	snapshot := make(models.RateSnapshot)
	for _, profile := range reg.Countries() {
		if rate, ok := byCurrency[profile.Currency]; ok {
			rate.CountryCode = profile.Code
			snapshot[profile.Code] = rate
		}
	}

	logger.LogDataFlowEntry(log, path, "loader", len(snapshot), "exchange_rates")
	return snapshot, nil
}

// LoadPrices reads an asset price history into a chronologically sorted
// series. The file needs date and close columns; everything else in the
// export is ignored.
func LoadPrices(path, asset string) (models.PriceSeries, error) {
	log := logger.GetLogger().WithComponent("loader").WithFields(logger.Fields{"file": path, "asset": asset})

	f, err := os.Open(path)
	if err != nil {
		return models.PriceSeries{}, fmt.Errorf("failed to open price-history file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if err != nil {
		return models.PriceSeries{}, fmt.Errorf("failed to read price-history header: %w", err)
	}
	h := readHeader(head)
	if err := h.require("date", "close"); err != nil {
		return models.PriceSeries{}, fmt.Errorf("price-history file %s: %w", path, err)
	}

	series := models.PriceSeries{Asset: asset}
	var line int
	for {
		line++
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.PriceSeries{}, fmt.Errorf("failed to read price-history row %d: %w", line, err)
		}

		dateStr, _ := h.field(record, "date")
		date, err := parseDate(dateStr)
		if err != nil {
			log.WithFields(logger.Fields{"row": line, "date": dateStr}).Warn("skipping price row with unparseable date")
			continue
		}

		closeStr, _ := h.field(record, "close")
		price, err := strconv.ParseFloat(closeStr, 64)
		if err != nil || price <= 0 {
			log.WithFields(logger.Fields{"row": line, "close": closeStr}).Warn("skipping price row with unusable close")
			continue
		}

		series.Points = append(series.Points, models.PricePoint{Date: date, Price: price})
	}

	sort.Slice(series.Points, func(i, j int) bool {
		return series.Points[i].Date.Before(series.Points[j].Date)
	})

	logger.LogDataFlowEntry(log, path, "loader", len(series.Points), "price_points")
	return series, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func countAds(batch models.AdBatch) int {
	var n int
	for _, ads := range batch {
		n += len(ads)
	}
	return n
}
