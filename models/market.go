package models

import (
	"time"
)

// TradeSide identifies which side of a P2P trade an advertisement offers.
type TradeSide string

const (
	SideBuy  TradeSide = "BUY"
	SideSell TradeSide = "SELL"
)

// Advertisement is a single P2P trading advertisement as collected from an
// exchange. Records are immutable once ingested; the analysis packages only
// ever read them.
type Advertisement struct {
	CountryCode   string    `json:"country_code"`
	Side          TradeSide `json:"side"`
	Price         float64   `json:"price"`
	Quantity      float64   `json:"quantity"`
	Timestamp     time.Time `json:"timestamp"`
	PaymentMethod string    `json:"payment_method"`
}

// AdBatch maps a country code to the ordered advertisements collected for it.
type AdBatch map[string][]Advertisement

// ExchangeRate is the official rate for one country, expressed as local
// currency units per USD. One active rate per country per run.
type ExchangeRate struct {
	CountryCode string    `json:"country_code"`
	Currency    string    `json:"currency"`
	Rate        float64   `json:"rate"`
	AsOf        time.Time `json:"as_of"`
}

// RateSnapshot maps a country code to its official exchange rate.
type RateSnapshot map[string]ExchangeRate

// PricePoint is one observation in a daily price series.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// PriceSeries is a chronologically ordered sequence of price observations
// for a single asset.
type PriceSeries struct {
	Asset  string       `json:"asset"`
	Points []PricePoint `json:"points"`
}

// Covers reports whether the series has at least one observation inside the
// inclusive [from, to] range.
func (s PriceSeries) Covers(from, to time.Time) bool {
	for _, p := range s.Points {
		if !p.Date.Before(from) && !p.Date.After(to) {
			return true
		}
	}
	return false
}

// Window returns the prices observed inside the half-open [from, to) range,
// preserving series order.
func (s PriceSeries) Window(from, to time.Time) []float64 {
	var prices []float64
	for _, p := range s.Points {
		if !p.Date.Before(from) && p.Date.Before(to) {
			prices = append(prices, p.Price)
		}
	}
	return prices
}
