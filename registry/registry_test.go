package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultRegistryCountries(t *testing.T) {
	reg := Default()

	profile, err := reg.Country("SD")
	if err != nil {
		t.Fatalf("Country(SD) failed: %v", err)
	}
	if profile.Currency != "SDG" {
		t.Fatalf("SD currency = %q, want SDG", profile.Currency)
	}

	countries := reg.Countries()
	if len(countries) == 0 {
		t.Fatalf("default registry has no countries")
	}
	for i := 1; i < len(countries); i++ {
		if countries[i].Code < countries[i-1].Code {
			t.Fatalf("countries not sorted: %s before %s", countries[i].Code, countries[i-1].Code)
		}
	}
}

func TestCountryLookupFailure(t *testing.T) {
	reg := Default()

	_, err := reg.Country("XX")
	if err == nil {
		t.Fatalf("expected lookup failure for unknown code")
	}
	if !errors.Is(err, ErrLookupFailure) {
		t.Fatalf("error not wrapping ErrLookupFailure: %v", err)
	}
}

func TestCountryLookupNormalizesCode(t *testing.T) {
	reg := Default()

	profile, err := reg.Country("  sd ")
	if err != nil {
		t.Fatalf("normalized lookup failed: %v", err)
	}
	if profile.Code != "SD" {
		t.Fatalf("profile code = %q, want SD", profile.Code)
	}
}

func TestEventsChronological(t *testing.T) {
	reg := Default()

	events := reg.Events("SD")
	if len(events) == 0 {
		t.Fatalf("no SD events in default timeline")
	}
	for i := 1; i < len(events); i++ {
		if events[i].Date.Before(events[i-1].Date) {
			t.Fatalf("SD events not chronological")
		}
	}
	for _, e := range events {
		if e.CountryCode != "SD" {
			t.Fatalf("foreign event leaked into SD timeline: %+v", e)
		}
	}
}

func TestAllEventsSorted(t *testing.T) {
	events := Default().AllEvents()
	for i := 1; i < len(events); i++ {
		if events[i].Date.Before(events[i-1].Date) {
			t.Fatalf("timeline not sorted at %d", i)
		}
	}
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()

	countriesPath := filepath.Join(dir, "countries.yml")
	if err := os.WriteFile(countriesPath, []byte(`
- country_code: tt
  name: Testland
  fiat: TTD
`), 0644); err != nil {
		t.Fatalf("failed to write countries fixture: %v", err)
	}

	eventsPath := filepath.Join(dir, "events.yml")
	if err := os.WriteFile(eventsPath, []byte(`
- date: "2024-02-01"
  country_code: tt
  category: economic
  severity: high
  title: Currency devaluation
- date: "2024-01-01"
  country_code: tt
  category: unknown-kind
  severity: moderate
  title: Border closure
`), 0644); err != nil {
		t.Fatalf("failed to write events fixture: %v", err)
	}

	reg, err := Load(countriesPath, eventsPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	profile, err := reg.Country("TT")
	if err != nil {
		t.Fatalf("loaded country missing: %v", err)
	}
	if profile.Currency != "TTD" {
		t.Fatalf("loaded currency = %q", profile.Currency)
	}

	events := reg.Events("TT")
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if !events[0].Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("events not re-sorted by date: %v", events[0].Date)
	}
	if events[0].Category != CategoryOther {
		t.Fatalf("unknown category should parse as other, got %s", events[0].Category)
	}
}

func TestLoadEmptyPathsUseDefaults(t *testing.T) {
	reg, err := Load("", "")
	if err != nil {
		t.Fatalf("Load with defaults failed: %v", err)
	}
	if _, err := reg.Country("AR"); err != nil {
		t.Fatalf("default country missing: %v", err)
	}
}

func TestLoadRejectsBadEventDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yml")
	if err := os.WriteFile(path, []byte(`
- date: "01/02/2024"
  country_code: tt
  title: Bad date format
`), 0644); err != nil {
		t.Fatalf("failed to write events fixture: %v", err)
	}

	if _, err := Load("", path); err == nil {
		t.Fatalf("expected error for invalid date format")
	}
}
