package registry

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrLookupFailure is returned when data references a country code that has
// no registry entry. Callers must surface it, never treat the country as a
// stable default.
var ErrLookupFailure = errors.New("registry lookup failure")

// EventCategory groups crisis events for analysis.
type EventCategory string

const (
	CategoryPolitical EventCategory = "political"
	CategoryEconomic  EventCategory = "economic"
	CategorySanctions EventCategory = "sanctions"
	CategoryOther     EventCategory = "other"
)

// CountryProfile is the static metadata for one target country.
type CountryProfile struct {
	Code     string `yaml:"country_code"`
	Name     string `yaml:"name"`
	Currency string `yaml:"fiat"`
}

// CrisisEvent is one documented crisis event. Multiple events on the same
// (country, date) are legal; insertion order is irrelevant.
type CrisisEvent struct {
	CountryCode string
	Date        time.Time
	Category    EventCategory
	Severity    string
	Title       string
	Description string
}

// Registry holds country metadata and the crisis-event timeline used by
// every analytical component. It is immutable after construction.
type Registry struct {
	countries map[string]CountryProfile
	events    []CrisisEvent
}

// New builds a registry from the provided profiles and events. Events are
// kept sorted by date so per-country timelines come out chronological.
func New(countries []CountryProfile, events []CrisisEvent) *Registry {
	byCode := make(map[string]CountryProfile, len(countries))
	for _, c := range countries {
		byCode[strings.ToUpper(strings.TrimSpace(c.Code))] = c
	}

	sorted := make([]CrisisEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	return &Registry{countries: byCode, events: sorted}
}

// Default returns the built-in registry covering the curated research
// countries and their documented crisis timeline.
func Default() *Registry {
	return New(defaultCountries, defaultEvents)
}

// Country resolves a country code to its profile. Unknown codes fail with
// ErrLookupFailure rather than returning an implicit default.
func (r *Registry) Country(code string) (CountryProfile, error) {
	profile, ok := r.countries[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return CountryProfile{}, fmt.Errorf("%w: unknown country code %q", ErrLookupFailure, code)
	}
	return profile, nil
}

// Countries returns all profiles sorted by country code.
func (r *Registry) Countries() []CountryProfile {
	out := make([]CountryProfile, 0, len(r.countries))
	for _, c := range r.countries {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Events returns the chronological crisis timeline for one country.
func (r *Registry) Events(code string) []CrisisEvent {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	var out []CrisisEvent
	for _, e := range r.events {
		if e.CountryCode == normalized {
			out = append(out, e)
		}
	}
	return out
}

// AllEvents returns the full timeline sorted by date.
func (r *Registry) AllEvents() []CrisisEvent {
	out := make([]CrisisEvent, len(r.events))
	copy(out, r.events)
	return out
}

type eventFile struct {
	Date        string `yaml:"date"`
	CountryCode string `yaml:"country_code"`
	Category    string `yaml:"category"`
	Severity    string `yaml:"severity"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Load reads country profiles and crisis events from YAML files. Either
// path may be empty, in which case the built-in defaults for that part are
// used.
func Load(countriesPath, eventsPath string) (*Registry, error) {
	countries := defaultCountries
	events := defaultEvents

	if countriesPath != "" {
		data, err := os.ReadFile(countriesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read countries file: %w", err)
		}
		var loaded []CountryProfile
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("failed to parse countries file: %w", err)
		}
		for i, c := range loaded {
			if strings.TrimSpace(c.Code) == "" || strings.TrimSpace(c.Currency) == "" {
				return nil, fmt.Errorf("countries file entry %d: country_code and fiat are required", i)
			}
		}
		countries = loaded
	}

	if eventsPath != "" {
		data, err := os.ReadFile(eventsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read events file: %w", err)
		}
		var loaded []eventFile
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("failed to parse events file: %w", err)
		}
		events = make([]CrisisEvent, 0, len(loaded))
		for i, e := range loaded {
			date, err := time.Parse("2006-01-02", e.Date)
			if err != nil {
				return nil, fmt.Errorf("events file entry %d: invalid date %q: %w", i, e.Date, err)
			}
			events = append(events, CrisisEvent{
				CountryCode: strings.ToUpper(strings.TrimSpace(e.CountryCode)),
				Date:        date,
				Category:    parseCategory(e.Category),
				Severity:    e.Severity,
				Title:       e.Title,
				Description: e.Description,
			})
		}
	}

	return New(countries, events), nil
}

func parseCategory(raw string) EventCategory {
	switch EventCategory(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryPolitical:
		return CategoryPolitical
	case CategoryEconomic:
		return CategoryEconomic
	case CategorySanctions:
		return CategorySanctions
	default:
		return CategoryOther
	}
}
