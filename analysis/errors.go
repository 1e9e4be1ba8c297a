package analysis

import "errors"

// Sentinel errors for the analytical failure taxonomy. Per-country and
// per-event failures are isolated: callers record them as omissions and
// keep processing the remaining input.
var (
	// ErrMissingReferenceRate means a country requested a premium but no
	// usable official exchange rate was supplied.
	ErrMissingReferenceRate = errors.New("missing reference rate")

	// ErrInsufficientSampleData means a country had zero advertisements;
	// the record is omitted rather than defaulted.
	ErrInsufficientSampleData = errors.New("insufficient sample data")

	// ErrInsufficientBaselineData means an event's baseline window held too
	// few observations or zero variance to measure an impact against.
	ErrInsufficientBaselineData = errors.New("insufficient baseline data")
)
