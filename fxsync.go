package fxsync

import (
	"context"
	"time"
)

type (
	// RawRates is a provider response reduced to its quote table: for every
	// fetched date, how many units of a quote currency one unit of Base buys.
	// Zero or missing quotes are kept as-is and resolved by the normalizer.
	RawRates struct {
		Base   string
		Source Provider
		Quotes map[string]map[string]float64
	}

	Fetcher interface {
		Fetch(ctx context.Context, dates []time.Time, base string, quotes []string) (RawRates, error)
	}
)

// On returns the quote table for a single date, nil when the provider
// returned nothing for it.
func (r RawRates) On(date time.Time) map[string]float64 {
	return r.Quotes[date.Format(DateLayout)]
}
