package fxsync

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DateLayout is the calendar-date format used on the wire and in journal keys.
	DateLayout = "2006-01-02"

	// RatePrecision is the number of fractional digits kept on published rates.
	RatePrecision = 8
)

type (
	// RateRecord is one published exchange rate for a calendar date.
	// Rate is the value of one unit of Quote expressed in Base (the fx_rate
	// column), InverseRate is units of Quote per one unit of Base.
	RateRecord struct {
		Date        time.Time
		Base        string
		Quote       string
		Rate        decimal.Decimal
		InverseRate decimal.Decimal
		Source      Provider
	}

	// RateKey uniquely identifies a record within a batch and across runs.
	RateKey struct {
		Date   string
		Base   string
		Quote  string
		Source Provider
	}

	// StoredRate is a RateRecord together with the id the journal assigned to it.
	StoredRate struct {
		RateRecord
		ID interface{}
	}
)

func (r RateRecord) Key() RateKey {
	return RateKey{
		Date:   r.Date.Format(DateLayout),
		Base:   r.Base,
		Quote:  r.Quote,
		Source: r.Source,
	}
}
