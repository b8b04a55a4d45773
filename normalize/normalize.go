// Package normalize turns raw provider quote tables into canonical rate
// records and fills weekend gaps by interpolation.
package normalize

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	fxsync "github.com/unhappyben/fx-sync"
)

var one = decimal.NewFromInt(1)

// Records converts a raw quote table into rate records ordered by
// (date, quote). Quotes with a missing, zero or non-finite per-base value
// are skipped with a warning; the batch itself never fails. The base
// currency is pinned at 1.0 for every date the provider returned.
func Records(lg *zap.Logger, raw fxsync.RawRates, quotes []string) ([]fxsync.RateRecord, int) {
	dates := make([]string, 0, len(raw.Quotes))
	for date := range raw.Quotes {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	ordered := append([]string(nil), quotes...)
	sort.Strings(ordered)

	records := make([]fxsync.RateRecord, 0, len(dates)*len(ordered))
	skipped := 0

	for _, date := range dates {
		day, err := time.Parse(fxsync.DateLayout, date)

		if err != nil {
			lg.Warn("skipping entry with invalid date",
				zap.String("source", string(raw.Source)),
				zap.String("date", date),
			)
			skipped += len(ordered)

			continue
		}

		for _, quote := range ordered {
			record, ok := record(raw, day, date, quote)

			if !ok {
				lg.Warn("skipping quote with missing or zero rate",
					zap.String("source", string(raw.Source)),
					zap.String("date", date),
					zap.String("currency", quote),
				)
				skipped++

				continue
			}

			records = append(records, record)
		}
	}

	return records, skipped
}

func record(raw fxsync.RawRates, day time.Time, date, quote string) (fxsync.RateRecord, bool) {
	if quote == raw.Base {
		return fxsync.RateRecord{
			Date:        day,
			Base:        raw.Base,
			Quote:       quote,
			Rate:        one,
			InverseRate: one,
			Source:      raw.Source,
		}, true
	}

	perBase, ok := raw.Quotes[date][quote]

	if !ok || perBase == 0 || math.IsNaN(perBase) || math.IsInf(perBase, 0) {
		return fxsync.RateRecord{}, false
	}

	perBaseDec := decimal.NewFromFloat(perBase)

	return fxsync.RateRecord{
		Date:        day,
		Base:        raw.Base,
		Quote:       quote,
		Rate:        one.DivRound(perBaseDec, fxsync.RatePrecision),
		InverseRate: perBaseDec.Round(fxsync.RatePrecision),
		Source:      raw.Source,
	}, true
}
