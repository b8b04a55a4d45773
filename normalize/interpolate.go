package normalize

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	fxsync "github.com/unhappyben/fx-sync"
)

var three = decimal.NewFromInt(3)

// blendPerBase interpolates a weekend per-base rate between Friday and
// Monday. Saturday weighs Friday double, Sunday weighs Monday double.
func blendPerBase(friday, monday decimal.Decimal, saturday bool) decimal.Decimal {
	if saturday {
		return friday.Add(friday).Add(monday).DivRound(three, fxsync.RatePrecision)
	}

	return friday.Add(monday).Add(monday).DivRound(three, fxsync.RatePrecision)
}

func interpolated(date time.Time, base, quote string, source fxsync.Provider, perBase decimal.Decimal) fxsync.RateRecord {
	return fxsync.RateRecord{
		Date:        date,
		Base:        base,
		Quote:       quote,
		Rate:        one.DivRound(perBase, fxsync.RatePrecision),
		InverseRate: perBase,
		Source:      source,
	}
}

// WeekendRecords builds Saturday and Sunday records from a raw table that
// contains a Friday and the following Monday. Quotes missing from either
// day are skipped with a warning, the base currency is pinned at 1.0.
func WeekendRecords(
	lg *zap.Logger,
	raw fxsync.RawRates,
	friday, monday time.Time,
	quotes []string,
) ([]fxsync.RateRecord, int) {
	friRates := raw.On(friday)
	monRates := raw.On(monday)

	saturday := friday.AddDate(0, 0, 1)
	sunday := friday.AddDate(0, 0, 2)

	ordered := append([]string(nil), quotes...)
	sort.Strings(ordered)

	records := make([]fxsync.RateRecord, 0, 2*len(ordered))
	skipped := 0

	for _, day := range []time.Time{saturday, sunday} {
		isSaturday := day.Equal(saturday)

		for _, quote := range ordered {
			if quote == raw.Base {
				records = append(records, fxsync.RateRecord{
					Date:        day,
					Base:        raw.Base,
					Quote:       quote,
					Rate:        one,
					InverseRate: one,
					Source:      raw.Source,
				})

				continue
			}

			fri, friOK := friRates[quote]
			mon, monOK := monRates[quote]

			if !friOK || !monOK || fri == 0 || mon == 0 {
				lg.Warn("skipping quote, missing friday or monday rate",
					zap.String("source", string(raw.Source)),
					zap.String("date", day.Format(fxsync.DateLayout)),
					zap.String("currency", quote),
				)
				skipped++

				continue
			}

			perBase := blendPerBase(decimal.NewFromFloat(fri), decimal.NewFromFloat(mon), isSaturday)
			records = append(records, interpolated(day, raw.Base, quote, raw.Source, perBase))
		}
	}

	return records, skipped
}

// FillWeekendGaps inserts interpolated Saturday and Sunday records wherever
// a currency's series jumps straight from a Friday to the following Monday.
// Used by the full resync, whose market-data source has no weekend closes.
func FillWeekendGaps(lg *zap.Logger, records []fxsync.RateRecord) []fxsync.RateRecord {
	byQuote := make(map[string][]fxsync.RateRecord)
	for _, record := range records {
		byQuote[record.Quote] = append(byQuote[record.Quote], record)
	}

	filled := append([]fxsync.RateRecord(nil), records...)

	for quote, series := range byQuote {
		sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

		for i := 1; i < len(series); i++ {
			prev, curr := series[i-1], series[i]

			if prev.Date.Weekday() != time.Friday || curr.Date.Weekday() != time.Monday {
				continue
			}

			if curr.Date.Sub(prev.Date) != 72*time.Hour {
				continue
			}

			lg.Info("interpolating weekend gap",
				zap.String("currency", quote),
				zap.String("friday", prev.Date.Format(fxsync.DateLayout)),
			)

			saturday := blendPerBase(prev.InverseRate, curr.InverseRate, true)
			sunday := blendPerBase(prev.InverseRate, curr.InverseRate, false)

			filled = append(filled,
				interpolated(prev.Date.AddDate(0, 0, 1), prev.Base, quote, prev.Source, saturday),
				interpolated(prev.Date.AddDate(0, 0, 2), prev.Base, quote, prev.Source, sunday),
			)
		}
	}

	sort.Slice(filled, func(i, j int) bool {
		if !filled[i].Date.Equal(filled[j].Date) {
			return filled[i].Date.Before(filled[j].Date)
		}

		return filled[i].Quote < filled[j].Quote
	})

	return filled
}
