package normalize_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	fxsync "github.com/unhappyben/fx-sync"
	"github.com/unhappyben/fx-sync/normalize"
)

func TestWeekendRecords(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	friday := date("2024-01-05")
	monday := date("2024-01-08")

	raw := fxsync.RawRates{
		Base:   "USD",
		Source: fxsync.ExchangeRateAPIProvider,
		Quotes: map[string]map[string]float64{
			"2024-01-05": {"USD": 1, "JPY": 144.00, "EUR": 0.92},
			"2024-01-08": {"USD": 1, "JPY": 147.00},
		},
	}

	records, skipped := normalize.WeekendRecords(zap.NewNop(), raw, friday, monday, []string{"USD", "JPY", "EUR"})

	// EUR is missing on Monday: skipped on both weekend days
	assert.Equal(2, skipped)
	assert.Len(records, 4)

	byKey := make(map[fxsync.RateKey]fxsync.RateRecord, len(records))
	for _, record := range records {
		byKey[record.Key()] = record
	}

	sat := byKey[fxsync.RateKey{Date: "2024-01-06", Base: "USD", Quote: "JPY", Source: fxsync.ExchangeRateAPIProvider}]
	sun := byKey[fxsync.RateKey{Date: "2024-01-07", Base: "USD", Quote: "JPY", Source: fxsync.ExchangeRateAPIProvider}]

	// Sat = 2/3*144 + 1/3*147 = 145, Sun = 1/3*144 + 2/3*147 = 146
	assert.Equal("145", sat.InverseRate.String())
	assert.Equal("146", sun.InverseRate.String())
	assert.Equal("0.00689655", sat.Rate.String())
	assert.Equal("0.00684932", sun.Rate.String())

	usdSat := byKey[fxsync.RateKey{Date: "2024-01-06", Base: "USD", Quote: "USD", Source: fxsync.ExchangeRateAPIProvider}]
	assert.Equal("1", usdSat.Rate.String())
}

func TestBlendRounding(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	friday := date("2024-01-05")
	monday := date("2024-01-08")

	raw := fxsync.RawRates{
		Base:   "USD",
		Source: fxsync.ExchangeRateAPIProvider,
		Quotes: map[string]map[string]float64{
			"2024-01-05": {"EUR": 0.92},
			"2024-01-08": {"EUR": 0.95},
		},
	}

	records, skipped := normalize.WeekendRecords(zap.NewNop(), raw, friday, monday, []string{"EUR"})

	assert.Zero(skipped)
	assert.Len(records, 2)

	// (2*0.92 + 0.95)/3 = 0.93, rounded to 8 places
	assert.Equal("0.93", records[0].InverseRate.String())
	assert.True(records[0].InverseRate.Round(fxsync.RatePrecision).Equal(records[0].InverseRate))
}

func TestFillWeekendGaps(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	series := []fxsync.RateRecord{
		rateRecord("2024-01-05", "JPY", "144"), // Friday
		rateRecord("2024-01-08", "JPY", "147"), // Monday
		rateRecord("2024-01-09", "JPY", "148"), // Tuesday, no gap before it
	}

	filled := normalize.FillWeekendGaps(zap.NewNop(), series)

	assert.Len(filled, 5)
	assert.Equal("2024-01-05", filled[0].Date.Format(fxsync.DateLayout))
	assert.Equal("2024-01-06", filled[1].Date.Format(fxsync.DateLayout))
	assert.Equal("2024-01-07", filled[2].Date.Format(fxsync.DateLayout))
	assert.Equal("2024-01-08", filled[3].Date.Format(fxsync.DateLayout))
	assert.Equal("2024-01-09", filled[4].Date.Format(fxsync.DateLayout))

	assert.Equal("145", filled[1].InverseRate.String())
	assert.Equal("146", filled[2].InverseRate.String())
}

func TestFillWeekendGapsNoFridayMondayPair(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	series := []fxsync.RateRecord{
		rateRecord("2024-01-08", "JPY", "147"), // Monday
		rateRecord("2024-01-09", "JPY", "148"),
	}

	filled := normalize.FillWeekendGaps(zap.NewNop(), series)

	assert.Len(filled, 2)
}

func rateRecord(day, quote, inverse string) fxsync.RateRecord {
	inv := decimal.RequireFromString(inverse)

	return fxsync.RateRecord{
		Date:        date(day),
		Base:        "USD",
		Quote:       quote,
		Rate:        decimal.NewFromInt(1).DivRound(inv, fxsync.RatePrecision),
		InverseRate: inv,
		Source:      fxsync.YahooFinanceProvider,
	}
}
