package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	fxsync "github.com/unhappyben/fx-sync"
)

type (
	// YahooFinanceFetcher pulls daily close series from the Yahoo v8 chart
	// endpoint, one ticker per quote currency over the whole date range.
	// The primary ticker is {BASE}{QUOTE}=X whose close is already quote
	// units per base; when Yahoo has no data for it the inverted
	// {QUOTE}{BASE}=X ticker is tried as a fallback.
	YahooFinanceFetcher struct {
		Client *http.Client
		Logger *zap.Logger
		URL    string
	}

	yahooChartResponse struct {
		Chart struct {
			Result []struct {
				Timestamp  []int64 `json:"timestamp"`
				Indicators struct {
					Quote []struct {
						Close []*float64 `json:"close"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
			Error *struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		} `json:"chart"`
	}
)

func (y YahooFinanceFetcher) Fetch(
	ctx context.Context,
	dates []time.Time,
	base string,
	quotes []string,
) (fxsync.RawRates, error) {
	raw := fxsync.RawRates{
		Base:   base,
		Source: fxsync.YahooFinanceProvider,
		Quotes: make(map[string]map[string]float64, len(dates)),
	}

	if len(dates) == 0 {
		return raw, providerError(raw.Source, 0, ErrNoData)
	}

	url := y.URL

	if url == "" {
		url = YahooFinanceURL
	}

	client := y.Client

	if client == nil {
		client = &http.Client{}
	}

	start, end := dateBounds(dates)

	for _, quote := range quotes {
		if quote == base {
			continue
		}

		series, err := y.fetchSeries(ctx, client, url, base, quote, start, end)

		if err != nil {
			return raw, err
		}

		for date, perBase := range series {
			day, ok := raw.Quotes[date]
			if !ok {
				day = make(map[string]float64, len(quotes))
				raw.Quotes[date] = day
			}

			day[quote] = perBase
		}

		y.Logger.Info("fetched rate series",
			zap.String("provider", string(raw.Source)),
			zap.String("currency", quote),
			zap.Int("days", len(series)),
		)
	}

	return raw, nil
}

func (y YahooFinanceFetcher) fetchSeries(
	ctx context.Context,
	client *http.Client,
	url, base, quote string,
	start, end time.Time,
) (map[string]float64, error) {
	series, err := y.fetchTicker(ctx, client, url, base+quote+"=X", false, start, end)

	if err == nil && len(series) > 0 {
		return series, nil
	}

	if err != nil {
		y.Logger.Warn("primary ticker failed, trying inverse",
			zap.String("ticker", base+quote+"=X"),
			zap.Error(err),
		)
	}

	series, fallbackErr := y.fetchTicker(ctx, client, url, quote+base+"=X", true, start, end)

	if fallbackErr != nil {
		if err != nil {
			return nil, err
		}

		return nil, fallbackErr
	}

	return series, nil
}

func (y YahooFinanceFetcher) fetchTicker(
	ctx context.Context,
	client *http.Client,
	url, ticker string,
	invert bool,
	start, end time.Time,
) (map[string]float64, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", url, ticker)

	status, body, err := getJSON(ctx, client, endpoint, map[string]string{
		"period1":  fmt.Sprintf("%d", start.Unix()),
		"period2":  fmt.Sprintf("%d", end.AddDate(0, 0, 1).Unix()),
		"interval": "1d",
	})

	if err != nil {
		return nil, providerError(fxsync.YahooFinanceProvider, 0, err)
	}

	if err := statusError(status); err != nil {
		return nil, providerError(fxsync.YahooFinanceProvider, status, err)
	}

	var data yahooChartResponse

	if err := json.Unmarshal(body, &data); err != nil {
		return nil, providerError(fxsync.YahooFinanceProvider, status, fmt.Errorf("%w: %v", ErrMalformedPayload, err))
	}

	if data.Chart.Error != nil {
		return nil, providerError(fxsync.YahooFinanceProvider, status,
			fmt.Errorf("%w: %s: %s", ErrClient, data.Chart.Error.Code, data.Chart.Error.Description))
	}

	if len(data.Chart.Result) == 0 || len(data.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, providerError(fxsync.YahooFinanceProvider, status, ErrNoData)
	}

	result := data.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close
	series := make(map[string]float64, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] == 0 {
			continue
		}

		value := *closes[i]

		if invert {
			value = 1 / value
		}

		series[time.Unix(ts, 0).UTC().Format(fxsync.DateLayout)] = value
	}

	return series, nil
}

func dateBounds(dates []time.Time) (time.Time, time.Time) {
	start, end := dates[0], dates[0]

	for _, date := range dates[1:] {
		if date.Before(start) {
			start = date
		}

		if date.After(end) {
			end = date
		}
	}

	return start, end
}
