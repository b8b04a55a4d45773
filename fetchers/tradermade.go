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
	// TraderMadeFetcher queries the TraderMade historical endpoint with one
	// {QUOTE}{BASE} instrument per quote currency. Closes arrive as base
	// units per quote and are inverted into the per-base quote table.
	TraderMadeFetcher struct {
		Client *http.Client
		Logger *zap.Logger
		URL    string
		APIKey string
	}

	traderMadeQuote struct {
		BaseCurrency  string  `json:"base_currency"`
		QuoteCurrency string  `json:"quote_currency"`
		Close         float64 `json:"close"`
	}

	traderMadeResponse struct {
		Date   string            `json:"date"`
		Quotes []traderMadeQuote `json:"quotes"`
	}
)

func (t TraderMadeFetcher) Fetch(
	ctx context.Context,
	dates []time.Time,
	base string,
	quotes []string,
) (fxsync.RawRates, error) {
	raw := fxsync.RawRates{
		Base:   base,
		Source: fxsync.TraderMadeProvider,
		Quotes: make(map[string]map[string]float64, len(dates)),
	}

	if t.APIKey == "" {
		return raw, providerError(raw.Source, 0, ErrUnAuthorized)
	}

	url := t.URL

	if url == "" {
		url = TraderMadeURL
	}

	client := t.Client

	if client == nil {
		client = &http.Client{}
	}

	instruments := joinInstruments(base, quotes)

	for _, date := range dates {
		day, err := t.fetchDay(ctx, client, url, instruments, base, date)

		if err != nil {
			return raw, err
		}

		raw.Quotes[date.Format(fxsync.DateLayout)] = day

		t.Logger.Info("fetched daily rates",
			zap.String("provider", string(raw.Source)),
			zap.String("date", date.Format(fxsync.DateLayout)),
			zap.Int("quotes", len(day)),
		)
	}

	return raw, nil
}

func (t TraderMadeFetcher) fetchDay(
	ctx context.Context,
	client *http.Client,
	url, instruments, base string,
	date time.Time,
) (map[string]float64, error) {
	status, body, err := getJSON(ctx, client, url+"/historical", map[string]string{
		"date":     date.Format(fxsync.DateLayout),
		"currency": instruments,
		"api_key":  t.APIKey,
	})

	if err != nil {
		return nil, providerError(fxsync.TraderMadeProvider, 0, err)
	}

	if err := statusError(status); err != nil {
		return nil, providerError(fxsync.TraderMadeProvider, status, err)
	}

	var data traderMadeResponse

	if err := json.Unmarshal(body, &data); err != nil {
		return nil, providerError(fxsync.TraderMadeProvider, status, fmt.Errorf("%w: %v", ErrMalformedPayload, err))
	}

	if len(data.Quotes) == 0 {
		return nil, providerError(fxsync.TraderMadeProvider, status, ErrNoData)
	}

	day := make(map[string]float64, len(data.Quotes)+1)
	day[base] = 1.0

	for _, quote := range data.Quotes {
		// close of {QUOTE}{BASE} is base per quote; the raw table wants
		// quote per base. Zeroes stay zero and are skipped downstream.
		if quote.QuoteCurrency != base {
			continue
		}

		if quote.Close == 0 {
			day[quote.BaseCurrency] = 0
			continue
		}

		day[quote.BaseCurrency] = 1 / quote.Close
	}

	return day, nil
}
