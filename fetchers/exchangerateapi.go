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
	// ExchangeRateAPIFetcher queries the ExchangeRate-API v6 history endpoint
	// once per requested date.
	ExchangeRateAPIFetcher struct {
		Client *http.Client
		Logger *zap.Logger
		URL    string
		APIKey string
	}

	exchangeRateAPIResponse struct {
		Result          string             `json:"result"`
		ErrorType       string             `json:"error-type"`
		ConversionRates map[string]float64 `json:"conversion_rates"`
	}
)

func (e ExchangeRateAPIFetcher) Fetch(
	ctx context.Context,
	dates []time.Time,
	base string,
	quotes []string,
) (fxsync.RawRates, error) {
	raw := fxsync.RawRates{
		Base:   base,
		Source: fxsync.ExchangeRateAPIProvider,
		Quotes: make(map[string]map[string]float64, len(dates)),
	}

	if e.APIKey == "" {
		return raw, providerError(raw.Source, 0, ErrUnAuthorized)
	}

	url := e.URL

	if url == "" {
		url = ExchangeRateAPIURL
	}

	client := e.Client

	if client == nil {
		client = &http.Client{}
	}

	for _, date := range dates {
		day, err := e.fetchDay(ctx, client, url, base, date)

		if err != nil {
			return raw, err
		}

		raw.Quotes[date.Format(fxsync.DateLayout)] = day

		e.Logger.Info("fetched daily rates",
			zap.String("provider", string(raw.Source)),
			zap.String("date", date.Format(fxsync.DateLayout)),
			zap.Int("quotes", len(day)),
		)
	}

	return raw, nil
}

func (e ExchangeRateAPIFetcher) fetchDay(
	ctx context.Context,
	client *http.Client,
	url, base string,
	date time.Time,
) (map[string]float64, error) {
	endpoint := fmt.Sprintf("%s/%s/history/%s/%d/%02d/%02d", url, e.APIKey, base, date.Year(), date.Month(), date.Day())

	status, body, err := getJSON(ctx, client, endpoint, nil)

	if err != nil {
		return nil, providerError(fxsync.ExchangeRateAPIProvider, 0, err)
	}

	if err := statusError(status); err != nil {
		return nil, providerError(fxsync.ExchangeRateAPIProvider, status, err)
	}

	var data exchangeRateAPIResponse

	if err := json.Unmarshal(body, &data); err != nil {
		return nil, providerError(fxsync.ExchangeRateAPIProvider, status, fmt.Errorf("%w: %v", ErrMalformedPayload, err))
	}

	if data.Result != "success" {
		err := fmt.Errorf("%w: api error %q", ErrClient, data.ErrorType)

		if data.ErrorType == "invalid-key" || data.ErrorType == "inactive-account" {
			err = fmt.Errorf("%w: api error %q", ErrUnAuthorized, data.ErrorType)
		}

		return nil, providerError(fxsync.ExchangeRateAPIProvider, status, err)
	}

	if len(data.ConversionRates) == 0 {
		return nil, providerError(fxsync.ExchangeRateAPIProvider, status, ErrNoData)
	}

	return data.ConversionRates, nil
}
