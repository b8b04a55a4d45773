package fetchers

import (
	"context"
	"errors"
	"io/ioutil"
	"net/http"
	"strings"

	fxsync "github.com/unhappyben/fx-sync"
)

const (
	ExchangeRateAPIURL = "https://v6.exchangerate-api.com/v6"
	TraderMadeURL      = "https://marketdata.tradermade.com/api/v1"
	YahooFinanceURL    = "https://query1.finance.yahoo.com"
)

var (
	ErrUnAuthorized     = errors.New("unauthorized, API key is not provided")
	ErrClient           = errors.New("client error")
	ErrServer           = errors.New("server error")
	ErrUnknown          = errors.New("unknown error")
	ErrMalformedPayload = errors.New("malformed provider payload")
	ErrNoData           = errors.New("provider returned no data")
)

func statusError(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrUnAuthorized
	case code >= http.StatusBadRequest && code < http.StatusInternalServerError:
		return ErrClient
	case code >= http.StatusInternalServerError:
		return ErrServer
	}

	return ErrUnknown
}

func getJSON(ctx context.Context, client *http.Client, url string, query map[string]string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return 0, nil, err
	}

	req.Header.Add("Accept", "application/json")

	q := req.URL.Query()
	for key, value := range query {
		q.Add(key, value)
	}
	req.URL.RawQuery = q.Encode()

	res, err := client.Do(req)

	if err != nil {
		return 0, nil, err
	}

	defer res.Body.Close()

	body, err := ioutil.ReadAll(res.Body)

	if err != nil {
		return res.StatusCode, nil, err
	}

	return res.StatusCode, body, nil
}

func joinInstruments(base string, quotes []string) string {
	var builder strings.Builder

	for _, quote := range quotes {
		if quote == base {
			continue
		}

		builder.WriteString(quote)
		builder.WriteString(base)
		builder.WriteRune(',')
	}

	return strings.TrimRight(builder.String(), ",")
}

func providerError(provider fxsync.Provider, status int, err error) *fxsync.ProviderError {
	return &fxsync.ProviderError{
		Provider: provider,
		Status:   status,
		Err:      err,
	}
}
