package fxsync

import (
	"fmt"
	"strings"
)

type Provider string

const (
	ExchangeRateAPIProvider Provider = "ExchangeRateAPI"
	TraderMadeProvider      Provider = "TraderMade"
	YahooFinanceProvider    Provider = "YahooFinance"
	EmptyProvider           Provider = ""
)

func ConvertToProvidersFromStringSlice(strings []string) ([]Provider, error) {
	providers := make([]Provider, 0, len(strings))

	for _, str := range strings {
		provider, err := ConvertToProviderFromString(str)
		if err != nil {
			return nil, err
		}

		providers = append(providers, provider)
	}

	return providers, nil
}

func ConvertToProviderFromString(str string) (Provider, error) {
	switch strings.ToLower(str) {
	case "exchangerateapi":
		return ExchangeRateAPIProvider, nil
	case "tradermade":
		return TraderMadeProvider, nil
	case "yahoofinance", "yahoo":
		return YahooFinanceProvider, nil
	}

	return "", fmt.Errorf("value %s is not valid Provider", str)
}
