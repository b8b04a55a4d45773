package fetchers

import (
	"net/http"

	"go.uber.org/zap"

	fxsync "github.com/unhappyben/fx-sync"
)

type (
	BaseConfig struct {
		Client *http.Client
		Logger *zap.Logger
		URL    string
	}
	ExchangeRateAPIConfig struct {
		BaseConfig
		APIKey string
	}
	TraderMadeConfig struct {
		BaseConfig
		APIKey string
	}
	YahooFinanceConfig struct {
		BaseConfig
	}
)

func NewFetcher(provider fxsync.Provider, config interface{}) fxsync.Fetcher {
	switch provider {
	case fxsync.ExchangeRateAPIProvider:
		c := config.(ExchangeRateAPIConfig)

		return ExchangeRateAPIFetcher{
			Client: c.Client,
			Logger: c.Logger,
			URL:    c.URL,
			APIKey: c.APIKey,
		}
	case fxsync.TraderMadeProvider:
		c := config.(TraderMadeConfig)

		return TraderMadeFetcher{
			Client: c.Client,
			Logger: c.Logger,
			URL:    c.URL,
			APIKey: c.APIKey,
		}
	case fxsync.YahooFinanceProvider:
		c := config.(YahooFinanceConfig)

		return YahooFinanceFetcher{
			Client: c.Client,
			Logger: c.Logger,
			URL:    c.URL,
		}
	}

	return nil
}
