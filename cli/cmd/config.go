package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	fxsync "github.com/unhappyben/fx-sync"
	"github.com/unhappyben/fx-sync/fetchers"
	"github.com/unhappyben/fx-sync/storage"
)

type (
	DuneConfig struct {
		URL       string
		APIKey    string
		Namespace string
		Table     string
	}

	Config struct {
		Base           string
		Currencies     []string
		Interpolate    bool
		DailyProvider  fxsync.Provider
		Storages       []storage.Provider
		StorageConfig  map[storage.Provider]interface{}
		FetchersConfig map[fxsync.Provider]interface{}
		Dune           DuneConfig
		SyncStart      time.Time
	}
)

func getMysqlDSN(config map[string]string) string {
	mysqlDriverConfig := mysql.NewConfig()

	mysqlDriverConfig.User = config["user"]
	mysqlDriverConfig.Passwd = config["password"]
	mysqlDriverConfig.Net = "tcp"
	mysqlDriverConfig.Addr = config["addr"]
	mysqlDriverConfig.DBName = config["db"]

	return mysqlDriverConfig.FormatDSN()
}

func getConfig(ctx context.Context, lg *zap.Logger) (*Config, error) {
	currencies := viper.GetStringSlice("currencies")

	if len(currencies) == 0 {
		return nil, errors.New("no currencies configured")
	}

	dailyProvider, err := fxsync.ConvertToProviderFromString(viper.GetString("fetchers.daily"))

	if err != nil {
		return nil, err
	}

	storages, err := storage.ConvertToProvidersFromStringSlice(viper.GetStringSlice("storage"))

	if err != nil {
		return nil, err
	}

	syncStart, err := time.Parse(fxsync.DateLayout, viper.GetString("sync.start"))

	if err != nil {
		return nil, fmt.Errorf("invalid sync.start: %w", err)
	}

	duneAPIKey := viper.GetString("dune_api_key")

	if duneAPIKey == "" {
		return nil, errors.New("FX_SYNC_DUNE_API_KEY is not set")
	}

	storageBaseConfig := storage.BaseConfig{
		Ctx:     ctx,
		Migrate: viper.GetBool("migrate"),
	}

	mysqlConfig := viper.GetStringMapString("databases.mysql")
	mongodbConfig := viper.GetStringMapString("databases.mongodb")

	fetcherBaseConfig := fetchers.BaseConfig{
		Client: &http.Client{Timeout: 30 * time.Second},
		Logger: lg,
	}

	exchangeRateAPIConfig := fetcherBaseConfig
	exchangeRateAPIConfig.URL = viper.GetString("fetchers.exchangerateapi.url")

	traderMadeConfig := fetcherBaseConfig
	traderMadeConfig.URL = viper.GetString("fetchers.tradermade.url")

	yahooFinanceConfig := fetcherBaseConfig
	yahooFinanceConfig.URL = viper.GetString("fetchers.yahoofinance.url")

	return &Config{
		Base:          viper.GetString("base"),
		Currencies:    currencies,
		Interpolate:   viper.GetBool("interpolate"),
		DailyProvider: dailyProvider,
		Storages:      storages,
		StorageConfig: map[storage.Provider]interface{}{
			storage.MySQL: storage.MySQLConfig{
				BaseConfig:       storageBaseConfig,
				ConnectionString: getMysqlDSN(mysqlConfig),
				TableName:        mysqlConfig["table"],
			},
			storage.MongoDB: storage.MongoDBConfig{
				BaseConfig:       storageBaseConfig,
				ConnectionString: mongodbConfig["uri"],
				Database:         mongodbConfig["db"],
				Collection:       mongodbConfig["collection"],
			},
		},
		FetchersConfig: map[fxsync.Provider]interface{}{
			fxsync.ExchangeRateAPIProvider: fetchers.ExchangeRateAPIConfig{
				BaseConfig: exchangeRateAPIConfig,
				APIKey:     viper.GetString("exchangerate_api_key"),
			},
			fxsync.TraderMadeProvider: fetchers.TraderMadeConfig{
				BaseConfig: traderMadeConfig,
				APIKey:     viper.GetString("tradermade_api_key"),
			},
			fxsync.YahooFinanceProvider: fetchers.YahooFinanceConfig{
				BaseConfig: yahooFinanceConfig,
			},
		},
		Dune: DuneConfig{
			URL:       viper.GetString("dune.url"),
			APIKey:    duneAPIKey,
			Namespace: viper.GetString("dune.namespace"),
			Table:     viper.GetString("dune.table"),
		},
		SyncStart: syncStart,
	}, nil
}
