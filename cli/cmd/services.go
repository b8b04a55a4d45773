package cmd

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	fxsync "github.com/unhappyben/fx-sync"
	"github.com/unhappyben/fx-sync/dune"
	"github.com/unhappyben/fx-sync/fetchers"
	"github.com/unhappyben/fx-sync/services"
	"github.com/unhappyben/fx-sync/storage"
)

func createStorages(config *Config) ([]fxsync.Storage, error) {
	storages := make([]fxsync.Storage, 0, len(config.Storages))

	for _, provider := range config.Storages {
		providerConfig, ok := config.StorageConfig[provider]

		if !ok {
			return nil, fmt.Errorf("config for storage %s not found", provider)
		}

		str, err := storage.NewStorage(provider, providerConfig)

		if err != nil {
			return nil, err
		}

		storages = append(storages, str)
	}

	return storages, nil
}

func closeStorages(lg *zap.Logger, storages []fxsync.Storage) {
	for _, str := range storages {
		if err := str.Close(); err != nil {
			lg.Warn("failed to close storage",
				zap.String("storage", str.GetStorageProviderName()),
				zap.Error(err),
			)
		}
	}
}

func createFetcher(config *Config, provider fxsync.Provider) (fxsync.Fetcher, error) {
	providerConfig, ok := config.FetchersConfig[provider]

	if !ok {
		return nil, fmt.Errorf("config for fetcher %s not found", provider)
	}

	return fetchers.NewFetcher(provider, providerConfig), nil
}

func createUploader(lg *zap.Logger, config *Config) fxsync.Uploader {
	return dune.NewClient(
		lg,
		&http.Client{Timeout: 60 * time.Second},
		config.Dune.URL,
		config.Dune.APIKey,
		config.Dune.Namespace,
		config.Dune.Table,
	)
}

func buildService(
	lg *zap.Logger,
	config *Config,
	provider fxsync.Provider,
	interpolate, recreate bool,
) (services.SyncService, func(), error) {
	storages, err := createStorages(config)

	if err != nil {
		return services.SyncService{}, nil, err
	}

	fetcher, err := createFetcher(config, provider)

	if err != nil {
		closeStorages(lg, storages)

		return services.SyncService{}, nil, err
	}

	service := services.SyncService{
		Fetcher:       fetcher,
		Uploader:      createUploader(lg, config),
		Storages:      storages,
		Logger:        lg,
		Base:          config.Base,
		Quotes:        config.Currencies,
		Interpolate:   interpolate,
		RecreateTable: recreate,
	}

	return service, func() { closeStorages(lg, storages) }, nil
}

func logReport(lg *zap.Logger, report fxsync.RunReport) {
	lg.Info("run complete",
		zap.Int("fetched", report.Fetched),
		zap.Int("skipped", report.Skipped),
		zap.Int("already_uploaded", report.AlreadyUploaded),
		zap.Int("uploaded", report.Uploaded),
		zap.Int("journaled", report.Journaled),
	)
}
