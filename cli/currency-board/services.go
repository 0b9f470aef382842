package main

import (
	"context"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	currency "github.com/malusev998/currency-board"
	"github.com/malusev998/currency-board/catalog"
	"github.com/malusev998/currency-board/cli/cmd"
	"github.com/malusev998/currency-board/fetchers"
	"github.com/malusev998/currency-board/services"
	"github.com/malusev998/currency-board/session"
	"github.com/malusev998/currency-board/storage"
)

func createStorages(config *Config) ([]currency.Storage, error) {
	storages := make([]currency.Storage, 0, len(config.Storage))
	for _, s := range config.Storage {
		c, ok := config.StorageConfig[s]
		if !ok {
			return nil, fmt.Errorf("storage %s does not exist", s)
		}

		st, err := storage.NewStorage(s, c)
		if err != nil {
			for _, opened := range storages {
				_ = opened.Close()
			}

			return nil, err
		}

		storages = append(storages, st)
	}

	return storages, nil
}

func createFetcher(config *Config, logger log.Logger) (currency.Fetcher, error) {
	c, ok := config.FetchersConfig[config.Provider]
	if !ok {
		return nil, fmt.Errorf("fetcher %s does not exist", config.Provider)
	}

	fetcher := fetchers.NewCurrencyFetcher(config.Provider, c)
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher %s does not exist", config.Provider)
	}

	return fetchers.NewLoggingFetcher(log.With(logger, "component", "fetcher", "provider", config.Provider), fetcher), nil
}

func createCatalog(ctx context.Context, config *Config, fetcher currency.Fetcher, logger log.Logger) (*catalog.Catalog, error) {
	logger = log.With(logger, "component", "catalog")

	if config.CatalogFile != "" {
		currencies, err := catalog.LoadFile(config.CatalogFile)
		if err != nil {
			return nil, err
		}

		level.Info(logger).Log("msg", "currency catalog loaded from file", "file", config.CatalogFile, "currencies", len(currencies))

		return catalog.New(currencies), nil
	}

	ctx, cancel := context.WithTimeout(ctx, fetchers.DefaultTimeout)
	defer cancel()

	return catalog.Load(ctx, fetcher, logger), nil
}

func setup(logger log.Logger) func(ctx context.Context, debug bool) (*cmd.App, error) {
	return func(ctx context.Context, debug bool) (*cmd.App, error) {
		allow := level.AllowInfo()
		if debug {
			allow = level.AllowDebug()
		}

		logger := level.NewFilter(logger, allow)

		config, err := getConfig(ctx)
		if err != nil {
			return nil, err
		}

		fetcher, err := createFetcher(config, logger)
		if err != nil {
			return nil, err
		}

		storages, err := createStorages(config)
		if err != nil {
			return nil, err
		}

		c, err := createCatalog(ctx, config, fetcher, logger)
		if err != nil {
			for _, st := range storages {
				_ = st.Close()
			}

			return nil, err
		}

		refresher := services.RefreshService{
			Fetcher:  fetcher,
			Storage:  storages,
			Provider: config.Provider,
			Logger:   log.With(logger, "component", "refresh"),
		}

		board := session.Config{
			Catalog:      c,
			Refresher:    refresher,
			Codes:        config.Board.Currencies,
			Focal:        config.Board.Focal,
			Amount:       config.Board.Amount,
			MaxSelection: config.Board.MaxSelection,
			Interval:     config.Board.Interval,
			Logger:       logger,
		}

		if len(storages) > 0 {
			board.Seeder = refresher
		}

		return &cmd.App{
			Fetcher:   fetcher,
			Catalog:   c,
			Refresher: refresher,
			Storages:  storages,
			Board:     board,
			Addr:      config.Addr,
			Logger:    logger,
		}, nil
	}
}
