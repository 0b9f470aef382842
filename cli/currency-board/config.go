package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"

	currency "github.com/malusev998/currency-board"
	"github.com/malusev998/currency-board/fetchers"
	"github.com/malusev998/currency-board/selection"
	"github.com/malusev998/currency-board/session"
	"github.com/malusev998/currency-board/storage"
)

type (
	FetchersConfig map[currency.Provider]interface{}
	StorageConfig  map[storage.Provider]interface{}
	BoardConfig    struct {
		Currencies   []currency.Code
		Focal        currency.Code
		Amount       string
		MaxSelection int
		Interval     time.Duration
	}
	Config struct {
		Provider       currency.Provider
		Storage        []storage.Provider
		FetchersConfig FetchersConfig
		StorageConfig  StorageConfig
		Board          BoardConfig
		Addr           string
		CatalogFile    string
	}
)

func setDefaults() {
	viper.SetDefault("provider", "wise")
	viper.SetDefault("fetchers.wise.url", fetchers.WiseURL)
	viper.SetDefault("fetchers.exchangeratesapi.url", fetchers.ExchangeRatesAPIURL)
	viper.SetDefault("fetchers.freecurrconv.url", fetchers.FreeConvFetchURL)
	viper.SetDefault("fetchers.freecurrconv.maxperhour", 100)
	viper.SetDefault("fetchers.freecurrconv.maxperrequest", 2)
	viper.SetDefault("fetchers.timeout", fetchers.DefaultTimeout)
	viper.SetDefault("storage", []string{})
	viper.SetDefault("migrate", true)
	viper.SetDefault("databases.sqlite.path", "currency-board.db")
	viper.SetDefault("board.currencies", currency.JoinCodes(selection.DefaultCodes))
	viper.SetDefault("board.amount", selection.DefaultAmount)
	viper.SetDefault("board.maxselection", selection.DefaultMax)
	viper.SetDefault("board.interval", session.DefaultInterval)
	viper.SetDefault("http.addr", ":8080")
}

func getMysqlDSN() string {
	mysqlDriverConfig := mysql.NewConfig()
	mysqlDriverConfig.User = viper.GetString("databases.mysql.user")
	mysqlDriverConfig.Passwd = viper.GetString("databases.mysql.password")
	mysqlDriverConfig.Addr = viper.GetString("databases.mysql.addr")
	mysqlDriverConfig.Net = "tcp"
	mysqlDriverConfig.DBName = viper.GetString("databases.mysql.db")
	mysqlDriverConfig.ParseTime = true

	return mysqlDriverConfig.FormatDSN()
}

// getCodes accepts both a YAML list and a comma separated string.
func getCodes(key string) ([]currency.Code, error) {
	values := viper.GetStringSlice(key)
	codes := make([]currency.Code, 0, len(values))

	for _, value := range values {
		parsed, err := currency.ParseCodes(value)
		if err != nil {
			return nil, fmt.Errorf("error while parsing %s: %w", key, err)
		}

		codes = append(codes, parsed...)
	}

	return codes, nil
}

func getConfig(ctx context.Context) (*Config, error) {
	setDefaults()

	provider, err := currency.ConvertToProviderFromString(viper.GetString("provider"))
	if err != nil {
		return nil, err
	}

	storages, err := storage.ConvertToProvidersFromStringSlice(viper.GetStringSlice("storage"))
	if err != nil {
		return nil, err
	}

	codes, err := getCodes("board.currencies")
	if err != nil {
		return nil, err
	}

	var focal currency.Code

	if value := viper.GetString("board.focal"); value != "" {
		if focal, err = currency.Normalize(value); err != nil {
			return nil, fmt.Errorf("error while parsing board.focal: %w", err)
		}
	}

	maxPerHour := viper.GetInt("fetchers.freecurrconv.maxperhour")
	maxPerRequest := viper.GetInt("fetchers.freecurrconv.maxperrequest")

	if maxPerHour <= 0 || maxPerRequest <= 0 {
		return nil, fmt.Errorf("fetchers.freecurrconv maxperhour and maxperrequest must be positive, got %d and %d", maxPerHour, maxPerRequest)
	}

	fetcherBaseConfig := func(key string) fetchers.BaseConfig {
		return fetchers.BaseConfig{
			URL:               viper.GetString(key),
			Timeout:           viper.GetDuration("fetchers.timeout"),
			RequestsPerSecond: viper.GetFloat64("fetchers.ratelimit"),
		}
	}

	storageBaseConfig := storage.BaseConfig{
		Ctx:     ctx,
		Migrate: viper.GetBool("migrate"),
	}

	return &Config{
		Provider: provider,
		Storage:  storages,
		StorageConfig: StorageConfig{
			storage.MySQL: storage.MySQLConfig{
				BaseConfig:       storageBaseConfig,
				ConnectionString: getMysqlDSN(),
				TableName:        viper.GetString("databases.mysql.table"),
			},
			storage.Postgres: storage.PostgresConfig{
				BaseConfig:       storageBaseConfig,
				ConnectionString: viper.GetString("databases.postgres.dsn"),
				TableName:        viper.GetString("databases.postgres.table"),
			},
			storage.SQLite: storage.SQLiteConfig{
				BaseConfig: storageBaseConfig,
				Path:       viper.GetString("databases.sqlite.path"),
				TableName:  viper.GetString("databases.sqlite.table"),
			},
			storage.MongoDB: storage.MongoDBConfig{
				BaseConfig:       storageBaseConfig,
				ConnectionString: viper.GetString("databases.mongodb.uri"),
				Database:         viper.GetString("databases.mongodb.db"),
				Collection:       viper.GetString("databases.mongodb.collection"),
			},
		},
		FetchersConfig: FetchersConfig{
			currency.WiseProvider: fetchers.WiseConfig{
				BaseConfig: fetcherBaseConfig("fetchers.wise.url"),
				APIKey:     viper.GetString("fetchers.wise.apikey"),
			},
			currency.ExchangeRatesAPIProvider: fetchers.ExchangeRatesAPIConfig{
				BaseConfig: fetcherBaseConfig("fetchers.exchangeratesapi.url"),
				APIKey:     viper.GetString("fetchers.exchangeratesapi.apikey"),
			},
			currency.FreeConvProvider: fetchers.FreeConvServiceConfig{
				BaseConfig:         fetcherBaseConfig("fetchers.freecurrconv.url"),
				APIKey:             viper.GetString("fetchers.freecurrconv.apikey"),
				MaxPerHourRequests: maxPerHour,
				MaxPerRequest:      maxPerRequest,
			},
			currency.GatewayProvider: fetchers.GatewayConfig{
				BaseConfig: fetcherBaseConfig("fetchers.gateway.url"),
			},
		},
		Board: BoardConfig{
			Currencies:   codes,
			Focal:        focal,
			Amount:       viper.GetString("board.amount"),
			MaxSelection: viper.GetInt("board.maxselection"),
			Interval:     viper.GetDuration("board.interval"),
		},
		Addr:        viper.GetString("http.addr"),
		CatalogFile: viper.GetString("catalog.file"),
	}, nil
}
