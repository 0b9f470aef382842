package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	currency "github.com/malusev998/currency-board"
)

type (
	Provider   string
	BaseConfig struct {
		Ctx     context.Context
		Migrate bool
	}
	MySQLConfig struct {
		BaseConfig
		ConnectionString string
		TableName        string
		IDGenerator      IDGenerator
	}
	PostgresConfig struct {
		BaseConfig
		ConnectionString string
		TableName        string
		IDGenerator      IDGenerator
	}
	SQLiteConfig struct {
		BaseConfig
		Path        string
		TableName   string
		IDGenerator IDGenerator
	}
	MongoDBConfig struct {
		BaseConfig
		ConnectionString string
		Database         string
		Collection       string
	}
)

const (
	MySQL    Provider = "mysql"
	Postgres Provider = "postgres"
	SQLite   Provider = "sqlite"
	MongoDB  Provider = "mongodb"

	DefaultTableName = "rate_snapshots"
)

var (
	ErrStorageNotFound = errors.New("storage is not found")
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
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "mysql":
		return MySQL, nil
	case "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "mongodb", "mongo":
		return MongoDB, nil
	}

	return "", fmt.Errorf("value %s is not valid Provider", str)
}

func tableName(name string) string {
	if name == "" {
		return DefaultTableName
	}

	return name
}

func openSQL(config BaseConfig, driver, dsn string, dialect Dialect, idGenerator IDGenerator, table string) (currency.Storage, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	st, err := NewSQLStorage(config.Ctx, db, dialect, idGenerator, tableName(table), config.Migrate)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s migration: %w", dialect.Name, err)
	}

	return st, nil
}

func NewMySQLStorage(config MySQLConfig) (currency.Storage, error) {
	return openSQL(config.BaseConfig, "mysql", config.ConnectionString, MySQLDialect, config.IDGenerator, config.TableName)
}

func NewPostgresStorage(config PostgresConfig) (currency.Storage, error) {
	return openSQL(config.BaseConfig, "postgres", config.ConnectionString, PostgresDialect, config.IDGenerator, config.TableName)
}

func NewSQLiteStorage(config SQLiteConfig) (currency.Storage, error) {
	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, err
	}

	// sqlite allows one writer at a time
	db.SetMaxOpenConns(1)

	st, err := NewSQLStorage(config.Ctx, db, SQLiteDialect, config.IDGenerator, tableName(config.TableName), config.Migrate)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite migration: %w", err)
	}

	return st, nil
}

func NewStorage(provider Provider, config interface{}) (currency.Storage, error) {
	switch provider {
	case MySQL:
		return NewMySQLStorage(config.(MySQLConfig))
	case Postgres:
		return NewPostgresStorage(config.(PostgresConfig))
	case SQLite:
		return NewSQLiteStorage(config.(SQLiteConfig))
	case MongoDB:
		return NewMongoStorage(config.(MongoDBConfig))
	}

	return nil, ErrStorageNotFound
}
