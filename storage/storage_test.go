package storage_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	currency "github.com/malusev998/currency-board"
	"github.com/malusev998/currency-board/storage"
)

func TestConvertToProviderFromString(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	providers, err := storage.ConvertToProvidersFromStringSlice([]string{"MySQL", "postgresql", "sqlite", "mongo"})
	asserts.NoError(err)
	asserts.Equal([]storage.Provider{storage.MySQL, storage.Postgres, storage.SQLite, storage.MongoDB}, providers)

	_, err = storage.ConvertToProvidersFromStringSlice([]string{"sqlite", "redis"})
	asserts.EqualError(err, "value redis is not valid Provider")
}

func TestNewStorage_Unknown(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	st, err := storage.NewStorage("redis", nil)

	asserts.Nil(st)
	asserts.ErrorIs(err, storage.ErrStorageNotFound)
}

// The tests below need running databases and are skipped otherwise.

func mysqlConnectionString() string {
	mysqlDriverConfig := mysql.NewConfig()
	mysqlDriverConfig.User = "currency"
	mysqlDriverConfig.Passwd = "currency"
	mysqlDriverConfig.DBName = "currencydb"
	mysqlDriverConfig.Net = "tcp"
	mysqlDriverConfig.Addr = os.Getenv("CURRENCY_BOARD_TEST_MYSQL_ADDR")
	mysqlDriverConfig.ParseTime = true

	return mysqlDriverConfig.FormatDSN()
}

func testStorage(t *testing.T, st currency.Storage) {
	t.Helper()
	asserts := require.New(t)
	ctx := context.Background()
	defer st.Close()
	defer st.Drop()

	_, err := st.Store(ctx, snapshot)
	asserts.NoError(err)

	_, err = st.Store(ctx, currency.Snapshot{Base: "CNY", Rates: currency.Rates{"USD": 0.15}, FetchedAt: time.Now()})
	asserts.NoError(err)

	latest, err := st.Latest(ctx, "CNY")
	asserts.NoError(err)
	asserts.Equal(currency.Rates{"USD": 0.15}, latest.Rates)
}

func TestMySQLStorage(t *testing.T) {
	if os.Getenv("CURRENCY_BOARD_TEST_MYSQL_ADDR") == "" {
		t.Skip("CURRENCY_BOARD_TEST_MYSQL_ADDR is not set")
	}

	st, err := storage.NewMySQLStorage(storage.MySQLConfig{
		BaseConfig:       storage.BaseConfig{Ctx: context.Background(), Migrate: true},
		ConnectionString: mysqlConnectionString(),
		TableName:        "snapshot_store_test",
	})
	require.NoError(t, err)

	testStorage(t, st)
}

func TestPostgresStorage(t *testing.T) {
	dsn := os.Getenv("CURRENCY_BOARD_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CURRENCY_BOARD_TEST_POSTGRES_DSN is not set")
	}

	st, err := storage.NewPostgresStorage(storage.PostgresConfig{
		BaseConfig:       storage.BaseConfig{Ctx: context.Background(), Migrate: true},
		ConnectionString: dsn,
		TableName:        "snapshot_store_test",
	})
	require.NoError(t, err)

	testStorage(t, st)
}

func TestMongoStorage(t *testing.T) {
	uri := os.Getenv("CURRENCY_BOARD_TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("CURRENCY_BOARD_TEST_MONGODB_URI is not set")
	}

	st, err := storage.NewMongoStorage(storage.MongoDBConfig{
		BaseConfig:       storage.BaseConfig{Ctx: context.Background(), Migrate: true},
		ConnectionString: uri,
		Database:         "currency_board_test",
		Collection:       "snapshots",
	})
	require.NoError(t, err)

	testStorage(t, st)
}
