package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	currency "github.com/malusev998/currency-board"
	"github.com/malusev998/currency-board/storage"
)

func TestSQLiteStorage(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	ctx := context.Background()

	st, err := storage.NewStorage(storage.SQLite, storage.SQLiteConfig{
		BaseConfig: storage.BaseConfig{Ctx: ctx, Migrate: true},
		Path:       filepath.Join(t.TempDir(), "board.db"),
	})
	asserts.NoError(err)
	defer st.Close()
	asserts.Equal("sqlite", st.GetStorageProviderName())

	_, err = st.Latest(ctx, "CNY")
	asserts.True(errors.Is(err, currency.ErrSnapshotNotFound))

	_, err = st.Store(ctx, snapshot)
	asserts.NoError(err)

	newer := currency.Snapshot{
		Base:      "CNY",
		Rates:     currency.Rates{"HKD": 1.09},
		Provider:  currency.ExchangeRatesAPIProvider,
		FetchedAt: snapshot.FetchedAt.Add(time.Minute),
	}
	stored, err := st.Store(ctx, newer)
	asserts.NoError(err)

	_, err = st.Store(ctx, currency.Snapshot{Base: "USD", Rates: currency.Rates{"CNY": 7.14}})
	asserts.NoError(err)

	latest, err := st.Latest(ctx, "CNY")
	asserts.NoError(err)
	asserts.Equal(stored.ID, latest.ID)
	asserts.Equal(newer.Rates, latest.Rates)
	asserts.Equal(currency.ExchangeRatesAPIProvider, latest.Provider)
	asserts.WithinDuration(newer.FetchedAt, latest.FetchedAt, time.Millisecond)

	usd, err := st.Latest(ctx, "USD")
	asserts.NoError(err)
	asserts.Equal(currency.Rates{"CNY": 7.14}, usd.Rates)

	asserts.NoError(st.Drop())
}
