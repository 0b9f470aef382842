package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	currency "github.com/malusev998/currency-board"
)

type (
	MockFetcher struct {
		mock.Mock
	}

	MockStorage struct {
		mock.Mock
		name string
	}
)

func (m *MockFetcher) Currencies(ctx context.Context) ([]currency.Currency, error) {
	args := m.Called(ctx)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]currency.Currency), args.Error(1)
}

func (m *MockFetcher) Rates(ctx context.Context, base currency.Code, targets []currency.Code) (currency.Rates, error) {
	args := m.Called(ctx, base, targets)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(currency.Rates), args.Error(1)
}

func (m *MockStorage) Store(ctx context.Context, snapshot currency.Snapshot) (currency.SnapshotWithID, error) {
	args := m.Called(ctx, snapshot)

	return args.Get(0).(currency.SnapshotWithID), args.Error(1)
}

func (m *MockStorage) Latest(ctx context.Context, base currency.Code) (currency.SnapshotWithID, error) {
	args := m.Called(ctx, base)

	return args.Get(0).(currency.SnapshotWithID), args.Error(1)
}

func (m *MockStorage) GetStorageProviderName() string {
	if m.name == "" {
		return "MockStorage"
	}

	return m.name
}

func (m *MockStorage) Migrate() error {
	return nil
}

func (m *MockStorage) Drop() error {
	return nil
}

func (m *MockStorage) Close() error {
	return nil
}
