package services

import (
	"context"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	currency "github.com/malusev998/currency-board"
)

type RefreshService struct {
	Fetcher  currency.Fetcher
	Storage  []currency.Storage
	Provider currency.Provider
	Logger   log.Logger
}

type storageError struct {
	storage string
	err     error
}

func saveToStorage(
	ctx context.Context,
	wg *sync.WaitGroup,
	snapshot currency.Snapshot,
	storage currency.Storage,
	errorChannel chan<- storageError,
) {
	defer wg.Done()

	if _, err := storage.Store(ctx, snapshot); err != nil {
		errorChannel <- storageError{storage: storage.GetStorageProviderName(), err: err}
	}
}

// Refresh fetches rates for targets and retains them in every storage.
// A storage that fails to save is only logged, the rates are still returned.
func (s RefreshService) Refresh(ctx context.Context, base currency.Code, targets []currency.Code) (currency.Snapshot, error) {
	var wg sync.WaitGroup

	snapshot := currency.Snapshot{
		Base:      base,
		Rates:     currency.Rates{},
		Provider:  s.Provider,
		FetchedAt: time.Now().UTC(),
	}

	if len(targets) == 0 {
		return snapshot, nil
	}

	fetched, err := s.Fetcher.Rates(ctx, base, targets)
	if err != nil {
		return snapshot, err
	}

	snapshot.Rates = fetched.Clone()

	errorChannel := make(chan storageError, len(s.Storage))

	wg.Add(len(s.Storage))
	for _, storage := range s.Storage {
		go saveToStorage(ctx, &wg, snapshot, storage, errorChannel)
	}

	wg.Wait()
	close(errorChannel)

	for e := range errorChannel {
		s.logger().Log("msg", "retaining snapshot failed", "storage", e.storage, "base", base, "err", e.err)
	}

	return snapshot, nil
}

// Latest returns the snapshot retained for base by the first storage that has one.
func (s RefreshService) Latest(ctx context.Context, base currency.Code) (currency.Snapshot, error) {
	snapshot, err := ConversionService{Storages: s.Storage}.latest(ctx, base)
	if err != nil {
		return currency.Snapshot{}, err
	}

	return snapshot.Snapshot, nil
}

func (s RefreshService) logger() log.Logger {
	if s.Logger == nil {
		return level.Warn(log.NewNopLogger())
	}

	return level.Warn(s.Logger)
}
