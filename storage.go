package currency

import (
	"context"
	"errors"
)

var ErrSnapshotNotFound = errors.New("no snapshot stored for base currency")

// Storage keeps the last fetched snapshot per base currency.
type Storage interface {
	Store(ctx context.Context, snapshot Snapshot) (SnapshotWithID, error)
	Latest(ctx context.Context, base Code) (SnapshotWithID, error)
	GetStorageProviderName() string
	Migrate() error
	Drop() error
	Close() error
}
