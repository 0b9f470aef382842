package services

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	currency "github.com/malusev998/currency-board"
)

const (
	PendingValue = "loading..."
	PendingRate  = "..."

	zeroValue    = "0.00"
	valuePlaces  = 2
	ratePlaces   = 4
	identityRate = "1.0000"
)

var (
	ErrCurrencyNotFound  = errors.New("rate for the currency is not found in storage")
	ErrNoStorageProvided = errors.New("no storage provided")
	ErrTimeRanOut        = errors.New("time has run out")
)

type (
	// Display is a formatted value or a pending marker when a rate it
	// depends on is not known yet.
	Display struct {
		Text    string `json:"text"`
		Pending bool   `json:"pending"`
	}

	// ConversionService converts single amounts outside of a board, using the
	// last retained snapshot first and the fetcher when nothing was stored.
	ConversionService struct {
		Fetcher  currency.Fetcher
		Storages []currency.Storage
	}

	latestSnapshot struct {
		snapshot currency.SnapshotWithID
		error    error
	}
)

func (d Display) String() string {
	return d.Text
}

func pending(text string) Display {
	return Display{Text: text, Pending: true}
}

func format(value float64, places int32) string {
	return decimal.NewFromFloat(value).StringFixed(places)
}

// ParseAmount accepts finite numbers greater than zero.
func ParseAmount(amount string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)

	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0, false
	}

	return value, true
}

// Convert shows what amount of the focal currency is worth in target. Every
// rate is quoted against base, so a conversion between two non-base
// currencies goes through the base.
func Convert(target, focal currency.Code, amount string, rates currency.Rates, base currency.Code) Display {
	value, ok := ParseAmount(amount)
	if !ok {
		return Display{Text: zeroValue}
	}

	if target == focal {
		return Display{Text: format(value, valuePlaces)}
	}

	var result float64

	switch {
	case focal == base:
		rate, ok := rates.Get(target)
		if !ok {
			return pending(PendingValue)
		}

		result = value * rate
	case target == base:
		rate, ok := rates.Get(focal)
		if !ok {
			return pending(PendingValue)
		}

		result = value / rate
	default:
		focalRate, okFocal := rates.Get(focal)
		targetRate, okTarget := rates.Get(target)

		if !okFocal || !okTarget {
			return pending(PendingValue)
		}

		result = value / focalRate * targetRate
	}

	if math.IsInf(result, 0) || math.IsNaN(result) {
		return pending(PendingValue)
	}

	return Display{Text: format(result, valuePlaces)}
}

// ExchangeRate formats "1 base = N code".
func ExchangeRate(code, base currency.Code, rates currency.Rates) Display {
	if code == base {
		return Display{Text: identityRate}
	}

	rate, ok := rates.Get(code)
	if !ok {
		return pending(PendingRate)
	}

	return Display{Text: format(rate, ratePlaces)}
}

func (c ConversionService) latest(ctx context.Context, base currency.Code) (currency.SnapshotWithID, error) {
	if len(c.Storages) == 0 {
		return currency.SnapshotWithID{}, ErrNoStorageProvided
	}

	// Optimization when there is only one storage provider
	if len(c.Storages) == 1 {
		return c.Storages[0].Latest(ctx, base)
	}

	// The first storage that has the snapshot wins
	snapshots := make(chan latestSnapshot, len(c.Storages))

	for _, storage := range c.Storages {
		go func(storage currency.Storage) {
			snapshot, err := storage.Latest(ctx, base)
			snapshots <- latestSnapshot{
				snapshot: snapshot,
				error:    err,
			}
		}(storage)
	}

	var err error

	for range c.Storages {
		select {
		case <-ctx.Done():
			return currency.SnapshotWithID{}, ErrTimeRanOut
		case data := <-snapshots:
			if data.error == nil {
				return data.snapshot, nil
			}

			err = data.error
		}
	}

	return currency.SnapshotWithID{}, err
}

// Convert converts amount of from into to.
func (c ConversionService) Convert(ctx context.Context, from, to currency.Code, amount string) (Display, error) {
	if from == to {
		return Convert(to, from, amount, nil, from), nil
	}

	rates := currency.Rates{}

	if snapshot, err := c.latest(ctx, from); err == nil {
		rates = snapshot.Rates
	} else if errors.Is(err, ErrTimeRanOut) {
		return Display{}, err
	}

	if _, ok := rates.Get(to); !ok {
		if c.Fetcher == nil {
			return Display{}, ErrCurrencyNotFound
		}

		fetched, err := c.Fetcher.Rates(ctx, from, []currency.Code{to})
		if err != nil {
			return Display{}, err
		}

		rates = fetched
	}

	if _, ok := rates.Get(to); !ok {
		return Display{}, ErrCurrencyNotFound
	}

	return Convert(to, from, amount, rates, from), nil
}
