package services_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	currency "github.com/malusev998/currency-board"
	"github.com/malusev998/currency-board/services"
)

var boardRates = currency.Rates{"HKD": 1.08, "USD": 0.14}

func TestConvert_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		target, focal currency.Code
		amount        string
		rates         currency.Rates
		expected      services.Display
	}{
		{"Focal is base, HKD", "HKD", "CNY", "100", boardRates, services.Display{Text: "108.00"}},
		{"Focal is base, USD", "USD", "CNY", "100", boardRates, services.Display{Text: "14.00"}},
		{"Identity", "CNY", "CNY", "100", boardRates, services.Display{Text: "100.00"}},
		{"Target is base", "CNY", "HKD", "108", boardRates, services.Display{Text: "100.00"}},
		{"Through base", "USD", "HKD", "108", boardRates, services.Display{Text: "14.00"}},
		{"Identity without rates", "HKD", "HKD", "12.345", nil, services.Display{Text: "12.35"}},
		{"Missing target rate", "EUR", "CNY", "100", boardRates, services.Display{Text: services.PendingValue, Pending: true}},
		{"Missing focal rate", "USD", "EUR", "100", boardRates, services.Display{Text: services.PendingValue, Pending: true}},
		{"Empty table", "HKD", "CNY", "100", currency.Rates{}, services.Display{Text: services.PendingValue, Pending: true}},
		{"Zero rate is unknown", "HKD", "CNY", "100", currency.Rates{"HKD": 0}, services.Display{Text: services.PendingValue, Pending: true}},
		{"Empty amount", "HKD", "CNY", "", boardRates, services.Display{Text: "0.00"}},
		{"Not a number", "HKD", "CNY", "abc", boardRates, services.Display{Text: "0.00"}},
		{"Trailing garbage", "HKD", "CNY", "12abc", boardRates, services.Display{Text: "0.00"}},
		{"Negative amount", "HKD", "CNY", "-5", boardRates, services.Display{Text: "0.00"}},
		{"Zero amount", "HKD", "CNY", "0", boardRates, services.Display{Text: "0.00"}},
		{"Infinite amount", "HKD", "CNY", "Inf", boardRates, services.Display{Text: "0.00"}},
		{"Rounds half up", "HKD", "CNY", "1", currency.Rates{"HKD": 1.005}, services.Display{Text: "1.01"}},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			asserts := require.New(t)

			asserts.Equal(test.expected, services.Convert(test.target, test.focal, test.amount, test.rates, "CNY"))
		})
	}
}

func TestConvert_Properties(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	rates := currency.Rates{"HKD": 1.08, "USD": 0.14, "EUR": 0.128, "JPY": 20.9}
	codes := []currency.Code{"CNY", "HKD", "USD", "EUR", "JPY"}

	rateOf := func(code currency.Code) float64 {
		if code == "CNY" {
			return 1
		}

		rate, _ := rates.Get(code)

		return rate
	}

	for _, a := range codes {
		for _, b := range codes {
			forward := services.Convert(b, a, "250", rates, "CNY")
			asserts.False(forward.Pending)

			// Converting there and back lands on the same amount, give or
			// take the rounding of the intermediate value.
			value, ok := services.ParseAmount(forward.Text)
			asserts.True(ok)

			back := services.Convert(a, b, forward.Text, rates, "CNY")
			backValue, _ := services.ParseAmount(back.Text)
			asserts.InDelta(250, backValue, 0.005*rateOf(a)/rateOf(b)+0.01, "%s -> %s -> %s", a, b, a)

			if a == b {
				asserts.Equal("250.00", forward.Text)
			}

			asserts.InDelta(math.Round(250/rateOf(a)*rateOf(b)*100)/100, value, 0.006)
		}
	}
}

func TestExchangeRate(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	asserts.Equal(services.Display{Text: "1.0000"}, services.ExchangeRate("CNY", "CNY", nil))
	asserts.Equal(services.Display{Text: "0.1400"}, services.ExchangeRate("USD", "CNY", boardRates))
	asserts.Equal(services.Display{Text: "1.0800"}, services.ExchangeRate("HKD", "CNY", boardRates))
	asserts.Equal(services.Display{Text: services.PendingRate, Pending: true}, services.ExchangeRate("EUR", "CNY", boardRates))
	asserts.Equal("0.1400", services.ExchangeRate("USD", "CNY", boardRates).String())
}

func TestParseAmount(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	value, ok := services.ParseAmount(" 12.5 ")
	asserts.True(ok)
	asserts.Equal(12.5, value)

	for _, amount := range []string{"", "0", "-1", "NaN", "+Inf", "1,5"} {
		_, ok := services.ParseAmount(amount)
		asserts.False(ok, amount)
	}
}

func TestConversionService_Convert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	snapshot := currency.SnapshotWithID{
		Snapshot: currency.Snapshot{Base: "CNY", Rates: boardRates, FetchedAt: time.Now()},
		ID:       "1",
	}

	t.Run("Uses retained snapshot", func(t *testing.T) {
		asserts := require.New(t)
		storage := &MockStorage{}
		storage.On("Latest", ctx, currency.Code("CNY")).Return(snapshot, nil).Once()

		display, err := services.ConversionService{Storages: []currency.Storage{storage}}.Convert(ctx, "CNY", "HKD", "100")

		asserts.NoError(err)
		asserts.Equal("108.00", display.Text)
		storage.AssertExpectations(t)
	})

	t.Run("First storage with a snapshot wins", func(t *testing.T) {
		asserts := require.New(t)
		missing := &MockStorage{name: "missing"}
		missing.On("Latest", ctx, currency.Code("CNY")).Return(currency.SnapshotWithID{}, currency.ErrSnapshotNotFound)
		found := &MockStorage{name: "found"}
		found.On("Latest", ctx, currency.Code("CNY")).Return(snapshot, nil)

		display, err := services.ConversionService{Storages: []currency.Storage{missing, found}}.Convert(ctx, "CNY", "USD", "100")

		asserts.NoError(err)
		asserts.Equal("14.00", display.Text)
	})

	t.Run("Falls back to fetcher", func(t *testing.T) {
		asserts := require.New(t)
		storage := &MockStorage{}
		storage.On("Latest", ctx, currency.Code("CNY")).Return(snapshot, nil)
		fetcher := &MockFetcher{}
		fetcher.On("Rates", ctx, currency.Code("CNY"), []currency.Code{"EUR"}).Return(currency.Rates{"EUR": 0.125}, nil).Once()

		display, err := services.ConversionService{Fetcher: fetcher, Storages: []currency.Storage{storage}}.Convert(ctx, "CNY", "EUR", "8")

		asserts.NoError(err)
		asserts.Equal("1.00", display.Text)
		fetcher.AssertExpectations(t)
	})

	t.Run("Nothing known", func(t *testing.T) {
		asserts := require.New(t)

		_, err := services.ConversionService{}.Convert(ctx, "CNY", "EUR", "8")

		asserts.True(errors.Is(err, services.ErrCurrencyNotFound))
	})

	t.Run("Fetcher error", func(t *testing.T) {
		asserts := require.New(t)
		fetcher := &MockFetcher{}
		fetcher.On("Rates", ctx, currency.Code("CNY"), mock.Anything).Return(nil, currency.ErrNoRates)

		_, err := services.ConversionService{Fetcher: fetcher}.Convert(ctx, "CNY", "EUR", "8")

		asserts.True(errors.Is(err, currency.ErrNoRates))
	})

	t.Run("Same currency needs no rates", func(t *testing.T) {
		asserts := require.New(t)

		display, err := services.ConversionService{}.Convert(ctx, "USD", "USD", "3")

		asserts.NoError(err)
		asserts.Equal("3.00", display.Text)
	})
}
