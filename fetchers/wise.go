package fetchers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"

	currency "github.com/malusev998/currency-board"
)

type (
	WiseFetcher struct {
		URL    string
		APIKey string
		requester
	}

	wiseCurrency struct {
		Code     string `json:"code"`
		Currency string `json:"currency"`
		Name     string `json:"name"`
		Symbol   string `json:"symbol"`
	}

	wiseRate struct {
		Rate   float64 `json:"rate"`
		Source string  `json:"source"`
		Target string  `json:"target"`
		Time   string  `json:"time"`
	}

	// wiseRates accepts both shapes the rates endpoint answers with:
	// a list of quotes or a single quote object.
	wiseRates []wiseRate
)

func (w *wiseRates) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '[' {
		var list []wiseRate
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}

		*w = list

		return nil
	}

	var single wiseRate
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}

	*w = wiseRates{single}

	return nil
}

func (w WiseFetcher) url(path string) string {
	base := w.URL

	if base == "" {
		base = WiseURL
	}

	return base + path
}

func (w WiseFetcher) get(ctx context.Context, endpoint string, v interface{}) error {
	if w.APIKey == "" {
		return ErrUnAuthorized
	}

	req, err := getData(ctx, endpoint)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+w.APIKey)

	return w.do(ctx, req, v)
}

func (w WiseFetcher) Currencies(ctx context.Context) ([]currency.Currency, error) {
	var data []wiseCurrency

	if err := w.get(ctx, w.url("/v1/currencies"), &data); err != nil {
		return nil, err
	}

	currencies := make([]currency.Currency, 0, len(data))

	for _, c := range data {
		raw := c.Code
		if raw == "" {
			raw = c.Currency
		}

		code, err := currency.Normalize(raw)
		if err != nil {
			continue
		}

		currencies = append(currencies, currency.Currency{
			Code:   code,
			Name:   c.Name,
			Symbol: c.Symbol,
		})
	}

	return currencies, nil
}

func (w WiseFetcher) rate(ctx context.Context, base, target currency.Code) (float64, error) {
	q := url.Values{}
	q.Add("source", base.String())
	q.Add("target", target.String())

	var data wiseRates

	if err := w.get(ctx, w.url("/v1/rates?"+q.Encode()), &data); err != nil {
		return 0, err
	}

	if len(data) == 0 || !currency.Valid(data[0].Rate) {
		return 0, fmt.Errorf("%w: no rate for %s/%s", ErrUnknown, base, target)
	}

	return data[0].Rate, nil
}

// Rates asks for every target separately. A failed target is left out of the
// result; only when all of them fail the call returns an error.
func (w WiseFetcher) Rates(ctx context.Context, base currency.Code, targets []currency.Code) (currency.Rates, error) {
	if w.APIKey == "" {
		return nil, ErrUnAuthorized
	}

	targets = uniqueTargets(base, targets)
	result := make(currency.Rates, len(targets))

	if len(targets) == 0 {
		return result, nil
	}

	var (
		g    errgroup.Group
		lock sync.Mutex
		errs []error
	)

	g.SetLimit(maxConcurrentRequests)

	for _, target := range targets {
		target := target

		g.Go(func() error {
			rate, err := w.rate(ctx, base, target)

			lock.Lock()
			defer lock.Unlock()

			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", target, err))
				return nil
			}

			result.Set(target, rate)

			return nil
		})
	}

	_ = g.Wait()

	if len(result) == 0 {
		return nil, noRates(errs)
	}

	return result, nil
}
