package fetchers

import (
	"context"
	"net/url"
	"sort"

	currency "github.com/malusev998/currency-board"
)

type (
	ExchangeRatesAPIFetcher struct {
		URL    string
		APIKey string
		requester
	}
)

func (e ExchangeRatesAPIFetcher) fetch(ctx context.Context, q url.Values) (exchangeRateAPIResponse, error) {
	endpoint := e.URL

	if endpoint == "" {
		endpoint = ExchangeRatesAPIURL
	}

	if e.APIKey != "" {
		q.Add("access_key", e.APIKey)
	}

	var data exchangeRateAPIResponse

	req, err := getData(ctx, endpoint+"?"+q.Encode())
	if err != nil {
		return data, err
	}

	err = e.do(ctx, req, &data)

	return data, err
}

// Currencies lists the base of the latest rates together with every quoted code.
func (e ExchangeRatesAPIFetcher) Currencies(ctx context.Context) ([]currency.Currency, error) {
	data, err := e.fetch(ctx, url.Values{})
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(data.Rates)+1)

	for code := range data.Rates {
		if code != data.Base {
			codes = append(codes, code)
		}
	}

	sort.Strings(codes)

	if data.Base != "" {
		codes = append([]string{data.Base}, codes...)
	}

	currencies := make([]currency.Currency, 0, len(codes))

	for _, c := range codes {
		code, err := currency.Normalize(c)
		if err != nil {
			continue
		}

		currencies = append(currencies, currency.Currency{Code: code})
	}

	return currencies, nil
}

// Rates quotes every target with a single batched request.
func (e ExchangeRatesAPIFetcher) Rates(ctx context.Context, base currency.Code, targets []currency.Code) (currency.Rates, error) {
	targets = uniqueTargets(base, targets)
	result := make(currency.Rates, len(targets))

	if len(targets) == 0 {
		return result, nil
	}

	q := url.Values{}
	q.Add("base", base.String())
	q.Add("symbols", currency.JoinCodes(targets))

	data, err := e.fetch(ctx, q)
	if err != nil {
		return nil, noRates([]error{err})
	}

	for _, target := range targets {
		if rate, ok := data.Rates[target.String()]; ok {
			result.Set(target, rate)
		}
	}

	if len(result) == 0 {
		return nil, noRates(nil)
	}

	return result, nil
}
