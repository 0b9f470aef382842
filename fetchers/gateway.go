package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	currency "github.com/malusev998/currency-board"
)

type (
	// GatewayFetcher talks to another currency-board server, so the provider
	// credential only has to live on that server.
	GatewayFetcher struct {
		URL string
		requester
	}

	gatewayError struct {
		Error string `json:"error"`
	}

	gatewayCurrencies struct {
		Currencies []currency.Currency `json:"currencies"`
	}

	gatewayRates struct {
		Base  currency.Code  `json:"base"`
		Rates currency.Rates `json:"rates"`
	}
)

func (g GatewayFetcher) get(ctx context.Context, endpoint string, v interface{}) error {
	req, err := getData(ctx, g.URL+endpoint)
	if err != nil {
		return err
	}

	res, err := g.send(ctx, req)
	if err != nil {
		return err
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		statusErr := handleHTTPStatusCodeError(res)

		var payload gatewayError
		if json.NewDecoder(res.Body).Decode(&payload) == nil && payload.Error != "" {
			return fmt.Errorf("%w: %s", statusErr, payload.Error)
		}

		return statusErr
	}

	return json.NewDecoder(res.Body).Decode(v)
}

func (g GatewayFetcher) Currencies(ctx context.Context) ([]currency.Currency, error) {
	var data gatewayCurrencies

	if err := g.get(ctx, "/currencies", &data); err != nil {
		return nil, err
	}

	return data.Currencies, nil
}

func (g GatewayFetcher) Rates(ctx context.Context, base currency.Code, targets []currency.Code) (currency.Rates, error) {
	targets = uniqueTargets(base, targets)

	if len(targets) == 0 {
		return currency.Rates{}, nil
	}

	q := url.Values{}
	q.Add("base", base.String())
	q.Add("targets", currency.JoinCodes(targets))

	var data gatewayRates

	if err := g.get(ctx, "/rates?"+q.Encode(), &data); err != nil {
		return nil, noRates([]error{err})
	}

	if data.Base != "" && data.Base != base {
		return nil, fmt.Errorf("%w: gateway answered for %s instead of %s", ErrUnknown, data.Base, base)
	}

	result := data.Rates.Clone()

	if len(result) == 0 {
		return nil, noRates(nil)
	}

	return result, nil
}
