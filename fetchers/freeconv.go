package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	currency "github.com/malusev998/currency-board"
)

type (
	FreeCurrConvFetcher struct {
		URL           string
		APIKey        string
		MaxPerHour    int
		MaxPerRequest int
		requester
	}

	freeConvCurrenciesResponse struct {
		Results map[string]struct {
			ID     string `json:"id"`
			Name   string `json:"currencyName"`
			Symbol string `json:"currencySymbol"`
		} `json:"results"`
	}

	ratesChannel chan map[string]float64
)

// PreparePairs formats targets as the BASE_TARGET pairs the API expects.
func PreparePairs(base currency.Code, targets []currency.Code) []string {
	pairs := make([]string, 0, len(targets))

	for _, t := range targets {
		pairs = append(pairs, base.String()+"_"+t.String())
	}

	return pairs
}

func (f FreeCurrConvFetcher) endpoint() string {
	if f.URL == "" {
		return FreeConvFetchURL
	}

	return f.URL
}

func (f FreeCurrConvFetcher) handleError(res *http.Response) error {
	if res.StatusCode == http.StatusBadRequest {
		var errorRes errorFreeConvResponse

		body, _ := io.ReadAll(res.Body)
		_ = json.Unmarshal(body, &errorRes)

		if strings.Contains(errorRes.Error, "required") {
			return ErrUnAuthorized
		}

		if strings.Contains(errorRes.Error, "API limit reached") {
			return ErrAPILimitReached
		}
	}

	return handleHTTPStatusCodeError(res)
}

func (f FreeCurrConvFetcher) get(ctx context.Context, endpoint string, q url.Values, v interface{}) error {
	if f.APIKey == "" {
		return ErrUnAuthorized
	}

	q.Add("apiKey", f.APIKey)

	req, err := getData(ctx, endpoint+"?"+q.Encode())
	if err != nil {
		return err
	}

	res, err := f.send(ctx, req)
	if err != nil {
		return err
	}

	defer res.Body.Close()

	if err := f.handleError(res); err != nil {
		return err
	}

	return json.NewDecoder(res.Body).Decode(v)
}

func (f FreeCurrConvFetcher) fetchPairs(
	ctx context.Context,
	wg *sync.WaitGroup,
	pairs []string,
	channel ratesChannel,
	errorChannel chan<- error,
) {
	defer wg.Done()

	q := url.Values{}
	q.Add("q", strings.Join(pairs, ","))
	q.Add("compact", "ultra")

	data := map[string]float64{}

	if err := f.get(ctx, f.endpoint(), q, &data); err != nil {
		errorChannel <- err
		return
	}

	channel <- data
}

func (f FreeCurrConvFetcher) Currencies(ctx context.Context) ([]currency.Currency, error) {
	endpoint := strings.TrimSuffix(f.endpoint(), "/convert") + "/currencies"

	var data freeConvCurrenciesResponse

	if err := f.get(ctx, endpoint, url.Values{}, &data); err != nil {
		return nil, err
	}

	currencies := make([]currency.Currency, 0, len(data.Results))

	for id, c := range data.Results {
		code, err := currency.Normalize(id)
		if err != nil {
			continue
		}

		currencies = append(currencies, currency.Currency{Code: code, Name: c.Name, Symbol: c.Symbol})
	}

	sort.Slice(currencies, func(i, j int) bool {
		return currencies[i].Code < currencies[j].Code
	})

	return currencies, nil
}

// Rates splits the pairs into chunks of MaxPerRequest and fetches them
// concurrently. A failed chunk only drops its own targets.
func (f FreeCurrConvFetcher) Rates(ctx context.Context, base currency.Code, targets []currency.Code) (currency.Rates, error) {
	targets = uniqueTargets(base, targets)
	result := make(currency.Rates, len(targets))

	if len(targets) == 0 {
		return result, nil
	}

	perRequest := f.MaxPerRequest
	if perRequest <= 0 {
		perRequest = len(targets)
	}

	pairs := PreparePairs(base, targets)
	numberOfRequests := (len(pairs) + perRequest - 1) / perRequest

	if f.MaxPerHour > 0 && numberOfRequests > f.MaxPerHour {
		return nil, ErrNotEnoughRequests
	}

	var wg sync.WaitGroup

	channel := make(ratesChannel, numberOfRequests)
	errorChannel := make(chan error, numberOfRequests)

	for idx := 0; idx < len(pairs); idx += perRequest {
		wg.Add(1)

		go f.fetchPairs(ctx, &wg, pairs[idx:min(idx+perRequest, len(pairs))], channel, errorChannel)
	}

	wg.Wait()
	close(channel)
	close(errorChannel)

	for data := range channel {
		for pair, rate := range data {
			parts := strings.SplitN(pair, "_", 2)
			if len(parts) != 2 || parts[0] != base.String() {
				continue
			}

			result.Set(currency.Code(parts[1]), rate)
		}
	}

	if len(result) == 0 {
		errs := make([]error, 0, numberOfRequests)

		for err := range errorChannel {
			errs = append(errs, err)
		}

		return nil, fmt.Errorf("%s: %w", base, noRates(errs))
	}

	return result, nil
}
