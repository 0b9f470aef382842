package fetchers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	currency "github.com/malusev998/currency-board"
)

const (
	WiseURL             = "https://api.wise.com"
	FreeConvFetchURL    = "https://free.currconv.com/api/v7/convert"
	ExchangeRatesAPIURL = "https://api.exchangeratesapi.io/latest"

	DefaultTimeout        = 5 * time.Second
	maxConcurrentRequests = 4
)

type (
	BaseConfig struct {
		URL     string
		Timeout time.Duration
		// RequestsPerSecond limits calls to the upstream API, zero disables it.
		RequestsPerSecond float64
	}

	requester struct {
		client  *http.Client
		limiter *rate.Limiter
	}

	errorFreeConvResponse struct {
		Status int    `json:"status"`
		Error  string `json:"error"`
	}

	exchangeRateAPIResponse struct {
		Base  string             `json:"base,omitempty"`
		Rates map[string]float64 `json:"rates,omitempty"`
		Date  string             `json:"date,omitempty"`
	}
)

var (
	ErrUnAuthorized      = fmt.Errorf("unauthorized, API key is not provided: %w", currency.ErrMissingCredential)
	ErrNotEnoughRequests = errors.New("not enough requests per hour")
	ErrClient            = errors.New("client error")
	ErrServer            = errors.New("server error")
	ErrUnknown           = errors.New("unknown error")
	ErrAPILimitReached   = errors.New("API limit reached")
)

func newRequester(config BaseConfig) requester {
	timeout := config.Timeout

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	r := requester{
		client: &http.Client{Timeout: timeout},
	}

	if config.RequestsPerSecond > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), maxConcurrentRequests)
	}

	return r
}

// send waits for the limiter and issues the request. A zero requester uses
// the default client without limits.
func (r requester) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	client := r.client
	if client == nil {
		client = http.DefaultClient
	}

	return client.Do(req)
}

func (r requester) do(ctx context.Context, req *http.Request, v interface{}) error {
	res, err := r.send(ctx, req)
	if err != nil {
		return err
	}

	defer res.Body.Close()

	if err := handleHTTPStatusCodeError(res); err != nil {
		return err
	}

	if err := json.NewDecoder(res.Body).Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("decoding json: %w", err)
	}

	return nil
}

func handleHTTPStatusCodeError(res *http.Response) error {
	switch {
	case res.StatusCode == http.StatusOK:
		return nil
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return ErrUnAuthorized
	case res.StatusCode == http.StatusTooManyRequests:
		return ErrAPILimitReached
	case res.StatusCode >= http.StatusBadRequest && res.StatusCode < http.StatusInternalServerError:
		return ErrClient
	case res.StatusCode >= http.StatusInternalServerError:
		return ErrServer
	}

	return ErrUnknown
}

func getData(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return nil, err
	}

	req.Header.Add("Accept", "application/json")

	return req, nil
}

// uniqueTargets drops the base and duplicates, the base never needs a quote.
func uniqueTargets(base currency.Code, targets []currency.Code) []currency.Code {
	seen := make(map[currency.Code]struct{}, len(targets))
	result := make([]currency.Code, 0, len(targets))

	for _, t := range targets {
		if _, ok := seen[t]; ok || t == base {
			continue
		}

		seen[t] = struct{}{}
		result = append(result, t)
	}

	return result
}

func noRates(errs []error) error {
	if len(errs) == 0 {
		return currency.ErrNoRates
	}

	return fmt.Errorf("%w: %w", currency.ErrNoRates, errors.Join(errs...))
}
