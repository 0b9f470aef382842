package fetchers

import (
	currency "github.com/malusev998/currency-board"
)

type (
	WiseConfig struct {
		BaseConfig
		APIKey string
	}
	FreeConvServiceConfig struct {
		BaseConfig
		APIKey             string
		MaxPerHourRequests int
		MaxPerRequest      int
	}
	ExchangeRatesAPIConfig struct {
		BaseConfig
		APIKey string
	}
	GatewayConfig struct {
		BaseConfig
	}
)

func NewCurrencyFetcher(provider currency.Provider, config interface{}) currency.Fetcher {
	switch provider {
	case currency.WiseProvider:
		c := config.(WiseConfig)

		return WiseFetcher{
			URL:       c.URL,
			APIKey:    c.APIKey,
			requester: newRequester(c.BaseConfig),
		}
	case currency.FreeConvProvider:
		c := config.(FreeConvServiceConfig)

		return FreeCurrConvFetcher{
			URL:           c.URL,
			APIKey:        c.APIKey,
			MaxPerHour:    c.MaxPerHourRequests,
			MaxPerRequest: c.MaxPerRequest,
			requester:     newRequester(c.BaseConfig),
		}
	case currency.ExchangeRatesAPIProvider:
		c := config.(ExchangeRatesAPIConfig)

		return ExchangeRatesAPIFetcher{
			URL:       c.URL,
			APIKey:    c.APIKey,
			requester: newRequester(c.BaseConfig),
		}
	case currency.GatewayProvider:
		c := config.(GatewayConfig)

		return GatewayFetcher{
			URL:       c.URL,
			requester: newRequester(c.BaseConfig),
		}
	}

	return nil
}
