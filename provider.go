package currency

import (
	"fmt"
	"strings"
)

type Provider string

const (
	WiseProvider             Provider = "Wise"
	FreeConvProvider         Provider = "FreeCurrConversion"
	ExchangeRatesAPIProvider Provider = "ExchangeRatesAPI"
	GatewayProvider          Provider = "Gateway"
	EmptyProvider            Provider = ""
)

func ConvertToProvidersFromStringSlice(strings []string) ([]Provider, error) {
	providers := make([]Provider, 0, len(strings))

	for _, str := range strings {
		provider, err := ConvertToProviderFromString(str)
		if err != nil {
			return nil, err
		}

		providers = append(providers, provider)
	}

	return providers, nil
}

func ConvertToProviderFromString(str string) (Provider, error) {
	switch strings.ToLower(str) {
	case "wise":
		return WiseProvider, nil
	case "freecurrconversion":
		return FreeConvProvider, nil
	case "exchangeratesapi":
		return ExchangeRatesAPIProvider, nil
	case "gateway":
		return GatewayProvider, nil
	}

	return "", fmt.Errorf("value %s is not valid Provider", str)
}

func (p *Provider) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}

	provider, err := ConvertToProviderFromString(str)

	if err != nil {
		return err
	}

	*p = provider

	return nil
}

func (p Provider) MarshalYAML() (interface{}, error) {
	return string(p), nil
}
