package currency_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/malusev998/currency-board"
)

func TestConvertToProvidersFromStringSlice(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	values := []struct {
		value    []string
		expected interface{}
		err      error
	}{
		{[]string{"freecurrconversion", "exchangeratesapi"}, []currency.Provider{currency.FreeConvProvider, currency.ExchangeRatesAPIProvider}, nil},
		{[]string{"Wise", "gateway"}, []currency.Provider{currency.WiseProvider, currency.GatewayProvider}, nil},
		{[]string{"not-valid-value"}, []currency.Provider(nil), errors.New("value not-valid-value is not valid Provider")},
	}
	for _, value := range values {
		providers, err := currency.ConvertToProvidersFromStringSlice(value.value)
		assert.Equal(value.expected, providers)
		assert.Equal(value.err, err)
	}
}

func TestConvertToProviderFromString(t *testing.T) {
	t.Parallel()
	assert := require.New(t)
	values := []struct {
		value    string
		expected interface{}
		err      error
	}{
		{"wise", currency.WiseProvider, nil},
		{"freecurrconversion", currency.FreeConvProvider, nil},
		{"exchangeratesapi", currency.ExchangeRatesAPIProvider, nil},
		{"", currency.Provider(""), errors.New("value  is not valid Provider")},
		{"not-valid-value", currency.Provider(""), errors.New("value not-valid-value is not valid Provider")},
	}

	for _, value := range values {
		provider, err := currency.ConvertToProviderFromString(value.value)
		assert.Equal(value.expected, provider)
		assert.Equal(value.err, err)
	}
}

func TestProvider_YAML(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	var config struct {
		Provider currency.Provider `yaml:"provider"`
	}

	assert.Nil(yaml.Unmarshal([]byte("provider: wise\n"), &config))
	assert.Equal(currency.WiseProvider, config.Provider)

	out, err := yaml.Marshal(config)
	assert.Nil(err)
	assert.Equal("provider: Wise\n", string(out))

	assert.NotNil(yaml.Unmarshal([]byte("provider: coinbase\n"), &config))
}
