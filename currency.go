package currency

import "context"

type (
	// Fetcher is the gateway to an exchange-rate provider.
	Fetcher interface {
		// Currencies returns the catalog of currencies the provider supports.
		Currencies(ctx context.Context) ([]Currency, error)

		// Rates returns one rate per target, quoted as "1 base = N target".
		// Targets the provider failed to quote are omitted from the result.
		Rates(ctx context.Context, base Code, targets []Code) (Rates, error)
	}
)
