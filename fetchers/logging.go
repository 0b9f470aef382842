package fetchers

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	currency "github.com/malusev998/currency-board"
)

type loggingFetcher struct {
	logger log.Logger
	next   currency.Fetcher
}

// NewLoggingFetcher logs every upstream call with its duration and outcome.
func NewLoggingFetcher(logger log.Logger, next currency.Fetcher) currency.Fetcher {
	return &loggingFetcher{
		logger: logger,
		next:   next,
	}
}

func (l *loggingFetcher) Currencies(ctx context.Context) (currencies []currency.Currency, err error) {
	defer func(begin time.Time) {
		logger := level.Debug(l.logger)
		if err != nil {
			logger = level.Error(l.logger)
		}

		logger.Log(
			"method", "Currencies",
			"currencies", len(currencies),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())

	return l.next.Currencies(ctx)
}

func (l *loggingFetcher) Rates(ctx context.Context, base currency.Code, targets []currency.Code) (rates currency.Rates, err error) {
	defer func(begin time.Time) {
		logger := level.Debug(l.logger)
		if err != nil {
			logger = level.Warn(l.logger)
		}

		logger.Log(
			"method", "Rates",
			"base", base,
			"targets", currency.JoinCodes(targets),
			"quoted", len(rates),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())

	return l.next.Rates(ctx, base, targets)
}
