package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	currency "github.com/malusev998/currency-board"
	"github.com/malusev998/currency-board/services"
)

func printSnapshot(w io.Writer, snapshot currency.Snapshot, targets []currency.Code) error {
	if _, err := fmt.Fprintf(w, "%s rates from %s at %s\n", snapshot.Base, snapshot.Provider, snapshot.FetchedAt.Format(time.RFC3339)); err != nil {
		return err
	}

	for _, target := range targets {
		rate := services.ExchangeRate(target, snapshot.Base, snapshot.Rates)

		if _, err := fmt.Fprintf(w, "1 %s = %s %s\n", snapshot.Base, rate, target); err != nil {
			return err
		}
	}

	return nil
}

func rates(config *Config) *cobra.Command {
	var (
		base       string
		targets    string
		standalone bool
		after      time.Duration
	)

	ratesCmd := &cobra.Command{
		Use:   "rates",
		Short: "Fetch rates for a base currency and retain them in the configured storages",
		RunE: func(cmd *cobra.Command, args []string) error {
			baseCode, err := currency.Normalize(base)
			if err != nil {
				return err
			}

			targetCodes, err := currency.ParseCodes(targets)
			if err != nil {
				return err
			}

			app, err := config.App()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			fetch := func() error {
				snapshot, err := app.Refresher.Refresh(ctx, baseCode, targetCodes)
				if err != nil {
					return err
				}

				return printSnapshot(cmd.OutOrStdout(), snapshot, targetCodes)
			}

			if !standalone {
				return fetch()
			}

			for {
				if err := fetch(); err != nil {
					level.Error(app.Logger).Log("msg", "error while fetching rates", "base", baseCode, "err", err)
				}

				select {
				case <-time.After(after):
				case <-ctx.Done():
					return nil
				}
			}
		},
	}

	ratesCmd.Flags().StringVar(&base, "base", "CNY", "Base currency")
	ratesCmd.Flags().StringVar(&targets, "targets", "HKD,USD", "Comma separated target currencies")
	ratesCmd.Flags().BoolVarP(&standalone, "standalone", "s", false, "Keep fetching until interrupted")
	ratesCmd.Flags().DurationVarP(&after, "after", "a", 30*time.Second, "Time between fetches in standalone mode")

	return ratesCmd
}
