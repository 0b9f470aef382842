package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	currency "github.com/malusev998/currency-board"
	"github.com/malusev998/currency-board/services"
)

func convert(config *Config) *cobra.Command {
	return &cobra.Command{
		Use:     "convert AMOUNT FROM TO",
		Short:   "Convert an amount between two currencies",
		Example: "currency-board convert 100 CNY USD",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := services.ParseAmount(args[0]); !ok {
				return fmt.Errorf("amount %q must be a number greater than zero", args[0])
			}

			from, err := currency.Normalize(args[1])
			if err != nil {
				return err
			}

			to, err := currency.Normalize(args[2])
			if err != nil {
				return err
			}

			app, err := config.App()
			if err != nil {
				return err
			}

			service := services.ConversionService{
				Fetcher:  app.Fetcher,
				Storages: app.Storages,
			}

			display, err := service.Convert(cmd.Context(), from, to, args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s %s\n", args[0], from, display, to)

			return err
		},
	}
}
