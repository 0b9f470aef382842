package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	currency "github.com/malusev998/currency-board"
)

func currencies(config *Config) *cobra.Command {
	return &cobra.Command{
		Use:     "currencies [QUERY]",
		Short:   "List the currency catalog, optionally filtered by code or name",
		Example: "currency-board currencies dollar",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := config.App()
			if err != nil {
				return err
			}

			var list []currency.Currency

			if len(args) == 1 {
				list = app.Catalog.Search(args[0])
			} else {
				list = app.Catalog.All()
			}

			table := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			if app.Catalog.Fallback() {
				fmt.Fprintln(table, "provider currencies unavailable, showing built-in list")
			}

			for _, cur := range list {
				fmt.Fprintf(table, "%s\t%s\t%s\t%s\n", cur.Flag, cur.Code, cur.Symbol, cur.Name)
			}

			if len(list) == 0 && len(args) == 1 {
				fmt.Fprintf(table, "no currency matches %q\n", strings.TrimSpace(args[0]))
			}

			return table.Flush()
		},
	}
}
