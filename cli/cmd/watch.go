package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	currency "github.com/malusev998/currency-board"
	"github.com/malusev998/currency-board/services"
	"github.com/malusev998/currency-board/session"
)

func renderBoard(w io.Writer, board services.Board) error {
	table := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	updated := "never"
	if board.UpdatedAt != nil {
		updated = board.UpdatedAt.Local().Format(time.TimeOnly)
	}

	fmt.Fprintf(table, "Base %s\tAmount %s %s\tUpdated %s\n", board.Base, board.Focal.Amount, board.Focal.Currency, updated)

	if board.Banner != "" {
		fmt.Fprintln(table, board.Banner)
	}

	for _, row := range board.Rows {
		marker := " "
		if row.Focal {
			marker = "*"
		}

		fmt.Fprintf(table, "%s %s %s\t%s\t%s\t1 %s = %s %s\n",
			marker,
			row.Currency.Flag,
			row.Currency.Code,
			row.Currency.Name,
			row.Value,
			board.Base,
			row.Rate,
			row.Currency.Code,
		)
	}

	fmt.Fprintln(table)

	return table.Flush()
}

func watch(config *Config) *cobra.Command {
	var (
		codes  string
		focal  string
		amount string
		count  int
	)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Print a live board every time it changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := config.App()
			if err != nil {
				return err
			}

			board := app.Board

			if codes != "" {
				if board.Codes, err = currency.ParseCodes(codes); err != nil {
					return err
				}

				for _, code := range board.Codes {
					if app.Catalog != nil && !app.Catalog.Contains(code) {
						return fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
					}
				}
			}

			if focal != "" {
				if board.Focal, err = currency.Normalize(focal); err != nil {
					return err
				}
			}

			if amount != "" {
				board.Amount = amount
			}

			s, err := session.New(cmd.Context(), board)
			if err != nil {
				return err
			}

			defer s.Close()

			updates, unsubscribe := s.Subscribe()
			defer unsubscribe()

			printed, settled := 0, 0

			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case <-s.Done():
					return nil
				case b, ok := <-updates:
					if !ok {
						return nil
					}

					// Intermediate loading states are skipped unless nothing was shown yet
					if b.Loading && printed > 0 {
						continue
					}

					if err := renderBoard(cmd.OutOrStdout(), b); err != nil {
						return err
					}

					printed++

					if !b.Loading {
						settled++
					}

					if count > 0 && settled >= count {
						return nil
					}
				}
			}
		},
	}

	watchCmd.Flags().StringVar(&codes, "currencies", "", "Comma separated currencies, the first one is the base")
	watchCmd.Flags().StringVar(&focal, "focal", "", "Currency the amount is entered in")
	watchCmd.Flags().StringVar(&amount, "amount", "", "Amount in the focal currency")
	watchCmd.Flags().IntVar(&count, "count", 0, "Stop after this many boards with settled rates, 0 runs until interrupted")

	return watchCmd
}
