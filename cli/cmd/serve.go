package cmd

import (
	"github.com/spf13/cobra"

	"github.com/malusev998/currency-board/server"
)

func serve(config *Config) *cobra.Command {
	var addr string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the rate gateway and websocket boards",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := config.App()
			if err != nil {
				return err
			}

			if addr == "" {
				addr = app.Addr
			}

			return server.New(app.Fetcher, app.Catalog, app.Board, app.Logger, config.debug).
				Run(cmd.Context(), addr)
		},
	}

	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides http.addr")

	return serveCmd
}
