package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-kit/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	currency "github.com/malusev998/currency-board"
	"github.com/malusev998/currency-board/catalog"
	"github.com/malusev998/currency-board/services"
	"github.com/malusev998/currency-board/session"
)

const EnvPrefix = "CURRENCY_BOARD"

var ErrUnknownCurrency = errors.New("currency is not in the catalog")

type (
	// App is everything the commands need, assembled from the configuration.
	App struct {
		Fetcher   currency.Fetcher
		Catalog   *catalog.Catalog
		Refresher services.RefreshService
		Storages  []currency.Storage
		Board     session.Config
		Addr      string
		Logger    log.Logger
	}

	Config struct {
		Ctx   context.Context
		Setup func(ctx context.Context, debug bool) (*App, error)

		debug      bool
		configFile string
		once       sync.Once
		app        *App
		err        error
	}
)

func (c *Config) App() (*App, error) {
	c.once.Do(func() {
		if c.Setup == nil {
			c.err = errors.New("no application setup given")
			return
		}

		c.app, c.err = c.Setup(c.Ctx, c.debug)
	})

	return c.app, c.err
}

func (c *Config) Close() {
	if c.app == nil {
		return
	}

	for _, st := range c.app.Storages {
		_ = st.Close()
	}
}

func (c *Config) initConfig() error {
	absolutePath, err := filepath.Abs(c.configFile)
	if err != nil {
		return err
	}

	viper.SetConfigFile(absolutePath)
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError

		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("reading config %s: %w", absolutePath, err)
	}

	return nil
}

func newRootCmd(config *Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "currency-board",
		Short:         "Live multi-currency conversion board",
		Version:       "v2.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.initConfig()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&config.debug, "debug", "d", false, "Debug flag")
	rootCmd.PersistentFlags().StringVarP(&config.configFile, "config", "c", "./config.yml", "Path to config file")

	rootCmd.AddCommand(
		serve(config),
		watch(config),
		convert(config),
		rates(config),
		currencies(config),
	)

	return rootCmd
}

func Execute(config *Config) error {
	if config.Ctx == nil {
		config.Ctx = context.Background()
	}

	defer config.Close()

	return newRootCmd(config).ExecuteContext(config.Ctx)
}
