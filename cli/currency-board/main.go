package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/malusev998/currency-board/cli/cmd"
)

func main() {
	var logger log.Logger
	{
		logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
		logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(&cmd.Config{
		Ctx:   ctx,
		Setup: setup(logger),
	})

	if err != nil {
		level.Error(logger).Log("msg", "exiting", "err", err)
		stop()
		os.Exit(1)
	}
}
