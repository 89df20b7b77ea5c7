package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/23skdu/longbow-tokviz/internal/viewer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(os.Stdout, viewer.NewSystem())
	if err := app.Run(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("tokviz failed")
		stop()
		os.Exit(1)
	}
}
