package main

import (
	"log/slog"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/ticketline/ticketline/cmd/bot/modules"
)

func main() {
	fx.New(
		modules.InfraModule,
		modules.DomainModule,
		modules.ChannelModule,
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),
	).Run()
}
