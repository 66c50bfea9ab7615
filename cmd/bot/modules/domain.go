package modules

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/ticketline/ticketline/internal/broadcast"
	"github.com/ticketline/ticketline/internal/channel"
	"github.com/ticketline/ticketline/internal/config"
	"github.com/ticketline/ticketline/internal/dispatch"
	"github.com/ticketline/ticketline/internal/intake"
	"github.com/ticketline/ticketline/internal/router"
	"github.com/ticketline/ticketline/internal/store"
)

var DomainModule = fx.Module(
	"domain",
	fx.Provide(
		provideMachine,
		provideBroadcaster,
		provideDispatcher,
		router.New,
	),
)

func provideMachine(log *slog.Logger, st *store.Store, sender channel.Sender, cfg config.Config) *intake.Machine {
	return intake.NewMachine(log, st, sender, cfg.Intake)
}

func provideBroadcaster(log *slog.Logger, st *store.Store, sender channel.Sender, cfg config.Config) *broadcast.Broadcaster {
	return broadcast.NewBroadcaster(log, st, sender, cfg.Broadcast)
}

func provideDispatcher(log *slog.Logger, st *store.Store, sender channel.Sender) *dispatch.Dispatcher {
	return dispatch.NewDispatcher(log, st, sender)
}
