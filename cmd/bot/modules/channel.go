package modules

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"

	"github.com/ticketline/ticketline/internal/channel"
	"github.com/ticketline/ticketline/internal/config"
	"github.com/ticketline/ticketline/internal/dispatch"
	"github.com/ticketline/ticketline/internal/router"
	"github.com/ticketline/ticketline/internal/telegram"
)

var ChannelModule = fx.Module(
	"channel",
	fx.Provide(
		provideClient,
		provideSender,
	),
	fx.Invoke(
		runUpdateLoop,
		runDispatchSchedule,
	),
)

func provideClient(log *slog.Logger, cfg config.Config) (*telegram.Client, error) {
	return telegram.NewClient(log, cfg.Telegram)
}

func provideSender(c *telegram.Client) channel.Sender {
	return c
}

// runUpdateLoop wires the transport to the router for the process lifetime.
func runUpdateLoop(lc fx.Lifecycle, log *slog.Logger, c *telegram.Client, r *router.Router) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := c.Run(ctx, r); err != nil {
					log.Error("update loop stopped", slog.Any("error", err))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}

// runDispatchSchedule runs an assignment pass on a fixed period.
func runDispatchSchedule(lc fx.Lifecycle, d *dispatch.Dispatcher, cfg config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	c := cron.New()
	c.Schedule(cron.Every(cfg.Dispatch.Period()), cron.FuncJob(func() {
		d.RunPass(ctx)
	}))

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			c.Start()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-c.Stop().Done():
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}
