// Package broadcast fans an admin announcement out to every known end-user
// chat. Staff chats are excluded by the audience query; partial failure is
// tolerated and reported as a delivered count.
package broadcast

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ticketline/ticketline/internal/channel"
	"github.com/ticketline/ticketline/internal/config"
	"github.com/ticketline/ticketline/internal/store"
)

// Broadcaster sends one message to the whole broadcast audience.
type Broadcaster struct {
	store   *store.Store
	sender  channel.Sender
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewBroadcaster(log *slog.Logger, st *store.Store, sender channel.Sender, cfg config.BroadcastConfig) *Broadcaster {
	if log == nil {
		log = slog.Default()
	}
	r := cfg.Rate
	if r <= 0 {
		r = config.DefaultBroadcastRate
	}
	return &Broadcaster{
		store:   st,
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(r), 1),
		logger:  log.With(slog.String("service", "broadcast")),
	}
}

// Broadcast sends text to every audience chat concurrently and waits for all
// outcomes. It returns how many sends succeeded out of how many were
// attempted; individual failures are logged, not propagated.
func (b *Broadcaster) Broadcast(ctx context.Context, text string) (sent, total int, err error) {
	audience, err := b.store.ListBroadcastAudience(ctx)
	if err != nil {
		return 0, 0, err
	}

	var delivered atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	for _, chatID := range audience {
		chatID := chatID
		g.Go(func() error {
			if err := b.limiter.Wait(ctx); err != nil {
				return nil
			}
			if err := b.sender.SendText(ctx, chatID, text); err != nil {
				b.logger.Warn("broadcast send failed",
					slog.Int64("chat_id", chatID), slog.Any("error", err))
				return nil
			}
			delivered.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	b.logger.Info("broadcast complete",
		slog.Int("delivered", int(delivered.Load())), slog.Int("audience", len(audience)))
	return int(delivered.Load()), len(audience), nil
}
