// Package telegram adapts the Telegram Bot API to the channel contract: it
// turns updates into inbound messages and callbacks, and implements the
// outbound Sender interface.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ticketline/ticketline/internal/channel"
	"github.com/ticketline/ticketline/internal/config"
)

// Handler consumes inbound events. Events are delivered one at a time, in
// arrival order.
type Handler interface {
	HandleMessage(ctx context.Context, msg channel.Message)
	HandleCallback(ctx context.Context, cb channel.Callback)
}

// Client wraps the bot API connection.
type Client struct {
	api    *tgbotapi.BotAPI
	cfg    config.TelegramConfig
	logger *slog.Logger
}

func NewClient(log *slog.Logger, cfg config.TelegramConfig) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &Client{
		api:    api,
		cfg:    cfg,
		logger: log.With(slog.String("adapter", "telegram")),
	}, nil
}

// Run receives updates until ctx is canceled, dispatching each to h. With a
// configured webhook URL it registers the webhook and serves it; otherwise
// it long-polls.
func (c *Client) Run(ctx context.Context, h Handler) error {
	updates, stop, err := c.updateSource()
	if err != nil {
		return err
	}
	defer stop()

	c.logger.Info("receiving updates", slog.String("account", c.api.Self.UserName))
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				c.logger.Info("updates channel closed")
				return nil
			}
			c.dispatch(ctx, h, update)
		}
	}
}

func (c *Client) updateSource() (tgbotapi.UpdatesChannel, func(), error) {
	if c.cfg.WebhookURL == "" {
		poll := tgbotapi.NewUpdate(0)
		poll.Timeout = 30
		updates := c.api.GetUpdatesChan(poll)
		return updates, c.api.StopReceivingUpdates, nil
	}

	path := "/bot" + c.cfg.Token
	wh, err := tgbotapi.NewWebhook(strings.TrimRight(c.cfg.WebhookURL, "/") + path)
	if err != nil {
		return nil, nil, fmt.Errorf("webhook config: %w", err)
	}
	if _, err := c.api.Request(wh); err != nil {
		return nil, nil, fmt.Errorf("set webhook: %w", err)
	}
	updates := c.api.ListenForWebhook(path)

	srv := &http.Server{Addr: c.cfg.ListenAddr}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Error("webhook listener", slog.Any("error", err))
		}
	}()
	stop := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	return updates, stop, nil
}

func (c *Client) dispatch(ctx context.Context, h Handler, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		h.HandleCallback(ctx, channel.Callback{
			ID:   cb.ID,
			From: identityFrom(cb.From),
			Data: cb.Data,
		})

	case update.Message != nil:
		m := update.Message
		if m.Chat == nil || m.From == nil {
			return
		}
		msg := channel.Message{
			ChatID: m.Chat.ID,
			From:   identityFrom(m.From),
			Text:   m.Text,
		}
		if msg.Text == "" && m.Caption != "" {
			msg.Text = m.Caption
		}
		if m.Contact != nil {
			msg.Contact = &channel.Contact{
				PhoneNumber: m.Contact.PhoneNumber,
				FirstName:   m.Contact.FirstName,
				LastName:    m.Contact.LastName,
				UserID:      m.Contact.UserID,
			}
		}
		h.HandleMessage(ctx, msg)
	}
}

func identityFrom(u *tgbotapi.User) channel.Identity {
	if u == nil {
		return channel.Identity{}
	}
	return channel.Identity{
		ID:        u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
