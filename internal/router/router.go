// Package router classifies each inbound event by sender role and dispatches
// it: admins get the management console, operators a standby notice, and
// everyone else the intake dialogue. Unexpected panics in per-message
// handling are caught here, logged, and the message is dropped.
package router

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ticketline/ticketline/internal/broadcast"
	"github.com/ticketline/ticketline/internal/channel"
	"github.com/ticketline/ticketline/internal/intake"
	"github.com/ticketline/ticketline/internal/store"
)

const (
	msgStandby     = "Wait for new requests. They are distributed between operators automatically."
	msgCloseOK     = "Request closed!"
	msgCloseFailed = "Failed to close the request!"
)

// Router is the per-message entry point of the bot.
type Router struct {
	store       *store.Store
	sender      channel.Sender
	machine     *intake.Machine
	broadcaster *broadcast.Broadcaster
	logger      *slog.Logger

	mu      sync.Mutex
	pending map[int64]adminAction
}

func New(log *slog.Logger, st *store.Store, sender channel.Sender, machine *intake.Machine, b *broadcast.Broadcaster) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		store:       st,
		sender:      sender,
		machine:     machine,
		broadcaster: b,
		logger:      log.With(slog.String("service", "router")),
		pending:     map[int64]adminAction{},
	}
}

// HandleMessage processes one inbound chat message.
func (r *Router) HandleMessage(ctx context.Context, msg channel.Message) {
	defer r.recoverPanic("message")

	log := r.logger.With(slog.Int64("chat_id", msg.ChatID), slog.Int64("user_id", msg.From.ID))

	if err := r.store.RecordKnownChat(ctx, msg.From.ID, msg.ChatID); err != nil {
		log.Error("record known chat", slog.Any("error", err))
		if errors.Is(err, store.ErrNotInitialized) {
			return
		}
	}

	admin, ok, err := r.store.GetAdmin(ctx, msg.From.ID)
	if err != nil {
		log.Error("resolve admin", slog.Any("error", err))
		return
	}
	if ok {
		r.handleAdmin(ctx, msg, admin)
		return
	}

	operator, ok, err := r.store.GetOperator(ctx, msg.From.ID)
	if err != nil {
		log.Error("resolve operator", slog.Any("error", err))
		return
	}
	if ok {
		r.handleOperator(ctx, msg, operator)
		return
	}

	r.handleUser(ctx, msg)
}

// HandleCallback processes an inline-button press. The only action the core
// consumes is closing a request.
func (r *Router) HandleCallback(ctx context.Context, cb channel.Callback) {
	defer r.recoverPanic("callback")

	action, requestID, ok := channel.ParseActionData(cb.Data)
	if !ok {
		return
	}
	switch action {
	case channel.ActionClose:
		err := r.store.UpdateRequest(ctx, requestID, store.RequestPatch{Status: store.StatusClosed})
		if err != nil {
			r.logger.Error("close request", slog.String("request_id", requestID), slog.Any("error", err))
			r.answer(ctx, cb.ID, msgCloseFailed)
			return
		}
		r.logger.Info("request closed", slog.String("request_id", requestID), slog.Int64("by", cb.From.ID))
		r.answer(ctx, cb.ID, msgCloseOK)
	}
}

func (r *Router) handleOperator(ctx context.Context, msg channel.Message, op store.Operator) {
	if op.ChatID == 0 {
		if err := r.store.SetOperatorChannel(ctx, op.ID, msg.ChatID); err != nil {
			r.logger.Error("set operator channel", slog.Int64("operator_id", op.ID), slog.Any("error", err))
		}
	}
	if err := r.sender.SendText(ctx, msg.ChatID, msgStandby); err != nil {
		r.logger.Warn("standby notice failed", slog.Int64("chat_id", msg.ChatID), slog.Any("error", err))
	}
}

func (r *Router) handleUser(ctx context.Context, msg channel.Message) {
	log := r.logger.With(slog.Int64("chat_id", msg.ChatID))

	current, _, err := r.store.GetChatState(ctx, msg.ChatID)
	if err != nil {
		log.Error("load chat state", slog.Any("error", err))
		return
	}
	next, err := r.machine.Handle(ctx, msg, intake.State(current))
	if err != nil {
		log.Error("intake step", slog.Int("state", current), slog.Any("error", err))
		return
	}
	if err := r.store.UpsertChatState(ctx, msg.ChatID, int(next)); err != nil {
		log.Error("persist chat state", slog.Any("error", err))
	}
}

func (r *Router) answer(ctx context.Context, callbackID, text string) {
	if err := r.sender.AnswerCallback(ctx, callbackID, text); err != nil {
		r.logger.Warn("answer callback failed", slog.Any("error", err))
	}
}

func (r *Router) recoverPanic(kind string) {
	if v := recover(); v != nil {
		r.logger.Error("panic in handler, message dropped",
			slog.String("kind", kind), slog.Any("panic", v))
	}
}
