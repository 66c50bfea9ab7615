// Package intake drives the multi-step request-filing dialogue. One inbound
// message moves the chat through an explicit state machine; every prompt is
// one network send, and a failed send keeps the prior state so the same
// prompt is retried when the user writes again.
package intake

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ticketline/ticketline/internal/channel"
	"github.com/ticketline/ticketline/internal/config"
	"github.com/ticketline/ticketline/internal/store"
)

// State is the chat's position in the intake dialogue.
type State int

const (
	StateStart State = iota
	StateAwaitContact
	StateAwaitEmail
	StateAwaitDescription
	StatePostSubmit
	StateConfirmNew
)

// openRequestLimit caps non-closed requests per chat.
const openRequestLimit = 3

// Machine consumes one inbound message at a time and returns the next
// dialogue state. The caller persists the returned state.
type Machine struct {
	store       *store.Store
	sender      channel.Sender
	affirmative string
	logger      *slog.Logger
}

func NewMachine(log *slog.Logger, st *store.Store, sender channel.Sender, cfg config.IntakeConfig) *Machine {
	if log == nil {
		log = slog.Default()
	}
	affirmative := cfg.Affirmative
	if affirmative == "" {
		affirmative = config.DefaultAffirmative
	}
	return &Machine{
		store:       st,
		sender:      sender,
		affirmative: affirmative,
		logger:      log.With(slog.String("service", "intake")),
	}
}

// Handle processes msg in the given state and returns the state to persist.
// Store failures propagate; send failures are absorbed by not advancing.
func (m *Machine) Handle(ctx context.Context, msg channel.Message, st State) (State, error) {
	switch st {
	case StateStart:
		err := m.sender.SendContactPrompt(ctx, msg.ChatID, msgGreeting, msgShareButton)
		return m.advance(err, StateAwaitContact, st), nil

	case StateAwaitContact:
		return m.handleAwaitContact(ctx, msg)

	case StateAwaitEmail:
		return m.handleAwaitEmail(ctx, msg)

	case StateAwaitDescription:
		return m.handleAwaitDescription(ctx, msg)

	case StatePostSubmit:
		return m.handlePostSubmit(ctx, msg)

	case StateConfirmNew:
		if strings.EqualFold(strings.TrimSpace(msg.Text), m.affirmative) {
			return m.Handle(ctx, msg, StateAwaitEmail)
		}
		return m.Handle(ctx, msg, StatePostSubmit)

	default:
		// Out-of-range states pass through untouched.
		return st, nil
	}
}

func (m *Machine) handleAwaitContact(ctx context.Context, msg channel.Message) (State, error) {
	if msg.Contact == nil {
		err := m.sender.SendContactPrompt(ctx, msg.ChatID, msgNeedContact, msgShareButton)
		if err != nil {
			m.logSendFailure(msg.ChatID, err)
		}
		return StateAwaitContact, nil
	}
	patch := store.ContactPatch{
		PhoneNumber: msg.Contact.PhoneNumber,
		FirstName:   msg.Contact.FirstName,
		LastName:    msg.Contact.LastName,
		UserID:      msg.Contact.UserID,
		Username:    msg.From.Username,
	}
	if err := m.store.UpsertContact(ctx, msg.ChatID, patch); err != nil {
		return StateAwaitContact, err
	}
	err := m.sender.SendForceReply(ctx, msg.ChatID, msgAskEmail, msgEmailPlaceholder)
	return m.advance(err, StateAwaitEmail, StateAwaitContact), nil
}

func (m *Machine) handleAwaitEmail(ctx context.Context, msg channel.Message) (State, error) {
	contact, _, err := m.store.GetContact(ctx, msg.ChatID)
	if err != nil {
		return StateAwaitEmail, err
	}
	hasEmail := contact.Email != ""
	if !hasEmail && !ValidEmail(msg.Text) {
		err := m.sender.SendForceReply(ctx, msg.ChatID, msgBadEmail, msgEmailPlaceholder)
		if err != nil {
			m.logSendFailure(msg.ChatID, err)
		}
		return StateAwaitEmail, nil
	}
	if !hasEmail {
		if err := m.store.UpsertContact(ctx, msg.ChatID, store.ContactPatch{Email: msg.Text}); err != nil {
			return StateAwaitEmail, err
		}
	}
	sendErr := m.sender.SendForceReply(ctx, msg.ChatID, msgAskDescription, msgDescriptionPlaceholder)
	return m.advance(sendErr, StateAwaitDescription, StateAwaitEmail), nil
}

func (m *Machine) handleAwaitDescription(ctx context.Context, msg channel.Message) (State, error) {
	_, err := m.store.CreateRequest(ctx, store.RequestPatch{
		ChatID:      msg.ChatID,
		Description: msg.Text,
		Status:      store.StatusNew,
	})
	if err != nil {
		return StateAwaitDescription, err
	}
	sendErr := m.sender.SendRemoveKeyboard(ctx, msg.ChatID, msgThanks)
	return m.advance(sendErr, StatePostSubmit, StateAwaitDescription), nil
}

func (m *Machine) handlePostSubmit(ctx context.Context, msg channel.Message) (State, error) {
	requests, err := m.store.ListRequestsByChat(ctx, msg.ChatID)
	if err != nil {
		return StatePostSubmit, err
	}
	open := 0
	for _, r := range requests {
		if r.Status != store.StatusClosed {
			open++
		}
	}
	if open >= openRequestLimit {
		if err := m.sender.SendText(ctx, msg.ChatID, msgLimitReached); err != nil {
			m.logSendFailure(msg.ChatID, err)
		}
		return StatePostSubmit, nil
	}
	text := msgProcessedAskAnother
	if open > 0 {
		text = msgHaveOpenAskAnother
	}
	sendErr := m.sender.SendChoice(ctx, msg.ChatID, text, []string{m.affirmative})
	return m.advance(sendErr, StateConfirmNew, StatePostSubmit), nil
}

// advance keeps the prior state on send failure; the next inbound message
// retries the same prompt.
func (m *Machine) advance(sendErr error, next, prior State) State {
	if sendErr != nil {
		m.logger.Warn("send failed, keeping state",
			slog.Int("state", int(prior)),
			slog.Any("error", sendErr))
		return prior
	}
	return next
}

func (m *Machine) logSendFailure(chatID int64, err error) {
	m.logger.Warn("send failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
}
