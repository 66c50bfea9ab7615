// Package dispatch pairs queued requests with operators. A recurring pass
// reads all NEW requests and the candidate operator list, assigns them
// positionally, and notifies each operator. Delivery failure is compensated
// by rolling the pair back, never retried within the pass.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ticketline/ticketline/internal/channel"
	"github.com/ticketline/ticketline/internal/store"
)

const btnCloseRequest = "Close request"

// Dispatcher runs assignment passes against the shared store.
type Dispatcher struct {
	store  *store.Store
	sender channel.Sender
	logger *slog.Logger
}

func NewDispatcher(log *slog.Logger, st *store.Store, sender channel.Sender) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		store:  st,
		sender: sender,
		logger: log.With(slog.String("service", "dispatch")),
	}
}

// RunPass performs one assignment pass. Candidates are open operators least
// loaded first; when nobody is free, the whole roster sorted by load. The
// i-th NEW request goes to the i-th candidate; excess requests stay NEW for
// the next pass.
func (d *Dispatcher) RunPass(ctx context.Context) {
	requests, err := d.store.ListRequestsByStatus(ctx, store.StatusNew)
	if err != nil {
		d.logger.Error("list new requests", slog.Any("error", err))
		return
	}
	if len(requests) == 0 {
		d.logger.Debug("no new requests")
		return
	}

	operators, err := d.store.ListOpenOperators(ctx)
	if err != nil {
		d.logger.Error("list open operators", slog.Any("error", err))
		return
	}
	if len(operators) == 0 {
		operators, err = d.store.ListAllOperatorsSortedByLoad(ctx)
		if err != nil {
			d.logger.Error("list operators", slog.Any("error", err))
			return
		}
		if len(operators) == 0 {
			d.logger.Warn("no registered operators, requests stay queued",
				slog.Int("pending", len(requests)))
			return
		}
	}

	for i := 0; i < len(requests) && i < len(operators); i++ {
		d.assign(ctx, requests[i], operators[i])
	}
}

// assign moves one request to IN_WORK with the given operator and sends the
// notification. Any failure aborts only this pair.
func (d *Dispatcher) assign(ctx context.Context, req store.Request, op store.Operator) {
	log := d.logger.With(slog.String("request_id", req.ID), slog.Int64("operator_id", op.ID))

	contact, ok, err := d.store.GetContact(ctx, req.ChatID)
	if err != nil {
		log.Error("load contact", slog.Any("error", err))
		return
	}
	if !ok {
		log.Error("contact missing for request", slog.Int64("chat_id", req.ChatID))
		return
	}

	if err := d.store.UpdateRequest(ctx, req.ID, store.RequestPatch{
		Status:   store.StatusInWork,
		Operator: op.ID,
	}); err != nil {
		log.Error("mark request in work", slog.Any("error", err))
		return
	}
	if err := d.store.UpdateOperatorLoad(ctx, op.ID, op.Load+1); err != nil {
		log.Error("bump operator load", slog.Any("error", err))
		d.rollback(ctx, log, req.ID, op, false)
		return
	}

	log.Info("assigning request", slog.String("operator", op.Username))
	notice := formatNotification(req, contact)
	data := channel.ActionData(channel.ActionClose, req.ID)
	if err := d.sender.SendWithAction(ctx, op.ChatID, notice, btnCloseRequest, data); err != nil {
		log.Error("notify operator", slog.Any("error", err))
		d.rollback(ctx, log, req.ID, op, true)
	}
}

// rollback compensates a failed pair: the request returns to the NEW queue
// and the operator's load counter is restored.
func (d *Dispatcher) rollback(ctx context.Context, log *slog.Logger, requestID string, op store.Operator, undoLoad bool) {
	if err := d.store.RollbackRequest(ctx, requestID); err != nil {
		log.Error("rollback request", slog.Any("error", err))
	}
	if undoLoad {
		if err := d.store.UpdateOperatorLoad(ctx, op.ID, op.Load); err != nil {
			log.Error("restore operator load", slog.Any("error", err))
		}
	}
}

func formatNotification(req store.Request, c store.Contact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New request: %s\n", req.Description)
	b.WriteString("Contact details:\n")
	fmt.Fprintf(&b, "%s %s\n", c.LastName, c.FirstName)
	fmt.Fprintf(&b, "%s\n", c.PhoneNumber)
	b.WriteString(c.Email)
	if c.Username != "" {
		fmt.Fprintf(&b, "\n@%s", c.Username)
	}
	return b.String()
}
