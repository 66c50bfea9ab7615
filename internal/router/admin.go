package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ticketline/ticketline/internal/channel"
	"github.com/ticketline/ticketline/internal/store"
)

// adminAction tags which roster operation is waiting for a shared user.
type adminAction int

const (
	actionNone adminAction = iota
	actionAddOperator
	actionRemoveOperator
	actionAddAdmin
	actionAddSuperAdmin
	actionRemoveAdmin
)

// Admin console button labels and replies.
const (
	btnListOperators  = "List operators"
	btnListAdmins     = "List admins"
	btnAddOperator    = "Add operator"
	btnRemoveOperator = "Remove operator"
	btnAddAdmin       = "Add admin"
	btnAddSuperAdmin  = "Add super admin"
	btnRemoveAdmin    = "Remove admin"

	cmdBroadcast = "/broadcast"

	msgAdminMenu       = "Admin menu"
	msgShareUser       = "Now share the user's contact card."
	msgSuperOnly       = "Only a super admin can manage admins."
	msgNoAccount       = "That contact is not linked to a platform account."
	msgActionFailed    = "Action failed, try again."
	msgOperatorAdded   = "Operator added"
	msgOperatorRemoved = "Operator removed"
	msgAdminAdded      = "Administrator added"
	msgAdminRemoved    = "Administrator removed"
	msgBroadcastUsage  = "Usage: /broadcast <text>"
)

func (r *Router) handleAdmin(ctx context.Context, msg channel.Message, admin store.Admin) {
	log := r.logger.With(slog.Int64("admin_id", admin.ID))

	if admin.ChatID == 0 {
		if err := r.store.SetAdminChannel(ctx, admin.ID, msg.ChatID); err != nil {
			log.Error("set admin channel", slog.Any("error", err))
		}
	}

	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, cmdBroadcast) {
		r.handleBroadcast(ctx, msg.ChatID, strings.TrimSpace(strings.TrimPrefix(text, cmdBroadcast)))
		return
	}

	if msg.Contact != nil {
		if action := r.takePending(admin.ID); action != actionNone {
			reply := r.applyRosterAction(ctx, admin, action, *msg.Contact)
			r.sendMenu(ctx, msg.ChatID, reply, admin.IsSuper)
			return
		}
	}

	switch text {
	case btnListOperators:
		r.sendMenu(ctx, msg.ChatID, r.renderOperators(ctx), admin.IsSuper)
	case btnListAdmins:
		r.sendMenu(ctx, msg.ChatID, r.renderAdmins(ctx), admin.IsSuper)
	case btnAddOperator:
		r.promptShare(ctx, msg.ChatID, admin, actionAddOperator)
	case btnRemoveOperator:
		r.promptShare(ctx, msg.ChatID, admin, actionRemoveOperator)
	case btnAddAdmin:
		r.promptAdminManage(ctx, msg.ChatID, admin, actionAddAdmin)
	case btnAddSuperAdmin:
		r.promptAdminManage(ctx, msg.ChatID, admin, actionAddSuperAdmin)
	case btnRemoveAdmin:
		r.promptAdminManage(ctx, msg.ChatID, admin, actionRemoveAdmin)
	default:
		r.sendMenu(ctx, msg.ChatID, msgAdminMenu, admin.IsSuper)
	}
}

func (r *Router) handleBroadcast(ctx context.Context, chatID int64, text string) {
	if text == "" {
		if err := r.sender.SendText(ctx, chatID, msgBroadcastUsage); err != nil {
			r.logger.Warn("send failed", slog.Any("error", err))
		}
		return
	}
	sent, total, err := r.broadcaster.Broadcast(ctx, text)
	if err != nil {
		r.logger.Error("broadcast", slog.Any("error", err))
		if err := r.sender.SendText(ctx, chatID, msgActionFailed); err != nil {
			r.logger.Warn("send failed", slog.Any("error", err))
		}
		return
	}
	report := fmt.Sprintf("Broadcast delivered to %d of %d chats.", sent, total)
	if err := r.sender.SendText(ctx, chatID, report); err != nil {
		r.logger.Warn("send failed", slog.Any("error", err))
	}
}

// promptAdminManage gates admin-roster actions to super admins before
// arming the pending tag.
func (r *Router) promptAdminManage(ctx context.Context, chatID int64, admin store.Admin, action adminAction) {
	if !admin.IsSuper {
		r.sendMenu(ctx, chatID, msgSuperOnly, admin.IsSuper)
		return
	}
	r.promptShare(ctx, chatID, admin, action)
}

func (r *Router) promptShare(ctx context.Context, chatID int64, admin store.Admin, action adminAction) {
	r.setPending(admin.ID, action)
	r.sendMenu(ctx, chatID, msgShareUser, admin.IsSuper)
}

// applyRosterAction performs the armed action against the shared user and
// returns the acknowledgment text.
func (r *Router) applyRosterAction(ctx context.Context, admin store.Admin, action adminAction, c channel.Contact) string {
	if c.UserID == 0 {
		return msgNoAccount
	}
	log := r.logger.With(slog.Int64("admin_id", admin.ID), slog.Int64("target_id", c.UserID))

	switch action {
	case actionAddOperator:
		err := r.store.AddOperator(ctx, store.Operator{
			ID:        c.UserID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Adder:     admin.Username,
		})
		if err != nil {
			log.Error("add operator", slog.Any("error", err))
			return msgActionFailed
		}
		return msgOperatorAdded

	case actionRemoveOperator:
		if err := r.store.RemoveOperator(ctx, c.UserID); err != nil {
			log.Error("remove operator", slog.Any("error", err))
			return msgActionFailed
		}
		return msgOperatorRemoved

	case actionAddAdmin, actionAddSuperAdmin:
		if !admin.IsSuper {
			return msgSuperOnly
		}
		err := r.store.AddAdmin(ctx, store.Admin{
			ID:        c.UserID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			IsSuper:   action == actionAddSuperAdmin,
			Adder:     admin.Username,
		})
		if err != nil {
			log.Error("add admin", slog.Any("error", err))
			return msgActionFailed
		}
		return msgAdminAdded

	case actionRemoveAdmin:
		if !admin.IsSuper {
			return msgSuperOnly
		}
		if err := r.store.RemoveAdmin(ctx, c.UserID); err != nil {
			log.Error("remove admin", slog.Any("error", err))
			return msgActionFailed
		}
		return msgAdminRemoved
	}
	return msgActionFailed
}

func (r *Router) renderOperators(ctx context.Context) string {
	operators, err := r.store.ListOperators(ctx)
	if err != nil {
		r.logger.Error("list operators", slog.Any("error", err))
		return msgActionFailed
	}
	if len(operators) == 0 {
		return "No operators yet."
	}
	var b strings.Builder
	b.WriteString("Operators:")
	for _, op := range operators {
		fmt.Fprintf(&b, "\n%s %s (%d) load %d", op.FirstName, op.LastName, op.ID, op.Load)
	}
	return b.String()
}

func (r *Router) renderAdmins(ctx context.Context) string {
	admins, err := r.store.ListAdmins(ctx)
	if err != nil {
		r.logger.Error("list admins", slog.Any("error", err))
		return msgActionFailed
	}
	var b strings.Builder
	b.WriteString("Admins:")
	for _, a := range admins {
		fmt.Fprintf(&b, "\n%s %s (%d)", a.FirstName, a.LastName, a.ID)
		if a.IsSuper {
			b.WriteString(" super")
		}
	}
	return b.String()
}

func (r *Router) sendMenu(ctx context.Context, chatID int64, text string, super bool) {
	if err := r.sender.SendMenu(ctx, chatID, text, adminMenu(super)); err != nil {
		r.logger.Warn("send admin menu failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
	}
}

func adminMenu(super bool) [][]string {
	rows := [][]string{
		{btnListOperators, btnListAdmins},
		{btnAddOperator, btnRemoveOperator},
	}
	if super {
		rows = append(rows, []string{btnAddAdmin, btnAddSuperAdmin, btnRemoveAdmin})
	}
	return rows
}

func (r *Router) setPending(adminID int64, action adminAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[adminID] = action
}

func (r *Router) takePending(adminID int64) adminAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	action := r.pending[adminID]
	delete(r.pending, adminID)
	return action
}
