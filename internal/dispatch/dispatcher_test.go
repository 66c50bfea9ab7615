package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketline/ticketline/internal/channel"
	"github.com/ticketline/ticketline/internal/config"
	"github.com/ticketline/ticketline/internal/store"
)

type notification struct {
	chatID int64
	text   string
	data   string
}

type fakeSender struct {
	notifications []notification
	fail          bool
}

func (f *fakeSender) SendWithAction(_ context.Context, chatID int64, text, _, data string) error {
	f.notifications = append(f.notifications, notification{chatID: chatID, text: text, data: data})
	if f.fail {
		return errors.New("transport down")
	}
	return nil
}

func (f *fakeSender) SendText(context.Context, int64, string) error             { return nil }
func (f *fakeSender) SendContactPrompt(context.Context, int64, string, string) error {
	return nil
}
func (f *fakeSender) SendForceReply(context.Context, int64, string, string) error { return nil }
func (f *fakeSender) SendRemoveKeyboard(context.Context, int64, string) error     { return nil }
func (f *fakeSender) SendChoice(context.Context, int64, string, []string) error   { return nil }
func (f *fakeSender) SendMenu(context.Context, int64, string, [][]string) error   { return nil }
func (f *fakeSender) AnswerCallback(context.Context, string, string) error        { return nil }

func newTestDispatcher(t *testing.T) (*Dispatcher, *store.Store, *fakeSender) {
	t.Helper()
	s := store.New(nil, config.StorageConfig{Path: ":memory:"}, config.AdminConfig{UserID: 1})
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(func() { s.Close() })
	sender := &fakeSender{}
	return NewDispatcher(nil, s, sender), s, sender
}

func addContact(t *testing.T, s *store.Store, chatID int64) {
	t.Helper()
	require.NoError(t, s.UpsertContact(context.Background(), chatID, store.ContactPatch{
		PhoneNumber: "+1234567890",
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		Username:    "ada",
	}))
}

func TestPassAssignsLeastBusyOperator(t *testing.T) {
	d, s, sender := newTestDispatcher(t)
	ctx := context.Background()

	require.NoError(t, s.AddOperator(ctx, store.Operator{ID: 1, Load: 3, ChatID: 101}))
	require.NoError(t, s.AddOperator(ctx, store.Operator{ID: 2, Load: 1, ChatID: 102}))
	require.NoError(t, s.AddOperator(ctx, store.Operator{ID: 3, Load: 2, ChatID: 103}))
	addContact(t, s, 5)
	req, err := s.CreateRequest(ctx, store.RequestPatch{ChatID: 5, Description: "need a car"})
	require.NoError(t, err)

	d.RunPass(ctx)

	got, err := s.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusInWork, got.Status)
	assert.Equal(t, int64(2), got.Operator)

	op, _, err := s.GetOperator(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, op.Load)

	require.Len(t, sender.notifications, 1)
	n := sender.notifications[0]
	assert.Equal(t, int64(102), n.chatID)
	assert.Contains(t, n.text, "need a car")
	assert.Contains(t, n.text, "+1234567890")
	assert.Contains(t, n.text, "ada@example.com")
	assert.Equal(t, channel.ActionData(channel.ActionClose, req.ID), n.data)
}

func TestPassAssignsMinOfRequestsAndOperators(t *testing.T) {
	d, s, sender := newTestDispatcher(t)
	ctx := context.Background()

	require.NoError(t, s.AddOperator(ctx, store.Operator{ID: 1, ChatID: 101}))
	require.NoError(t, s.AddOperator(ctx, store.Operator{ID: 2, ChatID: 102}))
	for i := int64(1); i <= 3; i++ {
		addContact(t, s, i)
		_, err := s.CreateRequest(ctx, store.RequestPatch{ChatID: i, Description: "d"})
		require.NoError(t, err)
	}

	d.RunPass(ctx)

	assert.Len(t, sender.notifications, 2)
	inWork, err := s.ListRequestsByStatus(ctx, store.StatusInWork)
	require.NoError(t, err)
	assert.Len(t, inWork, 2)
	queued, err := s.ListRequestsByStatus(ctx, store.StatusNew)
	require.NoError(t, err)
	assert.Len(t, queued, 1)
}

func TestSendFailureRollsBackPair(t *testing.T) {
	d, s, sender := newTestDispatcher(t)
	ctx := context.Background()
	sender.fail = true

	require.NoError(t, s.AddOperator(ctx, store.Operator{ID: 1, ChatID: 101}))
	addContact(t, s, 5)
	req, err := s.CreateRequest(ctx, store.RequestPatch{ChatID: 5, Description: "d"})
	require.NoError(t, err)

	d.RunPass(ctx)

	require.Len(t, sender.notifications, 1)
	got, err := s.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusNew, got.Status)
	assert.Zero(t, got.Operator)

	op, _, err := s.GetOperator(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, op.Load)

	// The pair is reconsidered on the next pass once delivery recovers.
	sender.fail = false
	d.RunPass(ctx)
	got, err = s.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusInWork, got.Status)
}

func TestMissingContactSkipsOnlyThatPair(t *testing.T) {
	d, s, sender := newTestDispatcher(t)
	ctx := context.Background()

	require.NoError(t, s.AddOperator(ctx, store.Operator{ID: 1, ChatID: 101}))
	require.NoError(t, s.AddOperator(ctx, store.Operator{ID: 2, ChatID: 102}))

	orphan, err := s.CreateRequest(ctx, store.RequestPatch{ChatID: 8, Description: "no contact"})
	require.NoError(t, err)
	addContact(t, s, 9)
	covered, err := s.CreateRequest(ctx, store.RequestPatch{ChatID: 9, Description: "has contact"})
	require.NoError(t, err)

	d.RunPass(ctx)

	got, err := s.GetRequest(ctx, orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusNew, got.Status)

	got, err = s.GetRequest(ctx, covered.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusInWork, got.Status)
	require.Len(t, sender.notifications, 1)
	assert.True(t, strings.Contains(sender.notifications[0].text, "has contact"))
}

func TestNoOperatorsLeavesRequestsQueued(t *testing.T) {
	d, s, sender := newTestDispatcher(t)
	ctx := context.Background()

	addContact(t, s, 5)
	req, err := s.CreateRequest(ctx, store.RequestPatch{ChatID: 5, Description: "d"})
	require.NoError(t, err)

	d.RunPass(ctx)

	assert.Empty(t, sender.notifications)
	got, err := s.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusNew, got.Status)
}

func TestBusyRosterFallsBackToLoadOrder(t *testing.T) {
	d, s, sender := newTestDispatcher(t)
	ctx := context.Background()

	// Both operators hold IN_WORK requests, so nobody is open; the pass
	// falls back to the full roster sorted by load.
	require.NoError(t, s.AddOperator(ctx, store.Operator{ID: 1, Load: 2, ChatID: 101}))
	require.NoError(t, s.AddOperator(ctx, store.Operator{ID: 2, Load: 1, ChatID: 102}))
	for _, op := range []int64{1, 2} {
		addContact(t, s, op+50)
		req, err := s.CreateRequest(ctx, store.RequestPatch{ChatID: op + 50, Description: "busy"})
		require.NoError(t, err)
		require.NoError(t, s.UpdateRequest(ctx, req.ID, store.RequestPatch{Status: store.StatusInWork, Operator: op}))
	}

	addContact(t, s, 5)
	req, err := s.CreateRequest(ctx, store.RequestPatch{ChatID: 5, Description: "overflow"})
	require.NoError(t, err)

	d.RunPass(ctx)

	got, err := s.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusInWork, got.Status)
	assert.Equal(t, int64(2), got.Operator)
	require.Len(t, sender.notifications, 1)
	assert.Equal(t, int64(102), sender.notifications[0].chatID)
}
