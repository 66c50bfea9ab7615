package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketline/ticketline/internal/config"
	"github.com/ticketline/ticketline/internal/store"
)

type fakeSender struct {
	mu     sync.Mutex
	sent   map[int64]string
	broken map[int64]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: map[int64]string{}, broken: map[int64]bool{}}
}

func (f *fakeSender) SendText(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.broken[chatID] {
		return errors.New("blocked by user")
	}
	f.sent[chatID] = text
	return nil
}

func (f *fakeSender) SendContactPrompt(context.Context, int64, string, string) error { return nil }
func (f *fakeSender) SendForceReply(context.Context, int64, string, string) error    { return nil }
func (f *fakeSender) SendRemoveKeyboard(context.Context, int64, string) error        { return nil }
func (f *fakeSender) SendChoice(context.Context, int64, string, []string) error      { return nil }
func (f *fakeSender) SendMenu(context.Context, int64, string, [][]string) error      { return nil }
func (f *fakeSender) SendWithAction(context.Context, int64, string, string, string) error {
	return nil
}
func (f *fakeSender) AnswerCallback(context.Context, string, string) error { return nil }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(nil, config.StorageConfig{Path: ":memory:"}, config.AdminConfig{UserID: 1, Username: "root"})
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBroadcastReachesAudienceOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordKnownChat(ctx, 1, 10))  // seeded admin
	require.NoError(t, s.RecordKnownChat(ctx, 2, 20))  // operator
	require.NoError(t, s.RecordKnownChat(ctx, 3, 30))  // plain user
	require.NoError(t, s.RecordKnownChat(ctx, 4, 40))  // plain user
	require.NoError(t, s.AddOperator(ctx, store.Operator{ID: 2}))

	sender := newFakeSender()
	b := NewBroadcaster(nil, s, sender, config.BroadcastConfig{Rate: 1000})

	sent, total, err := b.Broadcast(ctx, "maintenance window")
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, 2, total)
	assert.Equal(t, "maintenance window", sender.sent[30])
	assert.Equal(t, "maintenance window", sender.sent[40])
	assert.NotContains(t, sender.sent, int64(10))
	assert.NotContains(t, sender.sent, int64(20))
}

func TestBroadcastCountsOnlyDeliveries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := int64(0); i < 5; i++ {
		require.NoError(t, s.RecordKnownChat(ctx, 100+i, 200+i))
	}

	sender := newFakeSender()
	sender.broken[201] = true
	sender.broken[203] = true
	b := NewBroadcaster(nil, s, sender, config.BroadcastConfig{Rate: 1000})

	sent, total, err := b.Broadcast(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	assert.Equal(t, 5, total)
}

func TestBroadcastEmptyAudience(t *testing.T) {
	s := newTestStore(t)
	sender := newFakeSender()
	b := NewBroadcaster(nil, s, sender, config.BroadcastConfig{})

	sent, total, err := b.Broadcast(context.Background(), "anyone there")
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Zero(t, total)
	assert.Empty(t, sender.sent)
}
