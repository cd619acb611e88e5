package alert

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/jobscout/internal/domain"
)

type memAlerts struct {
	stored []domain.Alert
	err    error
}

func (m *memAlerts) CreateAlert(_ context.Context, a domain.Alert) error {
	if m.err != nil {
		return m.err
	}
	m.stored = append(m.stored, a)
	return nil
}

type fakePublisher struct {
	channel string
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	return redis.NewIntResult(1, f.err)
}

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestSink_StoresAndBroadcasts(t *testing.T) {
	repo := &memAlerts{}
	pub := &fakePublisher{}
	tg := &fakeSender{}

	sink := NewSink(repo, nil,
		NewRedisBroadcaster(pub),
		&TelegramBroadcaster{bot: tg, chatID: 42},
		nil,
	)

	sink.Create(context.Background(), domain.Alert{
		Type:    domain.AlertWatched,
		Title:   "New job at Acme & Co",
		Message: "Go Engineer",
		URL:     "https://jobs.example/jobs/1",
	})

	require.Len(t, repo.stored, 1)
	stored := repo.stored[0]
	assert.NotEqual(t, uuid.Nil, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())

	assert.Equal(t, Channel, pub.channel)
	var event map[string]any
	require.NoError(t, json.Unmarshal(pub.payload, &event))
	assert.Equal(t, "watched", event["type"])
	assert.Equal(t, stored.ID.String(), event["id"])

	require.Len(t, tg.sent, 1)
	msg, ok := tg.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Contains(t, msg.Text, "Acme &amp; Co")
	assert.Contains(t, msg.Text, "https://jobs.example/jobs/1")
}

func TestSink_FailuresAreSwallowed(t *testing.T) {
	repo := &memAlerts{err: errors.New("db down")}
	pub := &fakePublisher{err: errors.New("redis down")}
	tg := &fakeSender{}

	sink := NewSink(repo, nil, NewRedisBroadcaster(pub), &TelegramBroadcaster{bot: tg})

	assert.NotPanics(t, func() {
		sink.Create(context.Background(), domain.Alert{Type: domain.AlertError, Title: "Search failed"})
	})
	assert.Len(t, tg.sent, 1, "a failing channel does not stop the others")
}

func TestRender(t *testing.T) {
	text := render(domain.Alert{Type: domain.AlertError, Title: "<b>x</b>"})
	assert.Equal(t, "⚠️ <b>&lt;b&gt;x&lt;/b&gt;</b>", text)
}
