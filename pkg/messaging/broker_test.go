package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBrokerDeliversToSubscribers(t *testing.T) {
	b := NewLocalBroker(zerolog.Nop())
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := b.Subscribe(ctx, "dental.events")
	require.NoError(t, err)

	msg := Message{ID: "1", Type: "patient.created", Payload: json.RawMessage(`{"id":"p1"}`)}
	require.NoError(t, b.Publish(ctx, "dental.events", msg))

	select {
	case raw := <-ch:
		var got Message
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "patient.created", got.Type)
		assert.JSONEq(t, `{"id":"p1"}`, string(got.Payload))
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestLocalBrokerUnsubscribesOnCancel(t *testing.T) {
	b := NewLocalBroker(zerolog.Nop())
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := b.Subscribe(ctx, "dental.events")
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestLocalBrokerPublishWithoutSubscribers(t *testing.T) {
	b := NewLocalBroker(zerolog.Nop())
	assert.NoError(t, b.Publish(context.Background(), "nobody", map[string]string{"a": "b"}))
	assert.NoError(t, b.Close())
	assert.NoError(t, b.Close())
}
