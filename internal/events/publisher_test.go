package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Event{Type: JobCreated}))
}

func TestRedisPublisher(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL is not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const channel = "lawyer-service.test"
	sub := rdb.Subscribe(ctx, channel)
	t.Cleanup(func() { _ = sub.Close() })
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	sent := Event{
		Type:       OfferAccepted,
		OccurredAt: time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC),
		Payload:    map[string]string{"offerId": "o1"},
	}
	require.NoError(t, NewRedisPublisher(rdb, channel).Publish(ctx, sent))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, sent.Type, got.Type)
	assert.True(t, sent.OccurredAt.Equal(got.OccurredAt))
	assert.Equal(t, sent.Payload, got.Payload)
}
