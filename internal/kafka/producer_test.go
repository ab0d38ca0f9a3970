package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-records/internal/logger"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newTestProducer(w *fakeWriter) *Producer {
	return newProducer(w, "record-changes", logger.Nop(), clockwork.NewFakeClockAt(time.Unix(1670802822, 0)))
}

func TestPublishCreated(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	record := map[string]any{"id": 1, "title": "Trip"}
	require.NoError(t, p.PublishCreated(context.Background(), EntityEvent, "1", record))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "event:1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event.created", string(msg.Headers[0].Value))

	var change Change
	require.NoError(t, json.Unmarshal(msg.Value, &change))
	assert.NotEmpty(t, change.ID)
	assert.Equal(t, EntityEvent, change.Entity)
	assert.Equal(t, ActionCreated, change.Action)
	assert.Equal(t, "1", change.Key)
	assert.Equal(t, int64(1670802822), change.OccurredAt)
	assert.JSONEq(t, `{"id": 1, "title": "Trip"}`, string(change.Record))
}

func TestPublishDeletedHasNoRecord(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	require.NoError(t, p.PublishDeleted(context.Background(), EntityEvent, "7"))

	require.Len(t, w.messages, 1)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &raw))
	assert.NotContains(t, raw, "record")
	assert.Equal(t, "deleted", raw["action"])
}

func TestMessageIDsAreUnique(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	require.NoError(t, p.PublishUpdated(context.Background(), EntityUser, "alice", nil))
	require.NoError(t, p.PublishUpdated(context.Background(), EntityUser, "alice", nil))

	var a, b Change
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &a))
	require.NoError(t, json.Unmarshal(w.messages[1].Value, &b))
	assert.NotEqual(t, a.ID, b.ID)
}

func TestPublishWriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newTestProducer(w)

	err := p.PublishCreated(context.Background(), EntityUser, "alice", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "user.created")
	assert.Contains(t, err.Error(), "broker down")
}

func TestPublishUnencodableRecord(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	err := p.PublishCreated(context.Background(), EntityEvent, "1", make(chan int))

	assert.Error(t, err)
	assert.Empty(t, w.messages)
}

func TestClose(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newTestProducer(w).Close())
	assert.True(t, w.closed)
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	ctx := context.Background()
	assert.NoError(t, p.PublishCreated(ctx, EntityEvent, "1", nil))
	assert.NoError(t, p.PublishUpdated(ctx, EntityEvent, "1", nil))
	assert.NoError(t, p.PublishDeleted(ctx, EntityEvent, "1"))
	assert.NoError(t, p.Close())
}
