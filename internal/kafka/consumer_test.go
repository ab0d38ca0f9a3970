package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-records/internal/logger"
)

type fakeReader struct {
	messages []kafka.Message
	err      error
	cancel   context.CancelFunc
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.messages) == 0 {
		if r.err != nil {
			return kafka.Message{}, r.err
		}
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *fakeReader) Close() error { return nil }

func TestConsumerDeliversChangesAndSkipsGarbage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		cancel: cancel,
		messages: []kafka.Message{
			{Value: []byte(`{"id":"a","entity":"user","action":"created","key":"alice"}`)},
			{Value: []byte(`not json`), Offset: 1},
			{Value: []byte(`{"id":"b","entity":"event","action":"deleted","key":"1"}`)},
		},
	}
	c := &Consumer{reader: reader, topic: "record-changes", log: logger.Nop()}

	var got []Change
	err := c.Run(ctx, func(change Change) { got = append(got, change) })

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "user.created", got[0].Type())
	assert.Equal(t, "event.deleted", got[1].Type())
}

func TestConsumerReturnsReadErrors(t *testing.T) {
	c := &Consumer{reader: &fakeReader{err: errors.New("broker gone")}, topic: "record-changes", log: logger.Nop()}

	err := c.Run(context.Background(), func(Change) {})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker gone")
}
