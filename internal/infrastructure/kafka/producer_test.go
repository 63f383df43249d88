package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	skafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []skafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...skafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublish(t *testing.T) {
	fw := &fakeWriter{}
	p := NewProducerWithWriter(fw)

	require.NoError(t, p.Publish(context.Background(), "user-1", map[string]string{"type": "new_bid"}))
	require.Len(t, fw.msgs, 1)
	assert.Equal(t, "user-1", string(fw.msgs[0].Key))

	var body map[string]string
	require.NoError(t, json.Unmarshal(fw.msgs[0].Value, &body))
	assert.Equal(t, "new_bid", body["type"])

	require.NoError(t, p.Close())
	assert.True(t, fw.closed)
}

func TestPublish_Errors(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker down")}
	p := NewProducerWithWriter(fw)

	assert.ErrorContains(t, p.Publish(context.Background(), "k", "v"), "broker down")
	assert.Error(t, p.Publish(context.Background(), "k", make(chan int)))
}
